package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustAGhosT/content-creation-sub001/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
upstreams:
  text_parser:
    deepseek: http://deepseek.local/parse
  summarizer: http://summarizer.local/summarize
  image_generator: http://images.local/generate
`

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, loadErr := config.Load(path)
	require.NoError(t, loadErr)

	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.DefaultUpstreamTimeout, cfg.Upstreams.Timeout)
	assert.Equal(t, config.DefaultPublishConcurrency, cfg.Publish.Concurrency)
	assert.Equal(t, config.DefaultPublishRateRPS, cfg.Publish.RateLimitRPS)
	assert.Equal(t, config.DefaultSessionTTL, cfg.Session.TTL)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
debug: true
server:
  port: 9000
  cors_origins:
    - https://studio.example.com
redis:
  addr: localhost:6379
postgres:
  host: localhost
  user: producer
  dbname: producer
upstreams:
  text_parser:
    deepseek: http://deepseek.local/parse
    openai: http://openai.local/parse
  summarizer: http://summarizer.local/summarize
  image_generator: http://images.local/generate
  timeout: 10s
platforms:
  - name: Facebook
    api_url: https://fb.example/api
    api_key: fb-key
  - id: x
    name: Twitter
    api_url: https://x.example/api
publish:
  concurrency: 8
  rate_limit_rps: 20
session:
  ttl: 1h
webhooks:
  - https://hooks.example.com/publish
`)

	cfg, loadErr := config.Load(path)
	require.NoError(t, loadErr)

	assert.True(t, cfg.Debug)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, "http://openai.local/parse", cfg.Upstreams.TextParser.OpenAI)
	assert.Equal(t, 10*time.Second, cfg.Upstreams.Timeout)
	require.Len(t, cfg.Platforms, 2)
	assert.Equal(t, "Facebook", cfg.Platforms[0].Name)
	assert.Equal(t, 8, cfg.Publish.Concurrency)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://hooks.example.com/publish"}, cfg.Webhooks)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	t.Setenv("PRODUCER_PORT", "9191")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("SUMMARIZER_URL", "http://summarizer.override/summarize")

	cfg, loadErr := config.Load(path)
	require.NoError(t, loadErr)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, "http://summarizer.override/summarize", cfg.Upstreams.Summarizer)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing summarizer",
			content: `
upstreams:
  text_parser:
    deepseek: http://deepseek.local/parse
  image_generator: http://images.local/generate
`,
			wantErr: "upstreams.summarizer is required",
		},
		{
			name: "missing deepseek parser",
			content: `
upstreams:
  summarizer: http://summarizer.local/summarize
  image_generator: http://images.local/generate
`,
			wantErr: "upstreams.text_parser.deepseek is required",
		},
		{
			name: "port out of range",
			content: `
server:
  port: 70000
upstreams:
  text_parser:
    deepseek: http://deepseek.local/parse
  summarizer: http://summarizer.local/summarize
  image_generator: http://images.local/generate
`,
			wantErr: "server.port must be between 1 and 65535",
		},
		{
			name: "platform without name",
			content: minimalConfig + `
platforms:
  - api_url: https://fb.example/api
`,
			wantErr: "platforms[0].name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, loadErr := config.Load(path)

			require.Error(t, loadErr)
			assert.Contains(t, loadErr.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, loadErr := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, loadErr)
}
