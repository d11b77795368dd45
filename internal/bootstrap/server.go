package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/JustAGhosT/content-creation-sub001/internal/api"
	"github.com/JustAGhosT/content-creation-sub001/internal/audit"
	"github.com/JustAGhosT/content-creation-sub001/internal/config"
	"github.com/JustAGhosT/content-creation-sub001/internal/dispatch"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/httpx"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
	"github.com/JustAGhosT/content-creation-sub001/internal/notify"
	"github.com/JustAGhosT/content-creation-sub001/internal/pipeline"
	"github.com/JustAGhosT/content-creation-sub001/internal/publish"
	"github.com/JustAGhosT/content-creation-sub001/internal/server"
	"github.com/JustAGhosT/content-creation-sub001/internal/store"
)

const (
	healthCheckTimeout = 2 * time.Second
	serviceVersion     = "1.0.0"
)

// App holds the wired service components.
type App struct {
	Server   *server.Server
	Sessions *pipeline.Manager
}

// SetupApp wires the service components and the HTTP server. redisClient
// and db may be nil; the affected features degrade rather than fail.
func SetupApp(
	cfg *config.Config,
	redisClient *redis.Client,
	db *sqlx.DB,
	log logger.Logger,
) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	flagRegistry := setupFlags(cfg, redisClient, log)

	dispatcher := dispatch.New(
		flagRegistry,
		dispatch.Endpoints{
			TextParser: dispatch.TextParserEndpoints{
				Deepseek: cfg.Upstreams.TextParser.Deepseek,
				OpenAI:   cfg.Upstreams.TextParser.OpenAI,
				Azure:    cfg.Upstreams.TextParser.Azure,
			},
			Summarizer:     cfg.Upstreams.Summarizer,
			ImageGenerator: cfg.Upstreams.ImageGenerator,
		},
		httpx.NewClient(cfg.Upstreams.Timeout),
		m,
		log,
		cfg.Debug,
	)

	sessions := pipeline.NewManager(dispatcher, m, log, cfg.Session.TTL)

	catalog := publish.NewCatalog(cfg.Platforms)
	platformClient := publish.NewClient(httpx.NewClient(cfg.Publish.Timeout), log)
	auditTrail := audit.NewTrail(redisClient, flagRegistry, log)

	var recorder publish.Recorder
	var historyHandler *api.HistoryHandler
	if db != nil {
		repo := store.NewRepository(db)
		recorder = repo
		historyHandler = api.NewHistoryHandler(repo, cfg.Debug)
	}

	publisher := publish.NewPublisher(
		catalog,
		platformClient,
		recorder,
		auditTrail,
		publish.Config{
			Concurrency:  cfg.Publish.Concurrency,
			RateLimitRPS: cfg.Publish.RateLimitRPS,
		},
		m,
		log,
	)

	notifier := setupNotifier(cfg, flagRegistry, log)

	handlers := api.Handlers{
		Pipeline: api.NewPipelineHandler(sessions, cfg.Debug),
		Publish:  api.NewPublishHandler(catalog, publisher, sessions, notifier, cfg.Debug),
		Flags:    api.NewFlagsHandler(flagRegistry, cfg.Debug),
		History:  historyHandler,
	}

	builder := server.NewBuilder("producer", cfg.Server.Port).
		WithLogger(log).
		WithDebug(cfg.Debug).
		WithVersion(serviceVersion).
		WithCORSOrigins(cfg.Server.CORSOrigins).
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, handlers, registry)
		})

	if db != nil {
		builder.WithDatabaseHealthCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return db.PingContext(ctx)
		})
	}
	if redisClient != nil {
		builder.WithRedisHealthCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
			defer cancel()
			return redisClient.Ping(ctx).Err()
		})
	}

	return &App{
		Server:   builder.Build(),
		Sessions: sessions,
	}
}

// setupFlags creates the flag registry, restores the saved snapshot when a
// store is available, and applies environment overrides on top.
func setupFlags(cfg *config.Config, redisClient *redis.Client, log logger.Logger) *flags.Registry {
	var flagStore flags.Store
	if redisClient != nil {
		flagStore = flags.NewRedisStore(redisClient, log)
	}

	flagRegistry := flags.NewRegistry(flagStore, log)

	if flagStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
		defer cancel()

		snapshot, loadErr := flagStore.Load(ctx)
		if loadErr != nil {
			log.Warn("failed to load saved flag snapshot, using defaults", logger.Error(loadErr))
		} else if snapshot != nil {
			flagRegistry.Restore(snapshot)
		}
	}

	flagRegistry.SeedFromEnv(os.Getenv)
	return flagRegistry
}

// setupNotifier builds the webhook fan-out from the configured URLs.
func setupNotifier(cfg *config.Config, flagRegistry *flags.Registry, log logger.Logger) *notify.Notifier {
	if len(cfg.Webhooks) == 0 {
		return nil
	}

	client := httpx.NewDefaultClient()
	senders := make([]notify.Sender, 0, len(cfg.Webhooks))
	for _, url := range cfg.Webhooks {
		senders = append(senders, notify.NewWebhookSender(url, client))
	}

	return notify.NewNotifier(senders, flagRegistry, log)
}
