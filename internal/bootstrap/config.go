package bootstrap

import (
	"fmt"
	"os"

	"github.com/JustAGhosT/content-creation-sub001/internal/config"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// LoadConfig loads and validates the service configuration. The config
// file path comes from CONFIG_PATH, defaulting to config.yml.
func LoadConfig() (*config.Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg, loadErr := config.Load(configPath)
	if loadErr != nil {
		return nil, fmt.Errorf("load config: %w", loadErr)
	}

	return cfg, nil
}

// CreateLogger creates a structured logger for the service.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	log, logErr := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Debug,
	})
	if logErr != nil {
		return nil, fmt.Errorf("create logger: %w", logErr)
	}

	return log.With(logger.String("service", "producer")), nil
}
