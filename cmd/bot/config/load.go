package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/tickets/pkg/dataaccess"
	"github.com/Jacobbrewer1/tickets/pkg/logging"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load reads the configuration from the environment. If envFile is set, the
// file is loaded first. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required setting is present.
func (c *Config) Validate() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvBotToken))
	}
	if c.ApplicationId == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvApplicationId))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.GracePeriod <= 0 {
		errs = append(errs, errors.New("TICKET_GRACE_PERIOD must be positive"))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, errors.New("TICKET_RETRY_ATTEMPTS must be at least 1"))
	}

	switch strings.ToLower(c.StoreBackend) {
	case dataaccess.BackendBolt:
		if c.BoltPath == "" {
			errs = append(errs, errors.New("BOLT_PATH is required for the bolt store"))
		}
	case dataaccess.BackendMongo:
		if c.MongoUri == "" {
			errs = append(errs, fmt.Errorf("%s is required for the mongo store", EnvMongoUri))
		}
	case dataaccess.BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.StoreBackend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// StoreOptions are the options for opening the configured store.
func (c *Config) StoreOptions() dataaccess.Options {
	return dataaccess.Options{
		Backend:       c.StoreBackend,
		MongoURI:      c.MongoUri,
		BoltPath:      c.BoltPath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// Logging is the logging configuration.
func (c *Config) Logging() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	lc := logging.NewConfig(AppName)
	lc.Level = level
	lc.Format = c.LogFormat
	return lc, nil
}
