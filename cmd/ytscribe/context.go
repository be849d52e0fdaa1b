package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/credentials"
	"ytscribe/internal/fetcher"
	"ytscribe/internal/logging"
	"ytscribe/internal/services/clarifai"
	"ytscribe/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// pipeline wires the caption fetcher and model client from configuration.
func (c *commandContext) pipeline() (*config.Config, *fetcher.Fetcher, *clarifai.Client, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	captionFetcher, err := fetcher.New(fetcher.Config{
		Binary:       cfg.Fetcher.Binary,
		Language:     cfg.Fetcher.Language,
		SleepSeconds: cfg.Fetcher.SleepSubtitlesSeconds,
		Timeout:      cfg.FetcherTimeout(),
		TempDir:      cfg.Paths.TempDir,
	}, fetcher.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	client := clarifai.NewClient(clarifai.Config{
		BaseURL:        cfg.Clarifai.BaseURL,
		TimeoutSeconds: cfg.Clarifai.TimeoutSeconds,
	}, credentials.NewResolver(cfg.Credentials), clarifai.WithLogger(logger))
	return cfg, captionFetcher, client, logger, nil
}

func (c *commandContext) controller() (*session.Controller, error) {
	cfg, captionFetcher, client, logger, err := c.pipeline()
	if err != nil {
		return nil, err
	}
	return session.NewController(captionFetcher, client,
		session.WithDefaultModel(cfg.Clarifai.DefaultModel),
		session.WithLogger(logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
