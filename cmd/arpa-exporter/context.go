package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"gostjobs/internal/awsutil"
	"gostjobs/internal/config"
	"gostjobs/internal/logging"
	"gostjobs/internal/notifications"
	"gostjobs/internal/queue"
	"gostjobs/internal/storage"
	"gostjobs/internal/workflow"
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
	return &commandContext{configFlag: configFlag}
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
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newSender(awsCfg aws.Config, cfg *config.Config, logger *slog.Logger) notifications.Sender {
	if !cfg.Email.Enabled {
		return notifications.NewNoopSender(logger)
	}
	return notifications.NewSESSenderFromConfig(awsCfg, cfg.Email.Source)
}

func (c *commandContext) buildManager(ctx context.Context) (*workflow.Manager, *config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	awsCfg, err := awsutil.LoadConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	store := storage.New(awsCfg, storage.Options{
		UsePathStyle: cfg.Storage.UsePathStyle,
		PartSize:     cfg.PartSizeBytes(),
		Concurrency:  cfg.Storage.Concurrency,
		Logger:       logger,
	})
	tasks := queue.NewFromConfig(awsCfg, cfg.Queue.URL, cfg.ReceiveWait(), logger)
	notifier := notifications.NewService(cfg, c.newSender(awsCfg, cfg, logger), logger)
	return workflow.NewManager(cfg, tasks, store, notifier, logger), cfg, logger, nil
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
