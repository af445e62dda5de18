package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"subgen/internal/config"
	"subgen/internal/generation"
	"subgen/internal/history"
	"subgen/internal/logging"
	"subgen/internal/notifications"
	"subgen/internal/srtfile"
	"subgen/internal/subtitleapi"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

// ensureConfig loads .env from the working directory (if any) before the
// config file so SUBGEN_* fallbacks can come from either place.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = fmt.Errorf("load .env: %w", err)
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the CLI logger. Interactive sessions own the terminal, so
// they only log to the configured file.
func (c *commandContext) logger(interactive bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !interactive {
		return logging.NewFromConfig(cfg)
	}
	if cfg.Logging.Dir == "" {
		return logging.NewNop(), nil
	}
	path := filepath.Join(cfg.Logging.Dir, "subgen.log")
	return logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
}

// session bundles the coordinator with its observers for one command run.
type session struct {
	cfg         *config.Config
	logger      *slog.Logger
	coordinator *generation.Coordinator
	writer      *srtfile.Writer
	recorder    *history.Recorder
	notifier    *notifications.Observer
	store       *history.Store
}

func (c *commandContext) newSession(interactive bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(interactive)
	if err != nil {
		return nil, err
	}

	client := subtitleapi.New(subtitleapi.Config{
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.APITimeout(),
	})
	s := &session{
		cfg:         cfg,
		logger:      logger,
		coordinator: generation.NewCoordinator(client, generation.WithLogger(logger)),
		writer:      srtfile.NewWriter(cfg.Output.Dir, srtfile.WithLogger(logger)),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix history.path or set history.enabled = false"),
				logging.String(logging.FieldImpact, "this request will not be recorded"),
			)
		} else {
			s.store = store
			s.recorder = history.NewRecorder(store, logger)
			s.coordinator.Subscribe(s.recorder)
		}
	}

	s.notifier = notifications.NewObserver(notifications.NewService(cfg), logger)
	s.coordinator.Subscribe(s.notifier)
	return s, nil
}

// saved propagates a written file to history and notifications.
func (s *session) saved(requestID, path string) {
	if s.recorder != nil {
		s.recorder.RecordOutput(context.Background(), requestID, path)
	}
	s.notifier.Saved(path, requestID)
}

func (s *session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
