package jiralog

import (
	"fmt"
	"sync"

	"github.com/danielolaszy/jiralog/internal/appender"
	"github.com/danielolaszy/jiralog/internal/cache"
	"github.com/danielolaszy/jiralog/internal/config"
	"github.com/danielolaszy/jiralog/internal/github"
	"github.com/danielolaszy/jiralog/internal/jira"
	"github.com/danielolaszy/jiralog/internal/logging"
	"github.com/danielolaszy/jiralog/internal/metrics"
	"github.com/danielolaszy/jiralog/internal/tracker"
)

var (
	sharedOnce  sync.Once
	sharedCache *cache.Cache
)

// processCache returns the cache shared by every handler in the process. The
// first caller's sizes win.
func processCache(cfg config.CacheConfig) *cache.Cache {
	sharedOnce.Do(func() {
		sharedCache = cache.New(cfg.Size, cfg.Idle)
	})
	return sharedCache
}

// New creates a Handler configured from the environment.
func New(opts ...Option) (*Handler, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("jiralog: %w", err)
	}
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a Handler from an already loaded configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Handler, error) {
	sink, err := NewSink(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewHandler(sink, opts...), nil
}

// NewSink wires the configured tracker, the fingerprint cache and metrics
// into an appender. Missing credentials are not an error: the sink stays
// unconfigured and reports every event as such.
func NewSink(cfg *config.Config, opts ...Option) (appender.Sink, error) {
	o := buildOptions(opts)

	service, err := NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("jiralog: %w", err)
	}

	var c *cache.Cache
	if o.privateCache {
		c = cache.New(cfg.Cache.Size, cfg.Cache.Idle)
	} else {
		c = processCache(cfg.Cache)
	}

	appenderOpts := []appender.Option{appender.WithTimeout(cfg.Timeout)}
	if o.registerer != nil {
		appenderOpts = append(appenderOpts, appender.WithMetrics(metrics.New(o.registerer)))
	}

	if !cfg.Jira.HasCredentials() {
		logging.Warn("tracker credentials not set, events will not be filed",
			"tracker", cfg.Tracker,
			"username", logging.MaskSensitive(cfg.Jira.Username),
			"password", logging.MaskSensitive(cfg.Jira.Password))
	}

	var sink appender.Sink = appender.New(cfg.Jira, service, c, appenderOpts...)
	if o.async {
		sink = appender.NewAsync(sink, o.asyncOpts...)
	}

	logging.Debug("initialized appender",
		"tracker", cfg.Tracker,
		"url", cfg.Jira.URL,
		"project", cfg.Jira.ProjectKey,
		"async", o.async)

	return sink, nil
}

// NewService returns the ticket service selected by cfg.Tracker.
func NewService(cfg *config.Config) (tracker.Service, error) {
	switch cfg.Tracker {
	case config.TrackerJira, "":
		return jira.NewClient(cfg.Jira.URL, cfg.Timeout), nil
	case config.TrackerGitHub:
		return github.NewClient(cfg.Jira.URL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported tracker %q", cfg.Tracker)
	}
}
