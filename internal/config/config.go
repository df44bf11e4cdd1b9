// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// TrackerJira files tickets in a JIRA project.
	TrackerJira = "jira"
	// TrackerGitHub files tickets as GitHub issues.
	TrackerGitHub = "github"
)

// Config holds all configuration parameters for the appender.
type Config struct {
	Tracker string
	Jira    JiraConfig
	Cache   CacheConfig
	Log     LogConfig

	// Timeout bounds each call to the ticket service.
	Timeout time.Duration
}

// JiraConfig holds ticket tracker connection and ticket settings. The same
// fields serve the GitHub tracker, where Password is a token and ProjectKey
// is "owner/repo".
type JiraConfig struct {
	URL        string
	Username   string
	Password   string
	ProjectKey string
	Label      string
	Assignee   string
	IssueType  string
}

// CacheConfig holds dedup cache settings.
type CacheConfig struct {
	Size int
	Idle time.Duration
}

// LogConfig holds the appender's own diagnostic logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// HasCredentials reports whether both username and password are set.
func (j JiraConfig) HasCredentials() bool {
	return j.Username != "" && j.Password != ""
}

// LoadConfig initializes and loads configuration from environment variables.
// Missing credentials are not an error here: an appender without them stays
// unconfigured and drops every event.
func LoadConfig() (*Config, error) {
	// Only the explicitly bound variables below are read.
	v := viper.New()

	v.SetDefault("tracker", TrackerJira)
	v.SetDefault("jira.issue_type", "1")
	v.SetDefault("cache.size", 5000)
	v.SetDefault("cache.idle", 7*24*time.Hour)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	bindings := map[string][]string{
		"tracker":         {"JIRALOG_TRACKER"},
		"jira.url":        {"JIRA_URL"},
		"jira.username":   {"JIRA_USERNAME"},
		"jira.password":   {"JIRA_PASSWORD", "JIRA_TOKEN"},
		"jira.project":    {"JIRA_PROJECT"},
		"jira.label":      {"JIRA_LABEL"},
		"jira.assignee":   {"JIRA_ASSIGNEE"},
		"jira.issue_type": {"JIRA_ISSUE_TYPE"},
		"cache.size":      {"JIRALOG_CACHE_SIZE"},
		"cache.idle":      {"JIRALOG_CACHE_IDLE"},
		"timeout":         {"JIRALOG_TIMEOUT"},
		"log.level":       {"LOG_LEVEL"},
		"log.format":      {"LOG_FORMAT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	config := &Config{
		Tracker: strings.ToLower(v.GetString("tracker")),
		Jira: JiraConfig{
			URL:        strings.TrimSuffix(v.GetString("jira.url"), "/"),
			Username:   v.GetString("jira.username"),
			Password:   v.GetString("jira.password"),
			ProjectKey: v.GetString("jira.project"),
			Label:      v.GetString("jira.label"),
			Assignee:   v.GetString("jira.assignee"),
			IssueType:  v.GetString("jira.issue_type"),
		},
		Cache: CacheConfig{
			Size: v.GetInt("cache.size"),
			Idle: v.GetDuration("cache.idle"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Timeout: v.GetDuration("timeout"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig rejects values that cannot be used at all.
func validateConfig(config *Config) error {
	switch config.Tracker {
	case TrackerJira, TrackerGitHub:
	default:
		return fmt.Errorf("unsupported tracker %q: expected %q or %q", config.Tracker, TrackerJira, TrackerGitHub)
	}
	if config.Cache.Size < 0 {
		return fmt.Errorf("cache size must not be negative: %d", config.Cache.Size)
	}
	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", config.Timeout)
	}
	return nil
}

// ValidateJiraConfig validates that everything needed to reach the tracker
// is present.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" && config.Tracker != TrackerGitHub {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Password == "" {
		missingVars = append(missingVars, "JIRA_PASSWORD")
	}
	if config.Jira.ProjectKey == "" {
		missingVars = append(missingVars, "JIRA_PROJECT")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
