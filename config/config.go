// Package config loads environment variables and the servers file, providing a
// typed Config used across the service. It applies sensible defaults so the
// binary can run locally with minimal setup. The configuration is externally
// owned and may be swapped at runtime; core components take a Provider and
// re-read the snapshot on every operation instead of caching projections.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	// LogPlugin is the capability tag that marks a server as logging-enabled.
	LogPlugin = "log"

	// DefaultUTCOffset is applied when a server omits utc-offset. Carried
	// over from the original deployment; override per server when it matters.
	DefaultUTCOffset = -6

	// DefaultLogRoot is the on-disk root for transcripts when neither the
	// server record nor LOG_ROOT sets one.
	DefaultLogRoot = "logs"
)

// ServerConfig is the per-server record from the servers file.
type ServerConfig struct {
	// Plugins lists enabled capability tags; logging requires LogPlugin.
	Plugins []string `yaml:"plugins"`
	// LogChannels lists channels to log, channel marker included (e.g. "#dev").
	LogChannels []string `yaml:"log-channels"`
	// LogDir overrides the transcript root for this server.
	LogDir string `yaml:"log-dir"`
	// UTCOffset is hours east of UTC used for transcript timestamps.
	UTCOffset *int `yaml:"utc-offset"`
	// Address overrides the chat endpoint (host:port); empty uses the
	// client library's default endpoint.
	Address string `yaml:"address"`
	// TLS controls transport security when Address is set.
	TLS bool `yaml:"tls"`
	// BotUsername / OAuthToken are chat credentials; empty falls back to
	// the BOT_USERNAME / BOT_OAUTH_TOKEN environment variables.
	BotUsername string `yaml:"bot-username"`
	OAuthToken  string `yaml:"oauth-token"`
}

type Config struct {
	// Servers maps server id -> per-server record.
	Servers map[string]ServerConfig

	// HTTPAddr is the listen address for the transcript HTTP surface.
	HTTPAddr string

	// LogRoot is the default transcript root for servers without log-dir.
	LogRoot string

	// BotUsername / BotOAuthToken are fallback chat credentials.
	BotUsername   string
	BotOAuthToken string
}

// Load reads environment variables and the servers file (SERVERS_FILE,
// default servers.yaml). A missing servers file is not an error; the daemon
// then logs nothing and serves empty listings until configuration appears.
func Load() (*Config, error) {
	cfg := &Config{Servers: map[string]ServerConfig{}}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogRoot = os.Getenv("LOG_ROOT")
	if cfg.LogRoot == "" {
		cfg.LogRoot = DefaultLogRoot
	}

	cfg.BotUsername = os.Getenv("BOT_USERNAME")
	cfg.BotOAuthToken = os.Getenv("BOT_OAUTH_TOKEN")

	path := os.Getenv("SERVERS_FILE")
	if path == "" {
		path = "servers.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read servers file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg.Servers); err != nil {
		return nil, fmt.Errorf("parse servers file %s: %w", path, err)
	}
	if cfg.Servers == nil {
		cfg.Servers = map[string]ServerConfig{}
	}
	return cfg, nil
}

// LoggingEnabledServers returns the server ids whose plugin set contains the
// logging capability tag, sorted for stable display.
func (c *Config) LoggingEnabledServers() []string {
	out := []string{}
	for id, sc := range c.Servers {
		for _, p := range sc.Plugins {
			if p == LogPlugin {
				out = append(out, id)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// LoggingEnabled reports whether a single server carries the logging tag.
func (c *Config) LoggingEnabled(server string) bool {
	for _, p := range c.Servers[server].Plugins {
		if p == LogPlugin {
			return true
		}
	}
	return false
}

// LoggedChannels returns the channels logged on a server, sorted. An unknown
// server yields an empty slice, not an error.
func (c *Config) LoggedChannels(server string) []string {
	sc, ok := c.Servers[server]
	if !ok {
		return []string{}
	}
	out := append([]string{}, sc.LogChannels...)
	sort.Strings(out)
	return out
}

// ChannelLogged reports whether channel is configured for logging on server.
// The lookup uses the channel id exactly as configured, marker included.
func (c *Config) ChannelLogged(server, channel string) bool {
	for _, ch := range c.Servers[server].LogChannels {
		if ch == channel {
			return true
		}
	}
	return false
}

// LogRootFor returns the transcript root directory for a server.
func (c *Config) LogRootFor(server string) string {
	if sc, ok := c.Servers[server]; ok && sc.LogDir != "" {
		return sc.LogDir
	}
	return c.LogRoot
}

// UTCOffset returns the server's timestamp offset in hours east of UTC,
// falling back to DefaultUTCOffset when the record leaves it unset.
func (c *Config) UTCOffset(server string) int {
	if sc, ok := c.Servers[server]; ok && sc.UTCOffset != nil {
		return *sc.UTCOffset
	}
	return DefaultUTCOffset
}

// Credentials returns the chat credentials for a server, falling back to the
// process-wide BOT_USERNAME / BOT_OAUTH_TOKEN values.
func (c *Config) Credentials(server string) (username, token string) {
	sc := c.Servers[server]
	username, token = sc.BotUsername, sc.OAuthToken
	if username == "" {
		username = c.BotUsername
	}
	if token == "" {
		token = c.BotOAuthToken
	}
	return username, token
}
