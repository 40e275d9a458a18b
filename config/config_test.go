package config

import (
	"os"
	"path/filepath"
	"testing"
)

const serversFixture = `irc.example.org:
  plugins: [log, help]
  log-channels: ["#ops", "#dev"]
  utc-offset: 0
irc.quiet.org:
  plugins: [help]
irc.home.org:
  plugins: [log]
  log-channels: ["#lounge"]
  log-dir: /srv/transcripts
  bot-username: homebot
  oauth-token: oauth:abc
`

func writeServersFile(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write servers file: %v", err)
	}
	t.Setenv("SERVERS_FILE", path)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVERS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_ROOT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.LogRoot != DefaultLogRoot {
		t.Errorf("LogRoot = %q, want %q", cfg.LogRoot, DefaultLogRoot)
	}
	if got := cfg.LoggingEnabledServers(); len(got) != 0 {
		t.Errorf("expected no servers without a servers file, got %v", got)
	}
}

func TestLoadServersFile(t *testing.T) {
	writeServersFile(t, serversFixture)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []string{"irc.example.org", "irc.home.org"}
	got := cfg.LoggingEnabledServers()
	if len(got) != len(want) {
		t.Fatalf("LoggingEnabledServers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LoggingEnabledServers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	channels := cfg.LoggedChannels("irc.example.org")
	if len(channels) != 2 || channels[0] != "#dev" || channels[1] != "#ops" {
		t.Errorf("LoggedChannels() = %v, want sorted [#dev #ops]", channels)
	}

	if !cfg.ChannelLogged("irc.example.org", "#dev") {
		t.Error("expected #dev to be logged on irc.example.org")
	}
	if cfg.ChannelLogged("irc.example.org", "dev") {
		t.Error("lookup must use the channel id as configured, marker included")
	}
}

func TestLoadMalformedServersFile(t *testing.T) {
	writeServersFile(t, "{not valid yaml")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed servers file")
	}
}

func TestUTCOffsetDefault(t *testing.T) {
	writeServersFile(t, serversFixture)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.UTCOffset("irc.example.org"); got != 0 {
		t.Errorf("UTCOffset(irc.example.org) = %d, want 0", got)
	}
	if got := cfg.UTCOffset("irc.home.org"); got != DefaultUTCOffset {
		t.Errorf("UTCOffset(irc.home.org) = %d, want default %d", got, DefaultUTCOffset)
	}
	if got := cfg.UTCOffset("irc.unknown.org"); got != DefaultUTCOffset {
		t.Errorf("UTCOffset(unknown) = %d, want default %d", got, DefaultUTCOffset)
	}
}

func TestLogRootFor(t *testing.T) {
	writeServersFile(t, serversFixture)
	t.Setenv("LOG_ROOT", "/var/chatlogs")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.LogRootFor("irc.example.org"); got != "/var/chatlogs" {
		t.Errorf("LogRootFor(irc.example.org) = %q, want /var/chatlogs", got)
	}
	if got := cfg.LogRootFor("irc.home.org"); got != "/srv/transcripts" {
		t.Errorf("LogRootFor(irc.home.org) = %q, want /srv/transcripts", got)
	}
}

func TestCredentialsFallback(t *testing.T) {
	writeServersFile(t, serversFixture)
	t.Setenv("BOT_USERNAME", "fallbackbot")
	t.Setenv("BOT_OAUTH_TOKEN", "oauth:fallback")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if u, tok := cfg.Credentials("irc.home.org"); u != "homebot" || tok != "oauth:abc" {
		t.Errorf("Credentials(irc.home.org) = %q/%q, want per-server values", u, tok)
	}
	if u, tok := cfg.Credentials("irc.example.org"); u != "fallbackbot" || tok != "oauth:fallback" {
		t.Errorf("Credentials(irc.example.org) = %q/%q, want env fallback", u, tok)
	}
}

func TestHolderReplace(t *testing.T) {
	first := &Config{LogRoot: "a"}
	second := &Config{LogRoot: "b"}
	h := NewHolder(first)
	provider := h.Provider()
	if provider().LogRoot != "a" {
		t.Fatalf("expected first snapshot")
	}
	h.Replace(second)
	if provider().LogRoot != "b" {
		t.Fatalf("expected replacement to be visible to existing providers")
	}
}
