package transcript

import (
	"path/filepath"
	"strings"

	"github.com/aphyr/lazybot/config"
)

// SanitizeChannel strips leading channel-type markers (#, &, +, !) so the
// name is usable as a directory leaf. No other normalization happens, so two
// channels that differ only in markers collide on disk; the configured
// channel id, marker included, stays the lookup key everywhere else.
func SanitizeChannel(channel string) string {
	return strings.TrimLeft(channel, "#&+!")
}

// Resolve maps a (server, channel) pair to its transcript directory. The
// second return is false when the channel is not configured for logging on
// that server; that is a normal state, not an error.
func Resolve(cfg *config.Config, server, channel string) (string, bool) {
	if !cfg.ChannelLogged(server, channel) {
		return "", false
	}
	return filepath.Join(cfg.LogRootFor(server), server, SanitizeChannel(channel)), true
}
