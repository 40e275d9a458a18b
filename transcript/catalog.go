package transcript

import (
	"os"
	"sort"
	"strings"

	"github.com/aphyr/lazybot/config"
)

// Catalog lists recorded transcripts by cross-referencing the configuration
// with the on-disk tree. All methods take a fresh configuration snapshot per
// call; a missing or unreadable directory reads as "no logs yet" and yields
// an empty listing.
type Catalog struct {
	provider config.Provider
}

func NewCatalog(provider config.Provider) *Catalog {
	return &Catalog{provider: provider}
}

// Servers returns the logging-enabled server ids, sorted.
func (c *Catalog) Servers() []string {
	return c.provider().LoggingEnabledServers()
}

// Channels returns the logged channels for a server, sorted.
func (c *Catalog) Channels(server string) []string {
	return c.provider().LoggedChannels(server)
}

// LogFiles returns the day-file names recorded for a channel, sorted by name
// (chronological, given the fixed date format). Unlogged channels and
// channels with no transcripts yet both yield an empty listing.
func (c *Catalog) LogFiles(server, channel string) []string {
	dir, ok := Resolve(c.provider(), server, channel)
	if !ok {
		return []string{}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), DayFileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// HasFile reports whether name is an exact match for one of the channel's
// recorded day-files.
func (c *Catalog) HasFile(server, channel, name string) bool {
	for _, f := range c.LogFiles(server, channel) {
		if f == name {
			return true
		}
	}
	return false
}
