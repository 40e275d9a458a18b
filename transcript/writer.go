package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aphyr/lazybot/config"
	"github.com/aphyr/lazybot/telemetry"
)

// DayFileExt is the suffix of every transcript day-file.
const DayFileExt = ".txt"

// Writer appends chat events to the day's transcript file. Writes to the
// same (server, channel) pair are serialized so concurrent events never
// interleave mid-line; distinct channels proceed in parallel. Files are
// opened in append mode and closed per event, so readers always observe a
// byte-complete file up to the last finished append.
type Writer struct {
	provider config.Provider
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewWriter(provider config.Provider) *Writer {
	return &Writer{
		provider: provider,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (w *Writer) lockFor(server, channel string) *sync.Mutex {
	key := server + "\x00" + channel
	w.mu.Lock()
	defer w.mu.Unlock()
	mu, ok := w.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		w.locks[key] = mu
	}
	return mu
}

// Write appends ev to today's day-file for its (server, channel). It returns
// (false, nil) when the channel is not configured for logging: skipping is a
// normal outcome, not an error. I/O failures are returned (and counted) but
// never retried; a failed write must not prevent later unrelated writes.
func (w *Writer) Write(ev ChatEvent) (bool, error) {
	cfg := w.provider()
	dir, ok := Resolve(cfg, ev.Server, ev.Channel)
	if !ok {
		telemetry.CountWriteSkipped()
		return false, nil
	}

	// Timestamps use the server's configured offset, hours east of UTC.
	local := w.now().UTC().Add(time.Duration(cfg.UTCOffset(ev.Server)) * time.Hour)
	line := EncodeLine(local, ev)
	name := filepath.Join(dir, local.Format("2006-01-02")+DayFileExt)

	mu := w.lockFor(ev.Server, ev.Channel)
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		telemetry.CountWriteFailure()
		return false, fmt.Errorf("create transcript dir %s: %w", dir, err)
	}
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		telemetry.CountWriteFailure()
		return false, fmt.Errorf("open transcript %s: %w", name, err)
	}
	_, werr := f.WriteString(line + "\n")
	cerr := f.Close()
	if werr != nil {
		telemetry.CountWriteFailure()
		return false, fmt.Errorf("append transcript %s: %w", name, werr)
	}
	if cerr != nil {
		telemetry.CountWriteFailure()
		return false, fmt.Errorf("close transcript %s: %w", name, cerr)
	}
	telemetry.CountLineWritten()
	return true, nil
}
