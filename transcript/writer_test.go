package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aphyr/lazybot/config"
)

func intp(v int) *int { return &v }

func testConfig(root string) *config.Config {
	return &config.Config{
		LogRoot: root,
		Servers: map[string]config.ServerConfig{
			"irc.example.org": {
				Plugins:     []string{config.LogPlugin},
				LogChannels: []string{"#dev", "#ops"},
				UTCOffset:   intp(0),
			},
		},
	}
}

func fixedWriter(cfg *config.Config, at time.Time) *Writer {
	w := NewWriter(config.Static(cfg))
	w.now = func() time.Time { return at }
	return w
}

func TestWriteAppendsDayFile(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2024, 3, 9, 14, 5, 30, 0, time.UTC)
	w := fixedWriter(testConfig(root), at)

	written, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(filepath.Join(root, "irc.example.org", "dev", "2024-03-09.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[14:05:30] alice: hi\n", string(data))
}

func TestWriteActionEvent(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2024, 3, 9, 9, 0, 1, 0, time.UTC)
	w := fixedWriter(testConfig(root), at)

	_, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "bob", Text: "waves", Action: true})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "irc.example.org", "dev", "2024-03-09.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[09:00:01] *bob waves\n", string(data))
}

func TestWriteAppliesUTCOffset(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	sc := cfg.Servers["irc.example.org"]
	sc.UTCOffset = intp(2)
	cfg.Servers["irc.example.org"] = sc

	// 23:30 UTC + 2h rolls the day file over to the next date.
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	w := fixedWriter(cfg, at)

	_, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "alice", Text: "late"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "irc.example.org", "dev", "2024-03-10.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[01:30:00] alice: late\n", string(data))
}

func TestWriteSkipsUnloggedChannel(t *testing.T) {
	root := t.TempDir()
	w := fixedWriter(testConfig(root), time.Now())

	written, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#random", Actor: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.False(t, written)

	written, err = w.Write(ChatEvent{Server: "irc.unknown.org", Channel: "#dev", Actor: "alice", Text: "hi"})
	require.NoError(t, err)
	assert.False(t, written)

	// A skipped write leaves the tree untouched.
	_, err = os.Stat(filepath.Join(root, "irc.example.org"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteIsolatedPerChannel(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	w := fixedWriter(testConfig(root), at)

	_, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "alice", Text: "hi"})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "irc.example.org"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dev", entries[0].Name())
}

func TestWriteIdempotentDirCreation(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	w := fixedWriter(testConfig(root), at)

	ev := ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "alice", Text: "hi"}
	_, err := w.Write(ev)
	require.NoError(t, err)
	_, err = w.Write(ev)
	require.NoError(t, err)

	dir := filepath.Join(root, "irc.example.org", "dev")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFailureReported(t *testing.T) {
	root := t.TempDir()
	// Occupy the server path with a file so directory creation must fail.
	require.NoError(t, os.WriteFile(filepath.Join(root, "irc.example.org"), []byte("x"), 0o644))

	w := fixedWriter(testConfig(root), time.Now())
	written, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "alice", Text: "hi"})
	assert.False(t, written)
	assert.Error(t, err)
}

func TestConcurrentWritesNeverTearLines(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	w := fixedWriter(testConfig(root), at)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := w.Write(ChatEvent{Server: "irc.example.org", Channel: "#dev", Actor: "alice", Text: strings.Repeat("x", 512)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(root, "irc.example.org", "dev", "2024-03-09.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, n)
	for _, l := range lines {
		line, err := DecodeLine(l)
		require.NoError(t, err)
		assert.Len(t, line.Text, 512)
	}
}
