// Package transcript records chat events into per-day transcript files and
// reads them back. The on-disk layout is
// <root>/<server>/<sanitized channel>/<YYYY-MM-DD>.txt, one chat line per
// record. The line format here is the durable wire contract of the
// subsystem; both directions must stay byte-compatible with it.
package transcript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ChatEvent is a single inbound or outbound chat message delivered by the
// messaging runtime. The timestamp is assigned at write time, not here.
type ChatEvent struct {
	Server  string
	Channel string
	Actor   string
	Text    string
	// Action marks a third-person narrative message (/me waves).
	Action bool
}

// Line is one decoded transcript record. It exists only for rendering; the
// encoded text on disk remains the source of truth.
type Line struct {
	Time   string // HH:MM:SS
	Actor  string
	Text   string
	Action bool
}

// ErrBadLine reports a transcript line that does not match the wire format.
// Callers isolate it to the offending line; it never aborts a whole read.
var ErrBadLine = errors.New("transcript: malformed line")

// EncodeLine renders an event as a transcript line, without trailing newline.
// Text is stored verbatim: the file is a human-readable transcript and
// escaping is a presentation concern, applied at render time only.
func EncodeLine(t time.Time, ev ChatEvent) string {
	stamp := t.Format("15:04:05")
	if ev.Action {
		return fmt.Sprintf("[%s] *%s %s", stamp, ev.Actor, ev.Text)
	}
	return fmt.Sprintf("[%s] %s: %s", stamp, ev.Actor, ev.Text)
}

// linePattern matches the timestamp prefix; actor/message splitting happens
// after the match. Lazily compiled on first use.
var linePattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\] (.*)$`)
})

// DecodeLine parses one transcript line back into its structured fields.
// Returns ErrBadLine (wrapped) when the line does not match the format.
func DecodeLine(raw string) (Line, error) {
	m := linePattern().FindStringSubmatch(raw)
	if m == nil {
		return Line{}, fmt.Errorf("%w: %q", ErrBadLine, raw)
	}
	rest := m[2]
	if strings.HasPrefix(rest, "*") {
		actor, text, ok := strings.Cut(rest[1:], " ")
		if !ok || actor == "" {
			return Line{}, fmt.Errorf("%w: %q", ErrBadLine, raw)
		}
		return Line{Time: m[1], Actor: actor, Text: text, Action: true}, nil
	}
	actor, text, ok := strings.Cut(rest, ": ")
	if !ok {
		return Line{}, fmt.Errorf("%w: %q", ErrBadLine, raw)
	}
	return Line{Time: m[1], Actor: actor, Text: text}, nil
}
