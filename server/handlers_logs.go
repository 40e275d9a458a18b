package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aphyr/lazybot/telemetry"
	"github.com/aphyr/lazybot/transcript"
)

// HandleLogsDispatcher routes /logs and everything beneath it:
//
//	GET /logs                             global index
//	GET /logs/{server}                    server index
//	GET /logs/{server}/{channel}          channel index
//	GET /logs/{server}/{channel}/{file}   transcript (HTML or raw text)
//
// Segment hygiene is enforced here, before any filesystem access.
func (h *Handlers) HandleLogsDispatcher(w http.ResponseWriter, r *http.Request) {
	telemetry.CountRequest()
	if r.Method != http.MethodGet {
		h.notFound(w)
		return
	}
	segs, err := logPathSegments(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	switch len(segs) {
	case 0:
		h.serveGlobalIndex(w, r)
	case 1:
		h.serveServerIndex(w, r, segs[0])
	case 2:
		h.serveChannelIndex(w, r, segs[0], segs[1])
	case 3:
		h.serveTranscript(w, r, segs[0], segs[1], segs[2])
	default:
		h.notFound(w)
	}
}

// logPathSegments splits the escaped request path below /logs and unescapes
// each segment, rejecting anything that could escape the log root once
// joined into a filesystem path. A trailing slash is tolerated.
func logPathSegments(escapedPath string) ([]string, error) {
	rest := strings.TrimPrefix(escapedPath, "/logs")
	rest = strings.TrimPrefix(rest, "/")
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return nil, nil
	}
	parts := strings.Split(rest, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		seg, err := url.PathUnescape(p)
		if err != nil {
			return nil, fmt.Errorf("unescape path segment %q: %w", p, err)
		}
		if seg == "" || seg == "." || seg == ".." ||
			strings.ContainsAny(seg, "/\\") {
			return nil, fmt.Errorf("unsafe path segment %q", seg)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func (h *Handlers) serveGlobalIndex(w http.ResponseWriter, r *http.Request) {
	var sections []indexSection
	for _, srv := range h.catalog.Servers() {
		sections = append(sections, indexSection{
			Server:   srv,
			Channels: channelLinks(srv, h.catalog.Channels(srv)),
		})
	}
	writeHTML(w, func() error { return renderGlobalIndex(w, sections) })
}

func (h *Handlers) serveServerIndex(w http.ResponseWriter, r *http.Request, server string) {
	known := false
	for _, s := range h.catalog.Servers() {
		if s == server {
			known = true
			break
		}
	}
	if !known {
		h.notFound(w)
		return
	}
	writeHTML(w, func() error {
		return renderListing(w, server, channelLinks(server, h.catalog.Channels(server)))
	})
}

func (h *Handlers) serveChannelIndex(w http.ResponseWriter, r *http.Request, server, channel string) {
	if _, ok := transcript.Resolve(h.provider(), server, channel); !ok {
		h.notFound(w)
		return
	}
	links := []pageLink{}
	for _, name := range h.catalog.LogFiles(server, channel) {
		links = append(links, pageLink{
			Href:  "/logs/" + url.PathEscape(server) + "/" + url.PathEscape(channel) + "/" + url.PathEscape(name),
			Label: name,
		})
	}
	writeHTML(w, func() error { return renderListing(w, channel, links) })
}

func (h *Handlers) serveTranscript(w http.ResponseWriter, r *http.Request, server, channel, file string) {
	if !h.catalog.HasFile(server, channel, file) {
		h.notFound(w)
		return
	}
	dir, ok := transcript.Resolve(h.provider(), server, channel)
	if !ok {
		h.notFound(w)
		return
	}
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		// Listed a moment ago but unreadable now; treat as gone.
		slog.Warn("transcript read failed", slog.String("server", server), slog.String("channel", channel), slog.String("file", file), slog.Any("err", err))
		h.notFound(w)
		return
	}

	// Negotiate: only an Accept starting with text/html gets the rendered
	// page; everything else gets the raw transcript bytes.
	if !strings.HasPrefix(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
		_, _ = w.Write(data)
		return
	}

	title := channel + " " + strings.TrimSuffix(file, transcript.DayFileExt)
	lines := decodeLines(data)
	telemetry.TimeFunc(telemetry.RenderDuration, func() {
		writeHTML(w, func() error { return renderTranscript(w, title, lines) })
	})
}

// decodeLines decodes every transcript line for rendering. A line that fails
// to decode is kept raw and rendered escaped as-is; one bad record never
// aborts the page.
func decodeLines(data []byte) []lineView {
	raw := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	views := make([]lineView, 0, len(raw))
	for _, rl := range raw {
		if rl == "" {
			continue
		}
		line, err := transcript.DecodeLine(rl)
		if err != nil {
			views = append(views, lineView{Raw: rl, Bad: true})
			continue
		}
		views = append(views, lineView{
			Time:   line.Time,
			Actor:  line.Actor,
			Text:   line.Text,
			Action: line.Action,
		})
	}
	return views
}

func channelLinks(server string, channels []string) []pageLink {
	links := []pageLink{}
	for _, ch := range channels {
		links = append(links, pageLink{
			Href:  "/logs/" + url.PathEscape(server) + "/" + url.PathEscape(ch),
			Label: ch,
		})
	}
	return links
}

// writeHTML sets the negotiated HTML content type and runs render, logging
// render failures (the status line is already committed by then).
func writeHTML(w http.ResponseWriter, render func() error) {
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	if err := render(); err != nil {
		slog.Warn("transcript render failed", slog.Any("err", err))
	}
}
