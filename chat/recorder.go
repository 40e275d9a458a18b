// Package chat connects to configured chat servers and feeds every inbound
// and outbound message through the transcript writer. The recorder is the
// adapter between the messaging runtime and the logging core: expected
// conditions (channel not logged, directory races) never propagate back
// into the client's dispatch goroutine; only unexpected I/O failures are
// logged and counted.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/aphyr/lazybot/config"
	"github.com/aphyr/lazybot/transcript"
)

// Recorder records chat for a single configured server.
type Recorder struct {
	provider config.Provider
	writer   *transcript.Writer
	server   string
	username string
	client   *twitch.Client
}

// NewRecorder builds a recorder for the given server id. It returns an error
// when chat credentials are missing; the caller decides whether that is
// fatal (for a logging-enabled server it usually just means read-only mode).
func NewRecorder(provider config.Provider, writer *transcript.Writer, server string) (*Recorder, error) {
	cfg := provider()
	username, token := cfg.Credentials(server)
	if username == "" || token == "" {
		return nil, fmt.Errorf("chat credentials not set for %s", server)
	}
	client := twitch.NewClient(username, token)
	if sc, ok := cfg.Servers[server]; ok && sc.Address != "" {
		client.IrcAddress = sc.Address
		client.TLS = sc.TLS
	}
	r := &Recorder{
		provider: provider,
		writer:   writer,
		server:   server,
		username: username,
		client:   client,
	}
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		r.log(transcript.ChatEvent{
			Server:  server,
			Channel: "#" + msg.Channel,
			Actor:   msg.User.Name,
			Text:    msg.Message,
			Action:  msg.Action,
		})
	})
	return r, nil
}

// Run joins the server's logged channels and blocks until the context is
// canceled or the connection fails.
func (r *Recorder) Run(ctx context.Context) error {
	for _, ch := range r.provider().LoggedChannels(r.server) {
		r.client.Join(strings.TrimLeft(ch, "#"))
	}

	// Handle context cancellation by closing the client
	go func() {
		<-ctx.Done()
		if err := r.client.Disconnect(); err != nil {
			slog.Debug("chat disconnect", slog.String("server", r.server), slog.Any("err", err))
		}
	}()

	err := r.client.Connect()
	if ctx.Err() != nil {
		// Shutdown requested; the disconnect error is expected.
		return nil
	}
	if err != nil {
		return fmt.Errorf("chat connect %s: %w", r.server, err)
	}
	return nil
}

// Say sends text to a channel and records the outbound line through the same
// hook as inbound chat.
func (r *Recorder) Say(channel, text string) {
	r.client.Say(strings.TrimLeft(channel, "#"), text)
	r.log(transcript.ChatEvent{
		Server:  r.server,
		Channel: channel,
		Actor:   r.username,
		Text:    text,
	})
}

// log attempts the transcript write and keeps failures out of the dispatch
// path.
func (r *Recorder) log(ev transcript.ChatEvent) {
	if _, err := r.writer.Write(ev); err != nil {
		slog.Error("failed to log chat message", slog.String("server", ev.Server), slog.String("channel", ev.Channel), slog.Any("err", err))
	}
}

// StartRecorder runs a recorder for server until ctx is canceled. Missing
// credentials disable recording for that server; listings still serve
// whatever is already on disk.
func StartRecorder(ctx context.Context, provider config.Provider, writer *transcript.Writer, server string) {
	rec, err := NewRecorder(provider, writer, server)
	if err != nil {
		slog.Info("chat recorder disabled", slog.String("server", server), slog.Any("err", err))
		return
	}
	if err := rec.Run(ctx); err != nil {
		slog.Error("chat recorder exited", slog.String("server", server), slog.Any("err", err))
	}
}
