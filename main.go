// Command lazybot is the main entrypoint for the channel-transcript logger.
// It:
//   - Loads configuration and initializes structured logging.
//   - Starts a chat recorder per logging-enabled server, appending every
//     message to per-day transcript files.
//   - Exposes the transcript listings and viewer over HTTP, plus /healthz
//     and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aphyr/lazybot/chat"
	"github.com/aphyr/lazybot/config"
	"github.com/aphyr/lazybot/server"
	"github.com/aphyr/lazybot/telemetry"
	"github.com/aphyr/lazybot/transcript"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		// unknown level -> keep info but note once using temporary logger
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	holder := config.NewHolder(cfg)
	provider := holder.Provider()

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("lazybot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer := transcript.NewWriter(provider)

	// One recorder per logging-enabled server. Servers without credentials
	// stay read-only: their transcripts remain browsable.
	servers := cfg.LoggingEnabledServers()
	if len(servers) == 0 {
		slog.Info("no logging-enabled servers configured; serving existing transcripts only")
	}
	slog.Info("starting recorders", slog.Int("server_count", len(servers)), slog.Any("servers", servers))
	for _, srv := range servers {
		go chat.StartRecorder(ctx, provider, writer, srv)
	}

	// HTTP server (transcripts/health/metrics)
	addr := cfg.HTTPAddr
	go func() {
		if err := server.Start(ctx, provider, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
