// CLAUDE:SUMMARY CLI entry point for picahandoff: polls the system clipboard for overlay hand-offs and routes them to sinks.
// Command picahandoff is the receiving end of the overlay's clipboard
// hand-off. It polls the system clipboard and routes every accepted video
// URL to the configured sinks (stdout by default).
//
// Usage:
//
//	picahandoff
//	picahandoff -config pica.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/pica/handoff"
	"github.com/hazyhaar/pica/handoff/sink"
	"github.com/hazyhaar/pica/internal/clipboard"
	"github.com/hazyhaar/pica/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to pica.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil {
		logger.Error("picahandoff: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	router, err := buildSinks(cfg.Handoff.Sinks, logger)
	if err != nil {
		return err
	}
	defer router.Close()

	p, err := handoff.NewPoller(handoff.Config{
		Clipboard: clipboard.System{},
		Sink:      router,
		Token:     cfg.Clipboard.TriggerToken,
		Interval:  cfg.Handoff.Interval,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

// buildSinks opens every configured sink. Without any, requests go to
// stdout.
func buildSinks(specs []config.SinkConfig, logger *slog.Logger) (*sink.Router, error) {
	var sinks []sink.Sink
	for _, sc := range specs {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, sink.NewStdout(nil))
		case "webhook":
			sinks = append(sinks, sink.NewWebhook(sc.URL, sink.WithWebhookLogger(logger)))
		case "journal":
			j, err := sink.OpenJournal(sc.Path)
			if err != nil {
				sink.NewRouter(logger, sinks...).Close()
				return nil, err
			}
			sinks = append(sinks, j)
		default:
			logger.Warn("picahandoff: unknown sink type", "type", sc.Type)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.NewStdout(nil))
	}
	return sink.NewRouter(logger, sinks...), nil
}
