// CLAUDE:SUMMARY CLI entry point for picaoverlay: opens the watch page in Chrome and keeps the download overlay on it.
// Command picaoverlay opens a video site in Chrome and keeps the Pica
// download overlay on its player.
//
// Usage:
//
//	picaoverlay                                   # defaults, visible Chrome
//	picaoverlay -config pica.yaml
//	picaoverlay -url https://www.youtube.com/watch?v=abc123 -status-addr 127.0.0.1:7420
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/pica/internal/assets"
	"github.com/hazyhaar/pica/internal/browser"
	"github.com/hazyhaar/pica/internal/clipboard"
	"github.com/hazyhaar/pica/internal/config"
	"github.com/hazyhaar/pica/internal/pagehost"
	"github.com/hazyhaar/pica/internal/statusapi"
	"github.com/hazyhaar/pica/overlay"
)

func main() {
	configPath := flag.String("config", "", "path to pica.yaml config file")
	pageURL := flag.String("url", "", "page to open (overrides page.url)")
	statusAddr := flag.String("status-addr", "", "serve /health and /state on this address (overrides status.addr)")
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

	cfg, err := loadConfig(*configPath, *pageURL, *statusAddr)
	if err != nil {
		logger.Error("picaoverlay: config", "error", err)
		os.Exit(1)
	}
	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("picaoverlay: fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path, pageURL, statusAddr string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if pageURL != "" {
		cfg.Page.URL = pageURL
	}
	if statusAddr != "" {
		cfg.Status.Addr = statusAddr
	}
	return cfg, nil
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	mode, err := browser.ParseMode(cfg.Browser.Mode)
	if err != nil {
		return err
	}
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Mode:             mode,
		UserDataDir:      cfg.Browser.UserDataDir,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		NavigateTimeout:  cfg.Browser.NavigateTimeout,
		Logger:           logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer mgr.Close()

	tab, err := browser.OpenTab(ctx, mgr, cfg.Page.URL)
	if err != nil {
		return err
	}
	defer tab.Close()

	oc := cfg.OverlayConfig()
	oc.Icons = assets.New()
	oc.Clipboard = clipboardSink(cfg.Clipboard.Mode, tab)

	sess := pagehost.New(pagehost.Config{
		Page:    tab.Page,
		Overlay: oc,
		Logger:  logger,
	})

	statusDone := make(chan struct{})
	if cfg.Status.Addr != "" {
		go func() {
			defer close(statusDone)
			if err := statusapi.Serve(ctx, cfg.Status.Addr, statusapi.NewRouter(sess, logger), logger); err != nil {
				logger.Error("picaoverlay: status server", "error", err)
			}
		}()
	} else {
		close(statusDone)
	}

	err = sess.Run(ctx)
	<-statusDone
	return err
}

func clipboardSink(mode string, tab *browser.Tab) overlay.ClipboardSink {
	if mode == "page" {
		return pagehost.PageClipboard{Page: tab.Page}
	}
	return clipboard.System{}
}
