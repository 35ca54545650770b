package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/pica/internal/browser"
	"github.com/hazyhaar/pica/internal/clipboard"
	"github.com/hazyhaar/pica/internal/pagehost"
)

func TestLoadConfig_FlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pica.yaml")
	data := "page:\n  url: https://www.youtube.com/\nstatus:\n  addr: 127.0.0.1:1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, "https://www.youtube.com/watch?v=abc", "127.0.0.1:7420")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Page.URL != "https://www.youtube.com/watch?v=abc" || cfg.Status.Addr != "127.0.0.1:7420" {
		t.Fatalf("cfg = %+v", cfg)
	}

	cfg, err = loadConfig("", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Page.URL != "https://www.youtube.com/" || cfg.Status.Addr != "" {
		t.Fatalf("defaults = %+v / %+v", cfg.Page, cfg.Status)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "", ""); err == nil {
		t.Fatal("missing config accepted")
	}
}

func TestClipboardSink(t *testing.T) {
	tab := &browser.Tab{}
	if _, ok := clipboardSink("page", tab).(pagehost.PageClipboard); !ok {
		t.Error("page mode did not select the page clipboard")
	}
	if _, ok := clipboardSink("system", tab).(clipboard.System); !ok {
		t.Error("system mode did not select the system clipboard")
	}
}
