package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"sidenotes/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir == "" {
		t.Error("expected a default data dir")
	}
	if cfg.DBPath != filepath.Join(cfg.DataDir, "sidenotes.db") {
		t.Errorf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.PersistWindow != 600*time.Millisecond {
		t.Errorf("unexpected default persist window %v", cfg.PersistWindow)
	}
	if cfg.BackupKeep != 14 {
		t.Errorf("unexpected default backup retention %d", cfg.BackupKeep)
	}
	if cfg.MCPEnabled {
		t.Error("MCP should default off")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SIDENOTES_DATA_DIR", "/tmp/sn")
	t.Setenv("SIDENOTES_PERSIST_WINDOW", "2s")
	t.Setenv("SIDENOTES_BACKUP_KEEP", "3")
	t.Setenv("SIDENOTES_MCP_ENABLED", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/sn" {
		t.Errorf("data dir override ignored: %q", cfg.DataDir)
	}
	if cfg.DBPath != "/tmp/sn/sidenotes.db" {
		t.Errorf("db path should follow data dir: %q", cfg.DBPath)
	}
	if cfg.PersistWindow != 2*time.Second {
		t.Errorf("persist window override ignored: %v", cfg.PersistWindow)
	}
	if cfg.BackupKeep != 3 {
		t.Errorf("backup keep override ignored: %d", cfg.BackupKeep)
	}
	if !cfg.MCPEnabled {
		t.Error("MCP enable override ignored")
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("SIDENOTES_PERSIST_WINDOW", "soon")
	t.Setenv("SIDENOTES_BACKUP_KEEP", "many")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PersistWindow != 600*time.Millisecond {
		t.Errorf("bad duration should fall back to default, got %v", cfg.PersistWindow)
	}
	if cfg.BackupKeep != 14 {
		t.Errorf("bad int should fall back to default, got %d", cfg.BackupKeep)
	}
}
