package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the app reads at startup. Everything
// has a default; env vars (optionally from a .env file) override.
type Config struct {
	DataDir       string
	DBPath        string
	SnapshotPath  string
	BackupDir     string
	InboxDir      string
	PersistWindow time.Duration
	BackupCron    string
	BackupKeep    int
	MCPEnabled    bool
	LogLevel      string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	dataDir := getenv("SIDENOTES_DATA_DIR", defaultDataDir())

	cfg := Config{
		DataDir:       dataDir,
		DBPath:        getenv("SIDENOTES_DB_PATH", filepath.Join(dataDir, "sidenotes.db")),
		SnapshotPath:  getenv("SIDENOTES_SNAPSHOT_PATH", filepath.Join(dataDir, "fallback.json")),
		BackupDir:     getenv("SIDENOTES_BACKUP_DIR", filepath.Join(dataDir, "backups")),
		InboxDir:      getenv("SIDENOTES_INBOX_DIR", filepath.Join(dataDir, "inbox")),
		PersistWindow: getduration("SIDENOTES_PERSIST_WINDOW", 600*time.Millisecond),
		BackupCron:    getenv("SIDENOTES_BACKUP_CRON", "0 3 * * *"),
		BackupKeep:    getint("SIDENOTES_BACKUP_KEEP", 14),
		MCPEnabled:    getenv("SIDENOTES_MCP_ENABLED", "false") == "true",
		LogLevel:      getenv("SIDENOTES_LOG_LEVEL", "info"),
	}
	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sidenotes"
	}
	return filepath.Join(home, ".local", "share", "sidenotes")
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getduration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
