package backup

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ─────────────────────────────────────────────────────────────
// Scheduler — periodic library backups with retention pruning
// ─────────────────────────────────────────────────────────────

// Writer produces a backup file in a directory and returns its path.
// Satisfied by TransferService.WriteBackupFile.
type Writer interface {
	WriteBackupFile(dir string) (string, error)
}

// Scheduler writes a library backup into Dir on a cron schedule and
// keeps only the Keep most recent files.
type Scheduler struct {
	writer Writer
	dir    string
	keep   int
	log    *logrus.Entry
	sched  *cron.Cron
}

func NewScheduler(writer Writer, dir string, keep int) *Scheduler {
	return &Scheduler{
		writer: writer,
		dir:    dir,
		keep:   keep,
		log:    logrus.WithField("component", "backup"),
	}
}

// Start registers the cron job. Invalid expressions disable scheduled
// backups rather than failing startup.
func (s *Scheduler) Start(ctx context.Context, expr string) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() { s.RunOnce(ctx) })
	if err != nil {
		s.log.WithError(err).WithField("expr", expr).Warn("invalid backup schedule, scheduled backups disabled")
		return
	}
	c.Start()
	s.sched = c
	s.log.WithField("expr", expr).Info("scheduled backups enabled")
}

// RunOnce writes one backup and prunes old ones. Exposed for manual
// triggering and tests.
func (s *Scheduler) RunOnce(ctx context.Context) {
	path, err := s.writer.WriteBackupFile(s.dir)
	if err != nil {
		s.log.WithError(err).Error("scheduled backup failed")
		return
	}
	s.log.WithField("file", path).Info("scheduled backup written")
	if err := s.prune(); err != nil {
		s.log.WithError(err).Warn("backup pruning failed")
	}
}

// Stop halts the cron scheduler. Safe to call when never started.
func (s *Scheduler) Stop() {
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
}

// prune deletes the oldest backup files beyond the retention count.
func (s *Scheduler) prune() error {
	if s.keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".backup.sidenotes.txt") {
			continue
		}
		backups = append(backups, e.Name())
	}
	if len(backups) <= s.keep {
		return nil
	}

	// Filenames embed the date, so lexical order is chronological.
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-s.keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.log.WithError(err).WithField("file", name).Warn("could not remove old backup")
		}
	}
	return nil
}
