package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"sidenotes/internal/reconcile"
)

// ─────────────────────────────────────────────────────────────
// Inbox watcher — imports files dropped into the inbox directory
// ─────────────────────────────────────────────────────────────

// settleWindow delays the import until the file has stopped changing,
// so half-written drops are not read mid-copy.
const settleWindow = 500 * time.Millisecond

// Importer feeds file text through the import pipeline. Satisfied by
// TransferService.ImportText.
type Importer interface {
	ImportText(ctx context.Context, text string) (*reconcile.ImportOutcome, error)
}

// Inbox watches a directory for exported notepad files and imports
// them. Backup files are skipped; restoring a backup replaces the
// whole library and must stay an explicit user action.
type Inbox struct {
	dir      string
	importer Importer
	log      *logrus.Entry

	mu      sync.Mutex
	timers  map[string]*time.Timer
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func NewInbox(dir string, importer Importer) *Inbox {
	return &Inbox{
		dir:      dir,
		importer: importer,
		log:      logrus.WithField("component", "inbox"),
		timers:   make(map[string]*time.Timer),
	}
}

// Start creates the inbox directory if needed and begins watching it.
func (in *Inbox) Start(ctx context.Context) error {
	if err := os.MkdirAll(in.dir, 0755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(in.dir); err != nil {
		w.Close()
		return err
	}
	in.watcher = w

	watchCtx, cancel := context.WithCancel(ctx)
	in.cancel = cancel
	go in.loop(watchCtx)

	in.log.WithField("dir", in.dir).Info("watching inbox")
	return nil
}

// Stop halts the watcher. Safe to call when never started.
func (in *Inbox) Stop() {
	if in.cancel != nil {
		in.cancel()
		in.cancel = nil
	}
	if in.watcher != nil {
		in.watcher.Close()
		in.watcher = nil
	}
	in.mu.Lock()
	for _, t := range in.timers {
		t.Stop()
	}
	in.timers = make(map[string]*time.Timer)
	in.mu.Unlock()
}

func (in *Inbox) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !Importable(event.Name) {
				continue
			}
			in.schedule(ctx, event.Name)
		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			in.log.WithError(err).Warn("inbox watch error")
		}
	}
}

// schedule (re)arms the settle timer for one path; a burst of writes
// collapses into a single import once the file goes quiet.
func (in *Inbox) schedule(ctx context.Context, path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.timers[path]; ok {
		t.Stop()
	}
	in.timers[path] = time.AfterFunc(settleWindow, func() {
		in.mu.Lock()
		delete(in.timers, path)
		in.mu.Unlock()
		in.consume(ctx, path)
	})
}

// consume imports one settled file and removes it on success.
func (in *Inbox) consume(ctx context.Context, path string) {
	text, err := os.ReadFile(path)
	if err != nil {
		in.log.WithError(err).WithField("file", path).Warn("could not read inbox file")
		return
	}
	out, err := in.importer.ImportText(ctx, string(text))
	if err != nil {
		in.log.WithError(err).WithField("file", path).Warn("inbox import rejected, file kept")
		return
	}
	in.log.WithFields(logrus.Fields{"file": path, "resolution": out.Resolution}).Info("inbox file imported")

	if out.Resolution == reconcile.ResolutionCancelled {
		return // the user said no; keep the file so they can retry
	}
	if err := os.Remove(path); err != nil {
		in.log.WithError(err).WithField("file", path).Warn("could not remove imported file")
	}
}

// Importable reports whether the path looks like an exported notepad
// file. Backup files never auto-import.
func Importable(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".backup.sidenotes.txt") {
		return false
	}
	return strings.HasSuffix(name, ".sidenotes.txt")
}
