package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sidenotes/internal/backup"
	"sidenotes/internal/config"
	"sidenotes/internal/domain"
	mcpserver "sidenotes/internal/mcp"
	"sidenotes/internal/reconcile"
	"sidenotes/internal/service"
	"sidenotes/internal/storage"
	"sidenotes/internal/watcher"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context
	cfg config.Config

	db       *storage.DB
	notepads *service.NotepadService
	transfer *service.TransferService
	confirm  *confirmBridge
	inbox    *watcher.Inbox
	backups  *backup.Scheduler
	mcp      *mcpserver.Server

	// storageDown is set when the database could not be opened; every
	// binding that needs persistence reports it instead of panicking.
	storageDown bool
}

// New creates a new App.
func New() *App {
	return &App{}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	cfg, err := config.Load()
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "config: %v", err)
	}
	a.cfg = cfg
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		// The UI stays up read-only; every persistence binding
		// surfaces the condition through domain.ErrStorageUnavailable.
		wailsRuntime.LogErrorf(ctx, "open storage: %v", err)
		a.storageDown = true
		return
	}
	a.db = db

	emitter := &wailsEmitter{ctx: ctx}
	store := storage.NewLibraryStore(db)
	snaps := storage.NewSnapshotStore(cfg.SnapshotPath)
	a.confirm = newConfirmBridge(ctx, emitter)

	a.notepads = service.NewNotepadService(store, snaps, emitter, cfg.PersistWindow)
	if err := a.notepads.Load(ctx); err != nil {
		wailsRuntime.LogErrorf(ctx, "load library: %v", err)
		if errors.Is(err, domain.ErrStorageUnavailable) {
			a.storageDown = true
			return
		}
	}

	engine := reconcile.NewEngine(store, a.confirm)
	a.transfer = service.NewTransferService(store, engine, &dialogDeliverer{ctx: ctx}, a.notepads, emitter)

	a.inbox = watcher.NewInbox(cfg.InboxDir, a.transfer)
	if err := a.inbox.Start(ctx); err != nil {
		wailsRuntime.LogErrorf(ctx, "inbox watcher: %v", err)
	}

	a.backups = backup.NewScheduler(a.transfer, cfg.BackupDir, cfg.BackupKeep)
	a.backups.Start(ctx, cfg.BackupCron)

	if cfg.MCPEnabled {
		a.mcp = mcpserver.New(ctx, mcpserver.Deps{
			Emitter:  emitter,
			Prompt:   a.confirm,
			Notepads: a.notepads,
			Transfer: a.transfer,
		})
		go func() {
			if err := a.mcp.ServeStdio(); err != nil {
				wailsRuntime.LogErrorf(ctx, "mcp server: %v", err)
			}
		}()
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.inbox != nil {
		a.inbox.Stop()
	}
	if a.backups != nil {
		a.backups.Stop()
	}
	if a.notepads != nil {
		a.notepads.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// StorageAvailable reports whether the persistent store opened. The
// frontend shows a read-only banner when it did not.
func (a *App) StorageAvailable() bool {
	return !a.storageDown
}

func (a *App) guardStorage() error {
	if a.storageDown {
		return domain.ErrStorageUnavailable
	}
	return nil
}

// wailsEmitter bridges service events onto the Wails event bus. It
// holds the startup context because only that context carries the
// Wails runtime handle.
type wailsEmitter struct {
	ctx context.Context
}

func (e *wailsEmitter) Emit(_ context.Context, event string, data any) {
	wailsRuntime.EventsEmit(e.ctx, event, data)
}
