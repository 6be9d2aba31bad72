package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sidenotes/internal/reconcile"
	"sidenotes/internal/reducer"
	"sidenotes/internal/service"
)

func newTransfer(t *testing.T, prompt *reconcile.MockPrompt, deliver *service.MockDeliverer) (*service.TransferService, *service.NotepadService) {
	t.Helper()
	store := newStore(t)
	seedLibrary(t, store, pad("a", 100))

	notepads := service.NewNotepadService(store, nil, &service.MockEmitter{}, testWindow)
	if err := notepads.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	engine := reconcile.NewEngine(store, prompt)
	transfer := service.NewTransferService(store, engine, deliver, notepads, &service.MockEmitter{})
	return transfer, notepads
}

func TestExportNotepad(t *testing.T) {
	deliver := &service.MockDeliverer{}
	transfer, notepads := newTransfer(t, &reconcile.MockPrompt{}, deliver)

	// An unflushed edit must still make it into the exported file.
	notepads.Dispatch(context.Background(), reducer.UpdateTitle{Title: "My Shopping List"})

	tag, err := transfer.ExportNotepad(context.Background(), "a")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if tag != service.DeliverySaved {
		t.Errorf("expected saved outcome, got %s", tag)
	}

	if len(deliver.Deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(deliver.Deliveries))
	}
	d := deliver.Deliveries[0]
	if d.Filename != "my-shopping-list.sidenotes.txt" {
		t.Errorf("unexpected filename %q", d.Filename)
	}
	if d.ContentType != service.ExportMIME {
		t.Errorf("unexpected content type %q", d.ContentType)
	}

	var payload map[string]any
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		t.Fatalf("exported payload is not JSON: %v", err)
	}
	if payload["title"] != "My Shopping List" {
		t.Errorf("export missed the pending edit: %v", payload["title"])
	}
}

func TestBackupLibrary(t *testing.T) {
	deliver := &service.MockDeliverer{}
	transfer, _ := newTransfer(t, &reconcile.MockPrompt{}, deliver)

	if _, err := transfer.BackupLibrary(context.Background()); err != nil {
		t.Fatalf("backup: %v", err)
	}

	d := deliver.Deliveries[0]
	want := "notepads_" + time.Now().Format("20060102") + ".backup.sidenotes.txt"
	if d.Filename != want {
		t.Errorf("expected filename %q, got %q", want, d.Filename)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		t.Fatalf("backup payload is not JSON: %v", err)
	}
	if _, ok := payload["a"]; !ok {
		t.Error("backup payload missing notepad 'a'")
	}
}

func TestImportText_RefreshesLibrary(t *testing.T) {
	transfer, notepads := newTransfer(t, &reconcile.MockPrompt{}, &service.MockDeliverer{})

	out, err := transfer.ImportText(context.Background(), `{"id":"imported","title":"t","created":1,"lastUpdate":2,"notes":[]}`)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Resolution != reconcile.ResolutionWritten {
		t.Fatalf("expected written, got %s", out.Resolution)
	}

	found := false
	for _, np := range notepads.Library() {
		if np.ID == "imported" {
			found = true
		}
	}
	if !found {
		t.Error("imported notepad missing from the in-memory library")
	}
}

func TestRestoreText_ReloadsState(t *testing.T) {
	prompt := &reconcile.MockPrompt{Choices: []int{0}}
	transfer, notepads := newTransfer(t, prompt, &service.MockDeliverer{})

	out, err := transfer.RestoreText(context.Background(), `{"fresh":{"id":"fresh","title":"t","notes":[]}}`)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !out.ReloadRequired {
		t.Fatal("expected reload signal")
	}

	lib := notepads.Library()
	if len(lib) != 1 || lib[0].ID != "fresh" {
		t.Errorf("expected in-memory state resynchronized to [fresh], got %d entries", len(lib))
	}
	if notepads.Active().ID != "fresh" {
		t.Errorf("expected restored notepad active, got %s", notepads.Active().ID)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Shopping List":  "my-shopping-list",
		"  spaces   galore": "spaces-galore",
		"Émile's nötes":     "mile-s-n-tes",
		"":                  "notepad",
		"!!!":               "notepad",
		"Already-Slugged":   "already-slugged",
	}
	for in, want := range cases {
		if got := service.Slugify(in); got != want {
			t.Errorf("Slugify(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestExportFilename(t *testing.T) {
	got := service.ExportFilename("Weekend Plans")
	if !strings.HasSuffix(got, ".sidenotes.txt") {
		t.Errorf("expected .sidenotes.txt suffix, got %q", got)
	}
}
