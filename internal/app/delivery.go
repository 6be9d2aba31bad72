package app

import (
	"context"
	"fmt"
	"os"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sidenotes/internal/service"
)

// dialogDeliverer hands exported files to the user through the native
// save dialog. Cancelling the dialog is a dismissal, not an error.
type dialogDeliverer struct {
	ctx context.Context
}

func (d *dialogDeliverer) Deliver(ctx context.Context, payload []byte, filename, contentType, title string) (service.DeliveryTag, error) {
	path, err := wailsRuntime.SaveFileDialog(d.ctx, wailsRuntime.SaveDialogOptions{
		Title:           title,
		DefaultFilename: filename,
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Sidenotes files", Pattern: "*.sidenotes.txt"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("save dialog: %w", err)
	}
	if path == "" {
		return service.DeliveryDismissed, nil
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return service.DeliverySaved, nil
}
