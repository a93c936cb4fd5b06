package ui

import (
	"GopherView/internal/engine"
	"GopherView/internal/loader"
	"GopherView/internal/logger"
	"errors"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	sqdialog "github.com/sqweek/dialog"
	"go.uber.org/zap"
)

// handleFromURI references a dropped item. Local files are used in place;
// anything else is copied to a temporary file, which only keeps .glb and
// self-contained .gltf models loadable.
func handleFromURI(uri fyne.URI) (*loader.Handle, error) {
	if uri.Scheme() == "file" {
		return loader.FileHandle(uri.Path()), nil
	}
	r, err := storage.Reader(uri)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri.Name(), err)
	}
	defer r.Close()
	return loader.TempHandle(uri.Name(), r)
}

// openDropped opens the first dropped item when it is a glTF model. Anything
// else is ignored without feedback. It returns the directory of the opened
// file, if local.
func openDropped(viewer *engine.Viewer, uris []fyne.URI) (string, bool) {
	if len(uris) == 0 {
		return "", false
	}
	uri := uris[0]
	if !loader.Accept(uri.Name()) {
		logger.Log.Debug("Ignoring dropped file", zap.String("uri", uri.String()))
		return "", false
	}
	h, err := handleFromURI(uri)
	if err != nil {
		logger.Log.Error("Failed to read dropped file", zap.String("uri", uri.String()), zap.Error(err))
		return "", false
	}
	if !viewer.Open(h) {
		return "", false
	}
	if uri.Scheme() == "file" {
		return filepath.Dir(uri.Path()), true
	}
	return "", true
}

// browse shows the native file picker and opens the chosen model. It blocks
// until the picker closes.
func browse(viewer *engine.Viewer, startDir string) (string, bool) {
	filename, err := sqdialog.File().
		SetStartDir(startDir).
		Filter("glTF models", "gltf", "glb").
		Title("Open Model").
		Load()
	if err != nil {
		if !errors.Is(err, sqdialog.ErrCancelled) {
			logger.Log.Error("File picker failed", zap.Error(err))
		}
		return "", false
	}
	if !viewer.Open(loader.FileHandle(filename)) {
		return "", false
	}
	return filepath.Dir(filename), true
}
