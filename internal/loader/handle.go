package loader

import (
	"GopherView/internal/logger"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Handle references the data of a chosen model file. A handle created from
// a stream owns a temporary copy that Release removes.
type Handle struct {
	Name string // Display name, including the extension
	Path string

	stream  bool // Copied from a reader, so no sibling files exist
	release func() error
	once    sync.Once
}

// FileHandle references a file already on disk. Releasing it is a no-op.
func FileHandle(path string) *Handle {
	return &Handle{Name: filepath.Base(path), Path: path}
}

// TempHandle copies r into a private temp directory, keeping name's extension
// so the loader can tell .glb from .gltf. Only the stream itself is copied:
// a .gltf that references external buffers or images cannot be loaded this
// way, while .glb and self-contained .gltf files can.
func TempHandle(name string, r io.Reader) (*Handle, error) {
	dir, err := os.MkdirTemp("", "gopherview-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	path := filepath.Join(dir, "model"+filepath.Ext(name))

	f, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("copy %s: %w", name, err)
	}

	return &Handle{
		Name:    filepath.Base(name),
		Path:    path,
		stream:  true,
		release: func() error { return os.RemoveAll(dir) },
	}, nil
}

// Release frees the handle's resources. It is safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.release == nil {
			return
		}
		if err := h.release(); err != nil {
			logger.Log.Warn("Failed to release model handle", zap.String("name", h.Name), zap.Error(err))
		}
	})
}
