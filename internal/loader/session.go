package loader

import (
	"GopherView/internal/logger"
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type loadResult struct {
	generation uint64
	asset      *Asset
	err        error
}

// Session owns the model currently shown. Loads run on background goroutines
// and their results are installed by Poll on the render goroutine, so the
// previous model stays consistent until a new one is complete.
type Session struct {
	loader  Loader
	results chan loadResult

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	handle     *Handle
	current    *Asset
	loading    bool
	closed     bool
}

func NewSession(l Loader) *Session {
	return &Session{
		loader:  l,
		results: make(chan loadResult, 16),
	}
}

// Select replaces the current model with the one behind h. Files that are not
// glTF are released and ignored, leaving the session untouched.
func (s *Session) Select(h *Handle) error {
	if h == nil {
		return fmt.Errorf("nil handle: %w", ErrUnsupportedFile)
	}
	if !Accept(h.Name) {
		logger.Log.Debug("Ignoring unsupported file", zap.String("name", h.Name))
		h.Release()
		return fmt.Errorf("%s: %w", h.Name, ErrUnsupportedFile)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		h.Release()
		return fmt.Errorf("session closed")
	}
	s.handle.Release()
	s.handle = h
	s.current = nil
	s.startLocked()
	logger.Log.Info("Loading model", zap.String("name", h.Name), zap.Uint64("generation", s.generation))
	return nil
}

// Reload loads the current handle again. The old model stays visible until
// the new one arrives.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.handle == nil {
		return
	}
	s.startLocked()
	logger.Log.Info("Reloading model", zap.String("name", s.handle.Name), zap.Uint64("generation", s.generation))
}

func (s *Session) startLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.generation++
	s.loading = true

	generation, h := s.generation, s.handle
	go func() {
		asset, err := s.loader.Load(ctx, h)
		select {
		case s.results <- loadResult{generation: generation, asset: asset, err: err}:
		case <-ctx.Done():
		}
	}()
}

// Poll installs finished loads. It reports whether the current asset changed
// and returns the error of a failed load, if any.
func (s *Session) Poll() (changed bool, err error) {
	for {
		select {
		case r := <-s.results:
			c, e := s.install(r)
			changed = changed || c
			if e != nil {
				err = e
			}
		default:
			return changed, err
		}
	}
}

func (s *Session) install(r loadResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.generation != s.generation || s.closed {
		logger.Log.Debug("Dropping stale load", zap.Uint64("generation", r.generation))
		return false, nil
	}
	s.loading = false
	if r.err != nil {
		logger.Log.Error("Failed to load model", zap.String("name", s.handle.Name), zap.Error(r.err))
		return false, r.err
	}
	s.current = r.asset
	return true, nil
}

// Current returns the installed asset, or nil.
func (s *Session) Current() *Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Loading reports whether a load is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Path returns the file path of the current handle.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return ""
	}
	return s.handle.Path
}

// Close cancels any load in flight and releases the handle.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.handle.Release()
	s.handle = nil
	s.current = nil
	s.loading = false
}
