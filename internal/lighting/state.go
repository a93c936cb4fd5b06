package lighting

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Ranges the control panel binds its widgets to. The store itself does not enforce them.
const (
	MinIntensity  = 0.0
	MaxIntensity  = 5.0
	IntensityStep = 0.1

	MinPosition  = -10.0
	MaxPosition  = 10.0
	PositionStep = 0.1
)

type DirectionalLight struct {
	Intensity float32
	Color     Color
	Position  mgl32.Vec3
}

type AmbientLight struct {
	Intensity float32
	Color     Color
}

// State is a value snapshot of both lights.
type State struct {
	Directional DirectionalLight
	Ambient     AmbientLight
}

func DefaultState() State {
	return State{
		Directional: DirectionalLight{
			Intensity: 1,
			Color:     White,
			Position:  mgl32.Vec3{5, 5, 5},
		},
		Ambient: AmbientLight{
			Intensity: 0.5,
			Color:     White,
		},
	}
}

// Store holds the current light state. Mutators replace a single field and
// never touch the other light. Values are accepted as-is.
//
// Writes come from UI callbacks; the lock exists for the render goroutine reading snapshots.
type Store struct {
	mu       sync.RWMutex
	state    State
	revision uint64
}

func NewStore() *Store {
	return &Store{state: DefaultState()}
}

func (s *Store) Directional() DirectionalLight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Directional
}

func (s *Store) Ambient() AmbientLight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Ambient
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Revision increases by one on every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) SetDirectionalLightIntensity(intensity float32) {
	s.updateDirectional(func(d *DirectionalLight) { d.Intensity = intensity })
}

func (s *Store) SetDirectionalLightColor(c Color) {
	s.updateDirectional(func(d *DirectionalLight) { d.Color = c })
}

func (s *Store) SetDirectionalLightPosition(position mgl32.Vec3) {
	s.updateDirectional(func(d *DirectionalLight) { d.Position = position })
}

func (s *Store) SetAmbientLightIntensity(intensity float32) {
	s.updateAmbient(func(a *AmbientLight) { a.Intensity = intensity })
}

func (s *Store) SetAmbientLightColor(c Color) {
	s.updateAmbient(func(a *AmbientLight) { a.Color = c })
}

func (s *Store) updateDirectional(apply func(*DirectionalLight)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Directional
	apply(&next)
	s.state.Directional = next
	s.revision++
}

func (s *Store) updateAmbient(apply func(*AmbientLight)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Ambient
	apply(&next)
	s.state.Ambient = next
	s.revision++
}
