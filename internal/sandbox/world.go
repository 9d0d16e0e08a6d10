// Package sandbox hosts a locomotion controller in a terminal: a top-down
// view of the nav mesh, keyboard input and waypoint markers.
package sandbox

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

var (
	_ locomotion.Scene       = (*World)(nil)
	_ locomotion.Permissions = (*World)(nil)
	_ locomotion.HeightQuery = (*World)(nil)
	_ locomotion.Occupancy   = (*World)(nil)
)

// Marker is a waypoint shown in the view.
type Marker struct {
	ID       uuid.UUID
	Position mgl64.Vec3
	Instant  bool
	Occupied bool
}

// World is the scene around the avatar. The tick loop and the input loop
// both touch it.
type World struct {
	mu        sync.RWMutex
	entered   bool
	ghost     bool
	immersive bool
	canFly    bool
	eyeHeight float64
	markers   map[uuid.UUID]*Marker
	order     []uuid.UUID
	released  int
	logger    log.Log
}

func NewWorld(eyeHeight float64, canFly bool, logger log.Log) *World {
	if logger == nil {
		logger = log.NewNop()
	}
	return &World{
		entered:   true,
		canFly:    canFly,
		eyeHeight: eyeHeight,
		markers:   make(map[uuid.UUID]*Marker),
		logger:    logger.With(log.String("system", "world")),
	}
}

func (w *World) Entered() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entered
}

func (w *World) Ghost() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ghost
}

func (w *World) Immersive() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.immersive
}

func (w *World) CanFly() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.canFly
}

// StandingHeight is the configured eye height; the sandbox avatar has no
// separate feet offset.
func (w *World) StandingHeight(bool) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.eyeHeight
}

func (w *World) SetEntered(v bool) {
	w.mu.Lock()
	w.entered = v
	w.mu.Unlock()
}

func (w *World) ToggleGhost() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ghost = !w.ghost
	return w.ghost
}

func (w *World) ToggleImmersive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.immersive = !w.immersive
	return w.immersive
}

// AddMarker records a queued waypoint.
func (w *World) AddMarker(m Marker) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markers[m.ID] = &m
	w.order = append(w.order, m.ID)
}

// WaypointDone marks the marker as occupied by the avatar. It matches
// locomotion.WaypointDone.
func (w *World) WaypointDone(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if m, ok := w.markers[id]; ok {
		m.Occupied = true
	}
}

// ReleaseOccupiedWaypoints drops every occupied marker.
func (w *World) ReleaseOccupiedWaypoints() {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.order[:0]
	for _, id := range w.order {
		if w.markers[id].Occupied {
			delete(w.markers, id)
			w.released++
			continue
		}
		kept = append(kept, id)
	}
	w.order = kept
	w.logger.Debug("occupied waypoints released", log.Int("total", w.released))
}

// Markers returns the markers in insertion order.
func (w *World) Markers() []Marker {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Marker, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.markers[id])
	}
	return out
}

// Released counts markers dropped by ReleaseOccupiedWaypoints.
func (w *World) Released() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.released
}

// Status lists the scene flags that are set, sorted.
func (w *World) Status() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var flags []string
	if !w.entered {
		flags = append(flags, "not-entered")
	}
	if w.ghost {
		flags = append(flags, "ghost")
	}
	if w.immersive {
		flags = append(flags, "immersive")
	}
	sort.Strings(flags)
	return flags
}
