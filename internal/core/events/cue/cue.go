// Package cue carries fire-and-forget locomotion notifications (jump start,
// waypoint start/end, snap rotation, fly toggles, landings) to whoever wants
// to react to them, typically an audio player.
package cue

import (
	"github.com/zeusync/locomotion/internal/core/events/bus"
	"github.com/zeusync/locomotion/internal/core/observability/log"
)

// EventType is the bus event type every cue is published under.
const EventType = "locomotion.cue"

const source = "locomotion"

type Kind uint8

const (
	JumpStart Kind = iota + 1
	WaypointStart
	WaypointEnd
	SnapRotate
	FlyChanged
	Landed
)

// Kinds lists every cue kind in declaration order.
func Kinds() []Kind {
	return []Kind{JumpStart, WaypointStart, WaypointEnd, SnapRotate, FlyChanged, Landed}
}

func (k Kind) String() string {
	switch k {
	case JumpStart:
		return "jump_start"
	case WaypointStart:
		return "waypoint_start"
	case WaypointEnd:
		return "waypoint_end"
	case SnapRotate:
		return "snap_rotate"
	case FlyChanged:
		return "fly_changed"
	case Landed:
		return "landed"
	default:
		return "unknown"
	}
}

// Sink receives cues. Implementations must not block the caller.
type Sink interface {
	Cue(kind Kind)
}

// NopSink drops every cue.
type NopSink struct{}

func (NopSink) Cue(Kind) {}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Kind)

func (f SinkFunc) Cue(kind Kind) { f(kind) }

// BusSink publishes cues on an event bus. Handler failures are logged and
// otherwise swallowed.
type BusSink struct {
	bus    bus.EventBus
	logger log.Log
}

func NewBusSink(b bus.EventBus, logger log.Log) *BusSink {
	if logger == nil {
		logger = log.NewNop()
	}
	return &BusSink{bus: b, logger: logger}
}

func (s *BusSink) Cue(kind Kind) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(EventType, source, kind)); err != nil {
		s.logger.Warn("cue handler failed", log.Stringer("cue", kind), log.Error(err))
	}
}

// Subscribe registers fn for every cue published on b.
func Subscribe(b bus.EventBus, fn func(Kind)) (bus.Subscription, error) {
	return b.Subscribe(EventType, func(e bus.Event) error {
		if kind, ok := e.Data().(Kind); ok {
			fn(kind)
		}
		return nil
	})
}
