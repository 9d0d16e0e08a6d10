// Package audio turns locomotion cues into short synthesized sounds mixed into
// a single beep stream. Opening a speaker is left to the caller.
package audio

import (
	"sync"

	"github.com/gopxl/beep"

	"github.com/zeusync/locomotion/internal/core/events/bus"
	"github.com/zeusync/locomotion/internal/core/events/cue"
	"github.com/zeusync/locomotion/internal/core/observability/log"
)

var _ cue.Sink = (*Player)(nil)

type Player struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	volume float64
	mixer  *beep.Mixer
	logger log.Log
	sub    bus.Subscription
	played map[cue.Kind]int
}

func NewPlayer(sampleRate int, volume float64, logger log.Log) *Player {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Player{
		rate:   beep.SampleRate(sampleRate),
		volume: volume,
		mixer:  &beep.Mixer{},
		logger: logger.With(log.String("system", "audio")),
		played: make(map[cue.Kind]int),
	}
}

func (p *Player) SampleRate() beep.SampleRate { return p.rate }

// Cue starts the voice of kind on the mixer.
func (p *Player) Cue(kind cue.Kind) {
	voice := Voice(kind, p.rate)
	if voice == nil {
		p.logger.Warn("no voice for cue", log.Stringer("cue", kind))
		return
	}
	p.mu.Lock()
	p.mixer.Add(withVolume(voice, p.volume))
	p.played[kind]++
	p.mu.Unlock()
}

// Attach plays every cue published on b.
func (p *Player) Attach(b bus.EventBus) error {
	sub, err := cue.Subscribe(b, p.Cue)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.sub = sub
	p.mu.Unlock()
	return nil
}

// Playing is the number of voices still sounding.
func (p *Player) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// Played returns how often kind was cued.
func (p *Player) Played(kind cue.Kind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[kind]
}

// Streamer is the endless mixed output, safe to hand to speaker.Play.
func (p *Player) Streamer() beep.Streamer {
	return lockedStreamer{p}
}

// Close detaches from the bus and silences every voice.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Clear()
	if p.sub == nil {
		return nil
	}
	err := p.sub.Cancel()
	p.sub = nil
	return err
}

type lockedStreamer struct{ p *Player }

func (s lockedStreamer) Stream(samples [][2]float64) (int, bool) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	return s.p.mixer.Stream(samples)
}

func (s lockedStreamer) Err() error { return nil }
