package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/zeusync/locomotion/internal/core/events/cue"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Tone is one segment of a cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Wave     Wave
}

// voices maps every cue to the tones played for it.
var voices = map[cue.Kind][]Tone{
	cue.JumpStart:     {{440, 50 * time.Millisecond, WaveSine}, {660, 70 * time.Millisecond, WaveSine}},
	cue.WaypointStart: {{330, 120 * time.Millisecond, WaveSaw}},
	cue.WaypointEnd:   {{660, 60 * time.Millisecond, WaveSine}, {880, 90 * time.Millisecond, WaveSine}},
	cue.SnapRotate:    {{1200, 30 * time.Millisecond, WaveSquare}},
	cue.FlyChanged:    {{520, 80 * time.Millisecond, WaveSine}},
	cue.Landed:        {{0, 40 * time.Millisecond, WaveNoise}, {110, 60 * time.Millisecond, WaveSine}},
}

// Voice synthesizes the streamer for a cue, or nil for an unknown kind.
func Voice(kind cue.Kind, rate beep.SampleRate) beep.Streamer {
	tones, ok := voices[kind]
	if !ok {
		return nil
	}
	parts := make([]beep.Streamer, 0, len(tones))
	for i, t := range tones {
		osc := newOscillator(t, rate, uint64(kind)<<8|uint64(i))
		parts = append(parts, newEnvelope(osc, t.Duration, 5*time.Millisecond, t.Duration/3, rate))
	}
	return beep.Seq(parts...)
}

type oscillator struct {
	tone     Tone
	phase    float64
	position int
	length   int
	rate     beep.SampleRate
	noise    *rand.Rand
}

func newOscillator(t Tone, rate beep.SampleRate, seed uint64) *oscillator {
	return &oscillator{
		tone:   t,
		length: rate.N(t.Duration),
		rate:   rate,
		noise:  rand.New(rand.NewPCG(seed, 0x5eed)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}
		var val float64
		switch o.tone.Wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = val, val

		o.phase += o.tone.Freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a streamer in over attack and out over release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; e.release > 0 && remaining < e.release {
			vol = math.Max(0, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s linearly; zero silences it.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
