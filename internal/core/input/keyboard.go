// Package input maps terminal key events onto locomotion intents.
package input

import (
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

// Action is a bindable input.
type Action uint8

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
	ActionStrafeLeft
	ActionStrafeRight
	ActionJump
	ActionFly
	ActionSnapLeft
	ActionSnapRight
)

// DefaultHold is how long a key counts as held after its last repeat.
// Terminals report no key releases.
const DefaultHold = 180 * time.Millisecond

var _ locomotion.InputSource = (*Keyboard)(nil)

// Keyboard is a locomotion.InputSource fed from tcell key events. HandleEvent
// and Sample may run on different goroutines.
type Keyboard struct {
	mu     sync.Mutex
	now    func() time.Time
	hold   time.Duration
	until  map[Action]time.Time
	boost  time.Time
	pulses map[Action]bool
	prefs  locomotion.Preferences
}

func NewKeyboard(prefs locomotion.Preferences, hold time.Duration) *Keyboard {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Keyboard{
		now:    time.Now,
		hold:   hold,
		until:  make(map[Action]time.Time),
		pulses: make(map[Action]bool),
		prefs:  prefs,
	}
}

// Bind returns the action for a key event. Upper-case letters map like their
// lower-case form.
func Bind(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionForward
	case tcell.KeyDown:
		return ActionBackward
	case tcell.KeyLeft:
		return ActionStrafeLeft
	case tcell.KeyRight:
		return ActionStrafeRight
	case tcell.KeyRune:
	default:
		return ActionNone
	}
	switch unicode.ToLower(ev.Rune()) {
	case 'w':
		return ActionForward
	case 's':
		return ActionBackward
	case 'a':
		return ActionStrafeLeft
	case 'd':
		return ActionStrafeRight
	case ' ':
		return ActionJump
	case 'f':
		return ActionFly
	case 'q':
		return ActionSnapLeft
	case 'e':
		return ActionSnapRight
	}
	return ActionNone
}

// HandleEvent records a key event and reports whether it was bound.
func (k *Keyboard) HandleEvent(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	action := Bind(key)
	if action == ActionNone {
		return false
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	switch action {
	case ActionJump, ActionFly, ActionSnapLeft, ActionSnapRight:
		k.pulses[action] = true
	default:
		k.until[action] = now.Add(k.hold)
		if (key.Key() == tcell.KeyRune && unicode.IsUpper(key.Rune())) || key.Modifiers()&tcell.ModShift != 0 {
			k.boost = now.Add(k.hold)
		}
	}
	return true
}

// Sample returns the current intent and consumes one-shot actions.
func (k *Keyboard) Sample() locomotion.Intent {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	held := func(a Action) float64 {
		if now.Before(k.until[a]) {
			return 1
		}
		return 0
	}
	intent := locomotion.Intent{
		Forward:         held(ActionForward) - held(ActionBackward),
		Strafe:          held(ActionStrafeRight) - held(ActionStrafeLeft),
		Boost:           now.Before(k.boost),
		Jump:            k.pulses[ActionJump],
		Fly:             k.pulses[ActionFly],
		SnapRotateLeft:  k.pulses[ActionSnapLeft],
		SnapRotateRight: k.pulses[ActionSnapRight],
	}
	clear(k.pulses)
	return intent
}

func (k *Keyboard) Preferences() locomotion.Preferences {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.prefs
}

// SetPreferences replaces the user preferences.
func (k *Keyboard) SetPreferences(p locomotion.Preferences) {
	k.mu.Lock()
	k.prefs = p
	k.mu.Unlock()
}
