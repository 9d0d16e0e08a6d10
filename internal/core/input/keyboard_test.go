package input

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestKeyboard() (*Keyboard, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	k := NewKeyboard(locomotion.DefaultPreferences(), 100*time.Millisecond)
	k.now = clock.now
	return k, clock
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHeldKeysExpire(t *testing.T) {
	k, clock := newTestKeyboard()
	assert.True(t, k.HandleEvent(runeKey('w')))
	assert.True(t, k.HandleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)))

	intent := k.Sample()
	assert.Equal(t, 1.0, intent.Forward)
	assert.Equal(t, 1.0, intent.Strafe)
	assert.False(t, intent.Boost)

	clock.t = clock.t.Add(150 * time.Millisecond)
	assert.Equal(t, locomotion.Intent{}, k.Sample())
}

func TestUpperCaseBoosts(t *testing.T) {
	k, _ := newTestKeyboard()
	k.HandleEvent(runeKey('S'))
	intent := k.Sample()
	assert.Equal(t, -1.0, intent.Forward)
	assert.True(t, intent.Boost)
}

func TestPulsesAreConsumedOnce(t *testing.T) {
	k, _ := newTestKeyboard()
	k.HandleEvent(runeKey(' '))
	k.HandleEvent(runeKey('f'))
	k.HandleEvent(runeKey('q'))

	first := k.Sample()
	assert.True(t, first.Jump)
	assert.True(t, first.Fly)
	assert.True(t, first.SnapRotateLeft)
	assert.False(t, first.SnapRotateRight)
	assert.Equal(t, locomotion.Intent{}, k.Sample())
}

func TestUnboundEvents(t *testing.T) {
	k, _ := newTestKeyboard()
	assert.False(t, k.HandleEvent(runeKey('z')))
	assert.False(t, k.HandleEvent(tcell.NewEventResize(80, 24)))
	assert.Equal(t, ActionNone, Bind(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
}

func TestPreferences(t *testing.T) {
	k, _ := newTestKeyboard()
	prefs := k.Preferences()
	prefs.DisableStrafing = true
	k.SetPreferences(prefs)
	assert.True(t, k.Preferences().DisableStrafing)
}
