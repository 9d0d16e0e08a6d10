package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAccounting(t *testing.T) {
	p := NewHotPool(func() int { return 0 }, 1).WithReset(func(v *int) { *v = 0 })

	a := p.Acquire()
	a.Value = 7
	assert.Equal(t, 1, p.InUse())
	assert.True(t, a.Held())

	b := p.Acquire()
	stats := p.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 1, stats.Grown)

	require.NoError(t, p.Release(a))
	assert.Zero(t, a.Value)
	assert.ErrorIs(t, p.Release(a), ErrNotAcquired)
	require.NoError(t, p.Release(b))
	assert.Zero(t, p.InUse())

	assert.ErrorIs(t, p.Release(nil), ErrNotAcquired)
}

func TestPoolReusesReleasedSlots(t *testing.T) {
	p := NewHotPool(func() []float64 { return make([]float64, 4) }, 2)
	s := p.Acquire()
	require.NoError(t, p.Release(s))
	again := p.Acquire()
	assert.Same(t, s, again)
	assert.Zero(t, p.Stats().Grown)
}
