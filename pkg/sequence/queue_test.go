package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOAcrossGrowth(t *testing.T) {
	q := NewQueue[int](2)
	for i := 0; i < 5; i++ {
		q.Enqueue(i)
	}
	require.Equal(t, 5, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, head)

	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())

	_, ok = q.Dequeue()
	assert.False(t, ok)
}

func TestQueueWrapAround(t *testing.T) {
	q := NewQueue[string](3)
	q.Enqueue("a")
	q.Enqueue("b")
	_, _ = q.Dequeue()
	q.Enqueue("c")
	q.Enqueue("d")
	q.Enqueue("e")

	var got []string
	q.Drain(func(s string) { got = append(got, s) })
	assert.Equal(t, []string{"b", "c", "d", "e"}, got)
	assert.Zero(t, q.Len())
}
