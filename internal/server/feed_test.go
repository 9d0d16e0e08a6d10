package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

func TestFrameFeedBroadcasts(t *testing.T) {
	feed := NewFrameFeed(nil)
	s := httptest.NewServer(feed.Handler())
	defer s.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http") + FramesPath
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 5*time.Millisecond)

	frame := locomotion.Frame{
		Seq:       7,
		Time:      250 * time.Millisecond,
		Viewpoint: spatial.At(mgl64.Vec3{1, 1.6, 2}),
		Rig:       spatial.At(mgl64.Vec3{1, 0, 2.15}),
		Flying:    true,
		Jump:      locomotion.JumpRising,
		Digest:    0xbeef,
	}
	require.NoError(t, feed.Publish(frame))

	var got FrameMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(7), got.Seq)
	assert.Equal(t, 250.0, got.TimeMS)
	assert.Equal(t, [3]float64{1, 1.6, 2}, got.Viewpoint)
	assert.Equal(t, "rising", got.Jump)
	assert.Equal(t, "beef", got.Digest)
	assert.True(t, got.Flying)

	conn.Close()
	require.Eventually(t, func() bool { return feed.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClosedFeedRejectsPublish(t *testing.T) {
	feed := NewFrameFeed(nil)
	feed.Close()
	feed.Close()
	assert.ErrorIs(t, feed.Publish(locomotion.Frame{}), ErrFeedClosed)
}
