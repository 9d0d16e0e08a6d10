// Package server exposes the controller's committed frames to debug viewers
// over a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

const (
	FramesPath = "/frames"

	clientBuffer = 64
	writeTimeout = 2 * time.Second
)

// FrameMessage is the wire form of a committed frame.
type FrameMessage struct {
	Seq       uint64     `json:"seq"`
	TimeMS    float64    `json:"time_ms"`
	Viewpoint [3]float64 `json:"viewpoint"`
	Rig       [3]float64 `json:"rig"`
	Yaw       float64    `json:"yaw"`
	Flying    bool       `json:"flying"`
	Jump      string     `json:"jump"`
	Traveling bool       `json:"traveling"`
	Digest    string     `json:"digest"`
}

func NewFrameMessage(f locomotion.Frame) FrameMessage {
	return FrameMessage{
		Seq:       f.Seq,
		TimeMS:    float64(f.Time) / float64(time.Millisecond),
		Viewpoint: f.Viewpoint.Position,
		Rig:       f.Rig.Position,
		Yaw:       spatial.Yaw(f.Viewpoint),
		Flying:    f.Flying,
		Jump:      f.Jump.String(),
		Traveling: f.Traveling,
		Digest:    strconv.FormatUint(f.Digest, 16),
	}
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// FrameFeed broadcasts frames to every connected websocket client. Slow
// clients miss frames instead of stalling the publisher.
type FrameFeed struct {
	mu       sync.RWMutex
	clients  map[*feedClient]struct{}
	upgrader websocket.Upgrader
	logger   log.Log
	closed   bool
	server   *http.Server

	published atomic.Uint64
	dropped   atomic.Uint64
}

func NewFrameFeed(logger log.Log) *FrameFeed {
	if logger == nil {
		logger = log.NewNop()
	}
	return &FrameFeed{
		clients: make(map[*feedClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(log.String("system", "feed")),
	}
}

// Handler serves the websocket endpoint at FramesPath.
func (f *FrameFeed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(FramesPath, f.serveWS)
	return mux
}

// Publish encodes the frame once and queues it for every client.
func (f *FrameFeed) Publish(frame locomotion.Frame) error {
	b, err := json.Marshal(NewFrameMessage(frame))
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", frame.Seq, err)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrFeedClosed
	}
	f.published.Add(1)
	for c := range f.clients {
		select {
		case c.send <- b:
		default:
			f.dropped.Add(1)
		}
	}
	return nil
}

func (f *FrameFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Dropped counts frames skipped because a client's buffer was full.
func (f *FrameFeed) Dropped() uint64 { return f.dropped.Load() }

// ListenAndServe serves the feed on addr until ctx is done.
func (f *FrameFeed) ListenAndServe(ctx context.Context, addr string) error {
	f.mu.Lock()
	if f.server != nil {
		f.mu.Unlock()
		return ErrFeedAlreadyBound
	}
	srv := &http.Server{Addr: addr, Handler: f.Handler(), ReadHeaderTimeout: 5 * time.Second}
	f.server = srv
	f.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	f.logger.Info("frame feed listening", log.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("frame feed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		f.Close()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close disconnects every client. Later publishes fail with ErrFeedClosed.
func (f *FrameFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for c := range f.clients {
		close(c.send)
		delete(f.clients, c)
	}
}

func (f *FrameFeed) add(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

func (f *FrameFeed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

func (f *FrameFeed) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	client := &feedClient{conn: conn, send: make(chan []byte, clientBuffer)}
	if !f.add(client) {
		conn.Close()
		return
	}
	f.logger.Debug("viewer connected", log.String("remote", conn.RemoteAddr().String()))

	// reader: only detects the viewer going away
	go func() {
		defer f.remove(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	for b := range client.send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			f.logger.Debug("viewer write failed", log.Error(err))
			f.remove(client)
			return
		}
	}
}
