package gallery

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Feed timing and buffering.
const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedBuffer     = 16
)

// Feed pushes newly saved drawings to websocket subscribers.
//
// Each subscriber has its own writer goroutine and a small buffer. A
// subscriber whose buffer is full when a drawing is published is
// disconnected, so one slow client never delays the others.
type Feed struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	send chan Drawing
}

// NewFeed returns a feed without subscribers.
func NewFeed(opts ...Option) *Feed {
	o := newOptions(opts)
	return &Feed{
		upgrader: websocket.Upgrader{
			// Same policy as the CORS headers of the REST routes.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:  o.log(),
		subs: make(map[*subscriber]struct{}),
	}
}

// Subscribers returns the number of connected subscribers.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Publish sends d to every subscriber without blocking.
func (f *Feed) Publish(d Drawing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		select {
		case s.send <- d:
		default:
			f.log.Warn("gallery: dropping slow feed subscriber")
			delete(f.subs, s)
			close(s.send)
		}
	}
}

// Close disconnects every subscriber and rejects new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for s := range f.subs {
		delete(f.subs, s)
		close(s.send)
	}
}

func (f *Feed) add() (*subscriber, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, false
	}
	s := &subscriber{send: make(chan Drawing, feedBuffer)}
	f.subs[s] = struct{}{}
	return s, true
}

func (f *Feed) remove(s *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[s]; ok {
		delete(f.subs, s)
		close(s.send)
	}
}

// ServeHTTP upgrades the request to a websocket and streams drawings as
// JSON text messages until the client goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		f.log.Debug("gallery: feed upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	s, ok := f.add()
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(feedWriteWait))
		return
	}
	defer f.remove(s)
	f.log.Debug("gallery: feed subscriber connected", "remote", r.RemoteAddr)

	// The reader only handles control frames and notices disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()
	for {
		select {
		case d, ok := <-s.send:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(d); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
