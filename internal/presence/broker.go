// Package presence tracks concurrent readers per page over Server-Sent
// Events: each open connection counts as one reader, and count changes
// are broadcast to everyone watching the same page.
package presence

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	page string
	ch   chan []byte
}

// Broker manages reader connections and presence broadcasts.
//
// Concurrency model: a single internal event loop (goroutine) owns the
// mutable state (clients grouped by page). Public methods communicate
// with this loop through channels, so no mutexes are required.
type Broker struct {
	heartbeat time.Duration

	subscribeCh   chan client
	unsubscribeCh chan client
	publishCh     chan Event
	countReqCh    chan countReq
	snapshotReqCh chan chan map[string]int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

type countReq struct {
	page string
	resp chan int
}

// NewBroker creates a new presence broker. heartbeat is the interval
// for keep-alive comments on idle connections.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}

	b := &Broker{
		heartbeat:     heartbeat,
		subscribeCh:   make(chan client),
		unsubscribeCh: make(chan client),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan countReq),
		snapshotReqCh: make(chan chan map[string]int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	pages := make(map[string]map[chan []byte]struct{})

	send := func(targets map[chan []byte]struct{}, event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range targets {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking the loop.
			}
		}
	}

	announce := func(page string) {
		watchers := pages[page]
		send(watchers, Event{Type: "presence", Data: map[string]any{
			"page":    page,
			"readers": len(watchers),
		}})
	}

	for {
		select {
		case <-b.stopCh:
			for _, watchers := range pages {
				for ch := range watchers {
					close(ch)
				}
			}
			return

		case c := <-b.subscribeCh:
			if pages[c.page] == nil {
				pages[c.page] = make(map[chan []byte]struct{})
			}
			pages[c.page][c.ch] = struct{}{}
			announce(c.page)

		case c := <-b.unsubscribeCh:
			if watchers, ok := pages[c.page]; ok {
				if _, ok := watchers[c.ch]; ok {
					delete(watchers, c.ch)
					close(c.ch)
					if len(watchers) == 0 {
						delete(pages, c.page)
					} else {
						announce(c.page)
					}
				}
			}

		case event := <-b.publishCh:
			for _, watchers := range pages {
				send(watchers, event)
			}

		case req := <-b.countReqCh:
			req.resp <- len(pages[req.page])

		case resp := <-b.snapshotReqCh:
			snap := make(map[string]int, len(pages))
			for page, watchers := range pages {
				snap[page] = len(watchers)
			}
			resp <- snap
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a reader on a page and returns its channel.
func (b *Broker) Subscribe(page string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- client{page: page, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a reader from a page and closes its channel.
func (b *Broker) Unsubscribe(page string, ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- client{page: page, ch: ch}:
	case <-b.stopped:
	}
}

// Count returns the number of readers currently on a page.
func (b *Broker) Count(page string) int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- countReq{page: page, resp: resp}:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Snapshot returns the reader count for every page with at least one
// reader.
func (b *Broker) Snapshot() map[string]int {
	if b.closed.Load() {
		return map[string]int{}
	}

	resp := make(chan map[string]int, 1)
	select {
	case b.snapshotReqCh <- resp:
	case <-b.stopped:
		return map[string]int{}
	}

	select {
	case snap := <-resp:
		return snap
	case <-b.stopped:
		return map[string]int{}
	}
}

// Publish broadcasts an event to every connected reader regardless of
// page, e.g. a content.updated notification after a catalog reload.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/presence?page=...).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		http.Error(w, "query parameter 'page' is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(page)
	defer b.Unsubscribe(page, ch)

	heartbeat := time.NewTicker(b.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
