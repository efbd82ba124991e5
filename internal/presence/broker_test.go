package presence

import (
	"bufio"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestSubscribeAnnouncesCount(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	ch := b.Subscribe("posts/hello")
	msg := recv(t, ch)
	if !strings.Contains(msg, "event: presence") {
		t.Errorf("expected presence event, got %q", msg)
	}
	if !strings.Contains(msg, `"readers":1`) {
		t.Errorf("expected readers count 1, got %q", msg)
	}

	if got := b.Count("posts/hello"); got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
}

func TestSecondReaderBumpsCount(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	ch1 := b.Subscribe("posts/hello")
	recv(t, ch1) // initial announce

	ch2 := b.Subscribe("posts/hello")
	recv(t, ch2)

	// First reader sees the updated count.
	msg := recv(t, ch1)
	if !strings.Contains(msg, `"readers":2`) {
		t.Errorf("expected readers 2 announced, got %q", msg)
	}
}

func TestUnsubscribeAnnouncesRemaining(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	ch1 := b.Subscribe("p")
	recv(t, ch1)
	ch2 := b.Subscribe("p")
	recv(t, ch2)
	recv(t, ch1) // readers:2 announce

	b.Unsubscribe("p", ch2)
	msg := recv(t, ch1)
	if !strings.Contains(msg, `"readers":1`) {
		t.Errorf("expected readers 1 after unsubscribe, got %q", msg)
	}

	if got := b.Count("p"); got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
}

func TestCountsAreIndependentPerPage(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	a := b.Subscribe("page-a")
	recv(t, a)
	b1 := b.Subscribe("page-b")
	recv(t, b1)
	b2 := b.Subscribe("page-b")
	recv(t, b2)

	if got := b.Count("page-a"); got != 1 {
		t.Errorf("page-a: expected 1, got %d", got)
	}
	if got := b.Count("page-b"); got != 2 {
		t.Errorf("page-b: expected 2, got %d", got)
	}
	if got := b.Count("page-c"); got != 0 {
		t.Errorf("page-c: expected 0, got %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	a := b.Subscribe("a")
	recv(t, a)
	c := b.Subscribe("c")
	recv(t, c)

	snap := b.Snapshot()
	if len(snap) != 2 || snap["a"] != 1 || snap["c"] != 1 {
		t.Errorf("unexpected snapshot %v", snap)
	}
}

func TestPublishReachesAllPages(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	a := b.Subscribe("a")
	recv(t, a)
	c := b.Subscribe("c")
	recv(t, c)

	b.Publish(Event{Type: "content.updated", Data: map[string]any{"reason": "reload"}})

	for _, ch := range []chan []byte{a, c} {
		msg := recv(t, ch)
		if !strings.Contains(msg, "event: content.updated") {
			t.Errorf("expected content.updated, got %q", msg)
		}
	}
}

func TestCloseReleasesSubscribers(t *testing.T) {
	b := NewBroker(time.Minute)

	ch := b.Subscribe("p")
	recv(t, ch)

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			// Drain any queued announce; the close must follow.
			if _, ok := <-ch; ok {
				t.Error("expected channel closed after broker Close")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}

	// Post-close operations are no-ops.
	if got := b.Count("p"); got != 0 {
		t.Errorf("expected count 0 after close, got %d", got)
	}
	late := b.Subscribe("p")
	if _, ok := <-late; ok {
		t.Error("expected closed channel from post-close Subscribe")
	}
	b.Publish(Event{Type: "noop"})
	b.Close() // idempotent
}

func TestServeHTTPRequiresPage(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	req := httptest.NewRequest("GET", "/api/presence", nil)
	w := httptest.NewRecorder()
	b.ServeHTTP(w, req)
	if w.Code != 400 {
		t.Errorf("expected 400 without page parameter, got %d", w.Code)
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/presence?page=posts%2Fhello")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(line, "event: presence") {
		t.Errorf("expected presence event line, got %q", line)
	}
}
