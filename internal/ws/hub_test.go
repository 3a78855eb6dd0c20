package ws

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func recvFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case b := <-c.Send:
		var f Frame
		if err := json.Unmarshal(b, &f); err != nil {
			t.Fatalf("decode frame: %v body=%s", err, b)
		}
		return f
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for frame")
		return Frame{}
	}
}

func TestHub_BroadcastEventFrames(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c1 := &Client{Send: make(chan []byte, 4)}
	c2 := &Client{Send: make(chan []byte, 4)}
	h.Register(c1)
	h.Register(c2)

	// drain welcome frames
	if f := recvFrame(t, c1); f.Type != "welcome" {
		t.Fatalf("c1 first frame type=%q", f.Type)
	}
	if f := recvFrame(t, c2); f.Type != "welcome" {
		t.Fatalf("c2 first frame type=%q", f.Type)
	}

	h.Broadcast([]byte(`{"action":"created","companyId":"c1"}`))

	for _, c := range []*Client{c1, c2} {
		f := recvFrame(t, c)
		if f.Type != "event" {
			t.Fatalf("frame type=%q", f.Type)
		}
		var ev map[string]any
		if err := json.Unmarshal(f.Event, &ev); err != nil {
			t.Fatalf("event payload: %v", err)
		}
		if ev["action"] != "created" || ev["companyId"] != "c1" {
			t.Fatalf("event: %v", ev)
		}
	}
}

func TestHub_WelcomeReplaysRecentEvents(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	early := &Client{Send: make(chan []byte, 8)}
	h.Register(early)
	recvFrame(t, early) // welcome, empty replay

	h.Broadcast([]byte(`{"action":"created","companyId":"a"}`))
	h.Broadcast([]byte(`{"action":"deleted","companyId":"a"}`))
	recvFrame(t, early)
	recvFrame(t, early)

	late := &Client{Send: make(chan []byte, 8)}
	h.Register(late)
	f := recvFrame(t, late)
	if f.Type != "welcome" {
		t.Fatalf("type=%q", f.Type)
	}
	if len(f.Recent) != 2 {
		t.Fatalf("recent=%d want=2", len(f.Recent))
	}
	var last map[string]any
	if err := json.Unmarshal(f.Recent[1], &last); err != nil {
		t.Fatalf("recent decode: %v", err)
	}
	if last["action"] != "deleted" {
		t.Fatalf("replay order: %v", last)
	}
}

func TestHub_SendToClient(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c := &Client{ID: "target", Send: make(chan []byte, 4)}
	h.Register(c)
	recvFrame(t, c)

	h.SendToClient("target", []byte(`direct`))
	select {
	case got := <-c.Send:
		if string(got) != "direct" {
			t.Fatalf("got %q", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout")
	}
}
