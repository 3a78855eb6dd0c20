// Package ws fans company mutation events out to connected dashboard
// clients. The hub owns the client set; connection handling lives in cmd/ws.
package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// replayDepth is how many recent events a freshly connected client gets in
// its welcome frame, so a dashboard that reconnects does not miss the
// mutations that happened while it was away.
const replayDepth = 32

// Frame is the wire envelope for everything the hub writes to a client.
type Frame struct {
	Type   string            `json:"type"` // welcome|event
	Event  json.RawMessage   `json:"event,omitempty"`
	Recent []json.RawMessage `json:"recent,omitempty"`
}

type Client struct {
	ID   string
	Send chan []byte
}

type unicastMsg struct {
	id  string
	msg []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client // id -> client
	register chan *Client
	unreg    chan *Client

	events  chan []byte // raw event bodies from the queue
	unicast chan unicastMsg

	recent [][]byte // ring of the latest event bodies, newest last

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		events:   make(chan []byte, 1024),
		unicast:  make(chan unicastMsg, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	id := h.nextID.Add(1)
	return fmt.Sprintf("c%d", id)
}

func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			if c.ID == "" {
				c.ID = h.newID()
			}
			h.mu.Lock()
			h.clients[c.ID] = c
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "total", len(h.clients))

			// welcome carries the replay ring so the dashboard can catch up
			if frame, err := json.Marshal(h.welcomeFrame()); err == nil {
				select {
				case c.Send <- frame:
				default:
				}
			}

		case c := <-h.unreg:
			h.mu.Lock()
			if c != nil && c.ID != "" {
				if _, ok := h.clients[c.ID]; ok {
					delete(h.clients, c.ID)
					close(c.Send)
				}
			}
			h.mu.Unlock()
			h.log.Info("client_unregistered", "id", c.ID, "total", len(h.clients))

		case body := <-h.events:
			h.remember(body)
			frame, err := json.Marshal(Frame{Type: "event", Event: json.RawMessage(body)})
			if err != nil {
				h.log.Warn("event_frame_encode_error", "err", err)
				continue
			}
			h.mu.RLock()
			for id, c := range h.clients {
				select {
				case c.Send <- frame:
				default:
					// slow client, drop it rather than stall the hub
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, id)
					close(c.Send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()

		case u := <-h.unicast:
			h.mu.RLock()
			c := h.clients[u.id]
			h.mu.RUnlock()
			if c == nil {
				h.log.Warn("send_one_miss", "id", u.id)
				continue
			}
			select {
			case c.Send <- u.msg:
			default:
				h.mu.Lock()
				if cc := h.clients[u.id]; cc != nil {
					delete(h.clients, u.id)
					close(cc.Send)
				}
				h.mu.Unlock()
				h.log.Warn("send_one_drop_slow", "id", u.id)
			}

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

func (h *Hub) remember(body []byte) {
	h.recent = append(h.recent, body)
	if len(h.recent) > replayDepth {
		h.recent = h.recent[len(h.recent)-replayDepth:]
	}
}

func (h *Hub) welcomeFrame() Frame {
	recent := make([]json.RawMessage, 0, len(h.recent))
	for _, b := range h.recent {
		recent = append(recent, json.RawMessage(b))
	}
	return Frame{Type: "welcome", Recent: recent}
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unreg <- c }

// Broadcast wraps one raw event body in an event frame and fans it out.
func (h *Hub) Broadcast(b []byte) { h.events <- b }

func (h *Hub) SendToClient(id string, b []byte) { h.unicast <- unicastMsg{id: id, msg: b} }
