// Package hub fans out state-change events to connected overlay viewers.
// Delivery is best-effort: there is no backlog and no replay, a frame goes
// only to viewers connected at broadcast time.
package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"hpoverlay/internal/metrics"
)

// Server-originated event names.
const (
	EventSettingsUpdated   = "settingsUpdated"
	EventCharactersUpdated = "charactersUpdated"
	EventCharacterUpdated  = "characterUpdated"
)

// eventUpdateCharacter is the one client-originated event.
const eventUpdateCharacter = "updateCharacter"

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type updateCharacterPayload struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

type peer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *peer) writeRaw(raw []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return websocket.Message.Send(p.conn, string(raw))
}

// Hub tracks connected viewers.
type Hub struct {
	mu      sync.Mutex
	peers   map[*peer]struct{}
	metrics *metrics.Collector
}

// New creates an empty Hub. The collector may be nil.
func New(collector *metrics.Collector) *Hub {
	return &Hub{
		peers:   make(map[*peer]struct{}),
		metrics: collector,
	}
}

// ViewerCount returns the number of currently connected viewers.
func (h *Hub) ViewerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Broadcast pushes an {event, data} frame to every connected viewer. Write
// failures drop the peer; nothing is queued for absent viewers.
func (h *Hub) Broadcast(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal %s payload: %v", event, err)
		return
	}
	raw, err := json.Marshal(frame{Event: event, Data: payload})
	if err != nil {
		log.Printf("marshal %s frame: %v", event, err)
		return
	}

	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		if err := p.writeRaw(raw); err != nil {
			h.drop(p)
		}
	}
	h.metrics.RecordBroadcast(event)
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
	h.metrics.ViewerConnected()
}

func (h *Hub) drop(p *peer) {
	h.mu.Lock()
	_, present := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if present {
		h.metrics.ViewerDisconnected()
		_ = p.conn.Close()
	}
}

// UpdateFunc applies a client-originated character update. It must route
// through the same merge path as the REST update.
type UpdateFunc func(id string, data json.RawMessage) error

// Handler returns the websocket endpoint. The handshake accepts any Origin;
// overlay pages are embedded in broadcast software that sends none.
func (h *Hub) Handler(onUpdate UpdateFunc) http.Handler {
	return &websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			h.serveConn(conn, onUpdate)
		},
	}
}

func (h *Hub) serveConn(conn *websocket.Conn, onUpdate UpdateFunc) {
	p := &peer{conn: conn}
	h.add(p)
	defer h.drop(p)

	for {
		var f frame
		if err := websocket.JSON.Receive(conn, &f); err != nil {
			return
		}
		if f.Event != eventUpdateCharacter || onUpdate == nil {
			continue
		}
		var payload updateCharacterPayload
		if err := json.Unmarshal(f.Data, &payload); err != nil || payload.ID == "" {
			continue
		}
		if err := onUpdate(payload.ID, payload.Data); err != nil {
			log.Printf("ws update character %s: %v", payload.ID, err)
		}
	}
}
