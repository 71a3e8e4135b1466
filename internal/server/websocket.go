package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	sendBuffer     = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 256 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one websocket connection. It is bound to at most one
// participant for its lifetime.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu            sync.Mutex
	participantID string
	roomCode      string

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, limiter *rate.Limiter) *client {
	return &client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: limiter,
		done:    make(chan struct{}),
	}
}

func (c *client) bound() (participantID, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.participantID, c.roomCode
}

func (c *client) bind(participantID, code string) {
	c.mu.Lock()
	c.participantID = participantID
	c.roomCode = code
	c.mu.Unlock()
}

// enqueue never blocks. A client that cannot keep up loses the frame.
func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		log.Warn().Str("conn", c.id).Msg("send buffer full, dropping event")
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// hub routes events to rooms and single participants. It implements
// game.Notifier and never calls back into rooms or the registry.
type hub struct {
	mu      sync.Mutex
	clients map[string]*client
	groups  map[string]map[string]struct{}
}

func newHub() *hub {
	return &hub{
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]struct{}),
	}
}

// Add binds participantID to c inside the room's group, replacing any
// earlier connection for the same participant.
func (h *hub) Add(code, participantID string, c *client) {
	h.mu.Lock()
	previous := h.clients[participantID]
	h.clients[participantID] = c
	group := h.groups[code]
	if group == nil {
		group = make(map[string]struct{})
		h.groups[code] = group
	}
	group[participantID] = struct{}{}
	h.mu.Unlock()
	if previous != nil && previous != c {
		previous.close()
	}
}

// Remove unbinds participantID if c still owns it.
func (h *hub) Remove(participantID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[participantID] == c {
		delete(h.clients, participantID)
	}
}

// DropGroup forgets a deleted room.
func (h *hub) DropGroup(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, code)
}

// Forget drops participants that left code at a round boundary.
func (h *hub) Forget(code string, participantIDs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	for _, id := range participantIDs {
		delete(group, id)
		delete(h.clients, id)
	}
}

func (h *hub) ToRoom(code, event string, payload any) {
	h.ToRoomExcept(code, "", event, payload)
}

// ToRoomExcept broadcasts to every member of code other than exceptID.
func (h *hub) ToRoomExcept(code, exceptID, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode event")
		return
	}
	h.mu.Lock()
	group := h.groups[code]
	targets := make([]*client, 0, len(group))
	for id := range group {
		if id == exceptID {
			continue
		}
		if c, ok := h.clients[id]; ok {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	for _, c := range targets {
		c.enqueue(data)
	}
}

func (h *hub) ToParticipant(code, participantID, event string, payload any) {
	h.mu.Lock()
	c, ok := h.clients[participantID]
	if ok {
		if _, member := h.groups[code][participantID]; !member {
			ok = false
		}
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	h.sendTo(c, event, payload)
}

func (h *hub) sendTo(c *client, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode event")
		return
	}
	c.enqueue(data)
}

func (s *Server) handleWebsocket(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newClient(conn, rate.NewLimiter(rate.Limit(s.cfg.IntentsPerSecond), s.cfg.IntentBurst))
	log.Debug().Str("conn", c.id).Str("remote", ctx.ClientIP()).Msg("websocket connected")
	go c.writePump()
	s.readWS(c)
}

func (s *Server) readWS(c *client) {
	defer s.disconnect(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn", c.id).Msg("websocket read failed")
			}
			return
		}
		var msg envelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug().Err(err).Str("conn", c.id).Msg("malformed frame")
			continue
		}
		if !c.limiter.Allow() {
			log.Debug().Str("conn", c.id).Str("intent", msg.Type).Msg("intent rate limited")
			continue
		}
		s.dispatch(c, msg)
	}
}

func (s *Server) disconnect(c *client) {
	c.close()
	participantID, _ := c.bound()
	if participantID == "" {
		return
	}
	s.hub.Remove(participantID, c)
	room, removed, err := s.registry.Disconnect(participantID, c.id)
	if err != nil || removed {
		return
	}
	s.hub.ToRoom(room.Code(), "player_disconnected", disconnectedEvent{
		ParticipantID: participantID,
		State:         room.Snapshot(),
	})
}
