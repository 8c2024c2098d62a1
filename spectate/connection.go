package spectate

import (
	"sync"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is one spectator websocket.
type Conn struct {
	ID     string
	ws     *websocket.Conn
	mu     sync.Mutex // protects ws writes and closed
	closed bool
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID: uuid.New().String(),
		ws: ws,
	}
}

// Send writes an already encoded JSON message.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
}

// ReadLoop discards client messages until the socket closes. Spectators have
// no input; reading is only how a close is noticed.
func (c *Conn) ReadLoop(logger *charmlog.Logger, onDisconnect func(*Conn)) {
	defer func() {
		onDisconnect(c)
		c.Close()
	}()

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("spectator read error", "conn", c.ID, "err", err)
			}
			return
		}
	}
}

// ConnManager manages all active connections
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*Conn)}
}

func (m *ConnManager) Add(c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
}

func (m *ConnManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Snapshot returns a copy of all current connections
func (m *ConnManager) Snapshot() []*Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		list = append(list, c)
	}
	return list
}

// CloseAll closes and forgets every connection.
func (m *ConnManager) CloseAll() {
	for _, c := range m.Snapshot() {
		c.Close()
		m.Remove(c.ID)
	}
}
