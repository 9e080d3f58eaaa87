package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// client embrulha a conexão com um mutex de escrita; gorilla/websocket não
// permite escritas concorrentes na mesma conexão, e o pong do loop de
// leitura pode coincidir com um Broadcast.
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return c.conn.WriteMessage(messageType, data)
}

// Hub gerencia conexões WebSocket e distribui cada ciclo live completo
// para todos os clientes conectados.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	conns    map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		conns:    make(map[*client]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// O cliente recebe todo ciclo publicado e pode enviar pings.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{conn: conn}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			_ = c.write(websocket.TextMessage, []byte(`{"type":"pong"}`))
		}
	}

	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

// Broadcast envia o ciclo live para todos os clientes conectados
func (h *Hub) Broadcast(cycle events.LiveCycle) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.conns) == 0 {
		return
	}

	b, _ := json.Marshal(cycle)
	for c := range h.conns {
		if err := c.write(websocket.TextMessage, b); err != nil {
			_ = c.conn.Close()
		}
	}
}
