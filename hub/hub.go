package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/cashier-desk/utils"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected cashier UI and fans events out to them.
type Hub struct {
	clients  map[*websocket.Conn]string // conn -> remote address
	mutex    sync.Mutex
	upgrader websocket.Upgrader
}

// New -> hub accepting origins matched by allowOrigin; nil accepts any origin
func New(allowOrigin func(origin string) bool) *Hub {
	h := &Hub{clients: make(map[*websocket.Conn]string)}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowOrigin == nil {
				return true
			}
			return allowOrigin(origin)
		},
	}
	return h
}

// Serve upgrades the request, sends hello (when not nil) and blocks until the client leaves.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, hello *Message) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	if hello != nil {
		if err := writeMessage(conn, *hello); err != nil {
			h.mutex.Unlock()
			conn.Close()
			return err
		}
	}
	h.clients[conn] = r.RemoteAddr
	count := len(h.clients)
	h.mutex.Unlock()

	utils.InfoLogger.WithFields(logrus.Fields{
		"remote":  r.RemoteAddr,
		"clients": count,
	}).Info("UI client connected")

	// The UI never sends anything meaningful; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(conn)
	return nil
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Broadcast -> send {event, data} to every client; clients that fail the write are dropped
func (h *Hub) Broadcast(event string, data interface{}) {
	msg := Message{Event: event, Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", event).Error("Error marshaling hub message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn, remote := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"remote": remote,
				"event":  event,
			}).WithError(err).Error("Error sending to UI client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Len -> number of connected clients
func (h *Hub) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func writeMessage(conn *websocket.Conn, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
