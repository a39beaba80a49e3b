// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mileusna/useragent"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Hub tracks connected websocket clients and pushes notification payloads
// to every connection a user holds.
type Hub struct {
	logger     *slog.Logger
	register   chan *client
	unregister chan *client
	outbound   chan push

	mu      sync.RWMutex
	clients map[*client]bool

	done chan struct{}
}

// push is one payload addressed to a single user.
type push struct {
	userID  int64
	payload []byte
}

type client struct {
	hub    *Hub
	id     string
	userID int64
	socket *websocket.Conn
	send   chan []byte
}

// wsMessage is the envelope sent to clients.
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client),
		outbound:   make(chan push, 64),
		clients:    make(map[*client]bool),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and outbound pushes until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("realtime client connected", "client_id", c.id, "user_id", c.userID)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Debug("realtime client disconnected", "client_id", c.id, "user_id", c.userID)

		case p := <-h.outbound:
			h.mu.Lock()
			for c := range h.clients {
				if c.userID != p.userID {
					continue
				}
				select {
				case c.send <- p.payload:
				default:
					// Slow consumer; drop the connection rather than block
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				_ = c.socket.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects all clients and stops the run loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Push queues a typed payload for every connection the user holds.
// It never blocks the caller; the queue overflowing drops the push.
func (h *Hub) Push(userID int64, msgType string, payload any) {
	data, err := json.Marshal(wsMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.logger.Error("marshaling realtime message", "type", msgType, "error", err)
		return
	}

	select {
	case h.outbound <- push{userID: userID, payload: data}:
	default:
		h.logger.Warn("realtime queue full, dropping push", "user_id", userID, "type", msgType)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades an HTTP request to a websocket connection for the
// given user and starts its read/write pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ua := useragent.Parse(r.UserAgent())
	c := &client{
		hub:    h,
		id:     uuid.NewString(),
		userID: userID,
		socket: conn,
		send:   make(chan []byte, 16),
	}
	h.logger.Info("realtime client joined",
		"user_id", userID, "browser", ua.Name, "os", ua.OS, "mobile", ua.Mobile)

	h.register <- c
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames; the socket is push-only. It exists to
// process control frames and detect disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.socket.Close()
	}()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
