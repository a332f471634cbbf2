package controllers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"trackiq_agent/internal/store"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local control API; restrict if ever exposed beyond loopback.
	},
}

// FeedHub fans store events out to connected observers, giving UIs a live
// view of the sample list without polling.
type FeedHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan store.Event
	mu        sync.Mutex
}

// NewFeedHub subscribes to the store and starts the broadcast goroutine.
func NewFeedHub(st *store.LocationStore) *FeedHub {
	hub := &FeedHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan store.Event, 100),
	}

	events, _ := st.Subscribe()
	go func() {
		for ev := range events {
			select {
			case hub.broadcast <- ev:
			default:
				logrus.Warn("Feed broadcast channel full, dropping event.")
			}
		}
	}()
	go hub.run()
	return hub
}

// run forwards store events to every connected client.
func (h *FeedHub) run() {
	for ev := range h.broadcast {
		msg := feedMessage(ev)
		h.mu.Lock()
		for conn := range h.clients {
			go func(c *websocket.Conn, payload map[string]interface{}) {
				if err := c.WriteJSON(payload); err != nil {
					if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
						logrus.WithField("conn_ptr", fmt.Sprintf("%p", c)).Info("Feed client closed during broadcast, unregistering.")
						h.unregister(c)
					} else {
						logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", c)).Warn("Failed to send feed event to client.")
					}
				}
			}(conn, msg)
		}
		h.mu.Unlock()
	}
}

func feedMessage(ev store.Event) map[string]interface{} {
	msg := map[string]interface{}{"kind": ev.Kind}
	if ev.Sample != nil {
		msg["sample"] = ev.Sample
	}
	if len(ev.IDs) > 0 {
		msg["ids"] = ev.IDs
	}
	return msg
}

func (h *FeedHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Feed client registered.")
}

func (h *FeedHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Feed client unregistered.")
}

// HandleLocationFeed upgrades the connection and streams store events until
// the client goes away. Clients only receive; inbound messages are ignored.
func (a *API) HandleLocationFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()

	a.Hub.register(conn)
	defer a.Hub.unregister(conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Info("Feed WebSocket closed normally or abnormally.")
			} else {
				logrus.WithError(err).Error("Error reading WebSocket message from feed client.")
			}
			break
		}
		logrus.Warn("Feed client sent unexpected message. Ignoring.")
	}
}
