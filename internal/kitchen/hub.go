// Package kitchen pushes order events to kitchen display screens over websockets.
package kitchen

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/cafe-pos/internal/events"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a screen may lag behind before it is dropped.
	sendBuffer = 32
)

// ErrBacklog is returned by Publish when the hub cannot keep up.
var ErrBacklog = errors.New("kitchen hub backlog full")

// client is one connected screen. Its writer goroutine owns conn writes.
type client struct {
	conn   *websocket.Conn
	shopID string
	send   chan events.Event
}

// Hub keeps the connected screens per shop and fans events out to them.
// Run must be running for registrations and broadcasts to progress.
type Hub struct {
	clients    map[string]map[*client]bool // shopID -> screens
	broadcast  chan events.Event
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.Mutex
	log        logrus.FieldLogger
	upgrader   websocket.Upgrader
}

// NewHub builds a hub. origins limits browser Origin headers; none or "*"
// allows any.
func NewHub(log logrus.FieldLogger, origins ...string) *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]bool),
		broadcast:  make(chan events.Event, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        log,
		upgrader:   websocket.Upgrader{CheckOrigin: checkOrigin(origins)},
	}
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	if len(origins) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case cl := <-h.register:
			h.mu.Lock()
			if h.clients[cl.shopID] == nil {
				h.clients[cl.shopID] = make(map[*client]bool)
			}
			h.clients[cl.shopID][cl] = true
			h.mu.Unlock()
			go h.write(cl)
		case cl := <-h.unregister:
			h.drop(cl)
		case ev := <-h.broadcast:
			h.fanOut(ev)
		}
	}
}

// fanOut queues ev on every screen of the shop. A screen whose queue is full
// is dropped instead of stalling the others.
func (h *Hub) fanOut(ev events.Event) {
	h.mu.Lock()
	var slow []*client
	for cl := range h.clients[ev.ShopID] {
		select {
		case cl.send <- ev:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.Unlock()
	for _, cl := range slow {
		h.log.WithField("shop_id", ev.ShopID).Warn("[ws] screen too slow, dropping client")
		h.drop(cl)
	}
}

// write sends queued events to one screen until its queue is closed.
func (h *Hub) write(cl *client) {
	defer cl.conn.Close()
	for ev := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteJSON(ev); err != nil {
			h.log.WithError(err).WithField("shop_id", cl.shopID).Warn("[ws] write failed, dropping client")
			return
		}
	}
	_ = cl.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// drop forgets cl and closes its queue; the writer then closes the socket.
func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl.shopID][cl]; ok {
		delete(h.clients[cl.shopID], cl)
		close(cl.send)
	}
	if len(h.clients[cl.shopID]) == 0 {
		delete(h.clients, cl.shopID)
	}
}

func (h *Hub) closeAll() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for shopID, clients := range h.clients {
		for cl := range clients {
			close(cl.send)
		}
		delete(h.clients, shopID)
	}
}

// Clients returns how many screens are connected for shopID.
func (h *Hub) Clients(shopID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[shopID])
}

// Publish queues ev for the screens of ev.ShopID without blocking. It
// implements events.Publisher.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	select {
	case <-h.done:
		return nil
	default:
	}
	select {
	case h.broadcast <- ev:
		return nil
	default:
		return ErrBacklog
	}
}

// Handle upgrades GET /ws/kitchen?shop_id= and keeps the connection registered
// until the screen disconnects.
func (h *Hub) Handle(c *gin.Context) {
	shopID := c.Query("shop_id")
	if shopID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "shop_id is required"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("[ws] upgrade failed")
		return
	}
	cl := &client{conn: conn, shopID: shopID, send: make(chan events.Event, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}
	go h.listen(cl)
}

// listen drains client frames so close and ping frames are processed.
func (h *Hub) listen(cl *client) {
	defer func() {
		select {
		case h.unregister <- cl:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
