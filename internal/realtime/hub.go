package realtime

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	pingInterval    = 20 * time.Second
	readDeadline    = 60 * time.Second
	staleAfter      = 90 * time.Second
	cleanupEvery    = 30 * time.Second
	writeDeadline   = 3 * time.Second
	maxWriters      = 20
	defaultDebounce = 100 * time.Millisecond
)

// Conn - bagian dari *websocket.Conn yang dipakai Hub.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn         Conn
	writeMux     sync.Mutex
	closeChan    chan struct{}
	closed       bool
	lastPongTime time.Time
	id           string
}

// Hub menyimpan client websocket dan mengirim payload terbaru ke semuanya.
// Payload dibangun ulang dari snapshot baru setiap broadcast.
type Hub struct {
	tag   string
	build func() ([]byte, error)
	delay time.Duration

	mu             sync.RWMutex
	clients        map[Conn]*client
	counter        uint64
	cleanupRunning bool

	timerMu sync.Mutex
	timer   *time.Timer

	lastMu  sync.RWMutex
	lastMsg []byte
}

func NewHub(tag string, build func() ([]byte, error)) *Hub {
	return &Hub{
		tag:     tag,
		build:   build,
		delay:   defaultDebounce,
		clients: make(map[Conn]*client),
	}
}

// SetDebounce mengganti jeda debounce broadcast.
func (h *Hub) SetDebounce(d time.Duration) {
	h.timerMu.Lock()
	h.delay = d
	h.timerMu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve menangani satu koneksi sampai client menutupnya.
func (h *Hub) Serve(c *websocket.Conn) {
	cl := h.register(c)
	defer h.unregister(c)

	log.Printf("[%s] %s connected from %s", h.tag, cl.id, c.RemoteAddr())

	c.SetReadDeadline(time.Now().Add(readDeadline))
	c.SetPongHandler(func(string) error {
		cl.writeMux.Lock()
		cl.lastPongTime = time.Now()
		cl.writeMux.Unlock()
		c.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	// Data awal untuk client ini saja, selalu dari snapshot baru
	go h.sendFresh(cl)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				cl.writeMux.Lock()
				if cl.closed {
					cl.writeMux.Unlock()
					return
				}
				c.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := c.WriteMessage(websocket.PingMessage, nil)
				cl.writeMux.Unlock()

				if err != nil {
					log.Printf("[%s] %s ping error: %v", h.tag, cl.id, err)
					return
				}
			case <-cl.closeChan:
				return
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.Printf("[%s] %s unexpected close: %v", h.tag, cl.id, err)
			}
			return
		}
	}
}

// Notify minta broadcast. Burst notifikasi dalam jeda debounce jadi satu build.
func (h *Hub) Notify() {
	h.timerMu.Lock()
	defer h.timerMu.Unlock()

	if h.timer != nil {
		h.timer.Reset(h.delay)
		return
	}

	h.timer = time.AfterFunc(h.delay, func() {
		h.timerMu.Lock()
		h.timer = nil
		h.timerMu.Unlock()

		h.Broadcast()
	})
}

// Broadcast membangun payload dan mengirim ke semua client sekarang juga.
func (h *Hub) Broadcast() {
	clients := h.snapshot()
	if len(clients) == 0 {
		return
	}

	message, err := h.build()
	if err != nil {
		log.Printf("[%s] broadcast error: %v", h.tag, err)
		return
	}

	h.lastMu.Lock()
	h.lastMsg = message
	h.lastMu.Unlock()

	sem := make(chan struct{}, maxWriters)
	var wg sync.WaitGroup

	for _, cl := range clients {
		wg.Add(1)
		sem <- struct{}{}
		go func(cl *client) {
			defer wg.Done()
			defer func() { <-sem }()
			h.write(cl, message)
		}(cl)
	}

	wg.Wait()
}

// LastMessage - payload broadcast terakhir, nil kalau belum pernah.
func (h *Hub) LastMessage() []byte {
	h.lastMu.RLock()
	defer h.lastMu.RUnlock()
	return h.lastMsg
}

func (h *Hub) snapshot() []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	return clients
}

func (h *Hub) register(conn Conn) *client {
	id := atomic.AddUint64(&h.counter, 1)
	cl := &client{
		conn:         conn,
		closeChan:    make(chan struct{}),
		lastPongTime: time.Now(),
		id:           fmt.Sprintf("client-%d", id),
	}

	h.mu.Lock()
	h.clients[conn] = cl
	total := len(h.clients)
	startCleanup := !h.cleanupRunning
	if startCleanup {
		h.cleanupRunning = true
	}
	h.mu.Unlock()

	log.Printf("[%s] %s registered, total: %d", h.tag, cl.id, total)

	if startCleanup {
		go h.periodicCleanup()
	}
	return cl
}

func (h *Hub) unregister(conn Conn) {
	h.mu.Lock()
	cl, exists := h.clients[conn]
	if exists {
		cl.markClosed()
		delete(h.clients, conn)
	}
	total := len(h.clients)
	h.mu.Unlock()

	_ = conn.Close()
	if exists {
		log.Printf("[%s] %s unregistered, total: %d", h.tag, cl.id, total)
	}
}

func (cl *client) markClosed() {
	cl.writeMux.Lock()
	defer cl.writeMux.Unlock()
	if !cl.closed {
		cl.closed = true
		close(cl.closeChan)
	}
}

// periodicCleanup hapus koneksi yang tidak membalas ping.
func (h *Hub) periodicCleanup() {
	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.Lock()
		if len(h.clients) == 0 {
			h.cleanupRunning = false
			h.mu.Unlock()
			return
		}

		now := time.Now()
		removed := 0
		for conn, cl := range h.clients {
			cl.writeMux.Lock()
			stale := now.Sub(cl.lastPongTime) > staleAfter
			cl.writeMux.Unlock()

			if stale {
				cl.markClosed()
				delete(h.clients, conn)
				conn.Close()
				removed++
			}
		}
		remaining := len(h.clients)
		h.mu.Unlock()

		if removed > 0 {
			log.Printf("[%s] cleaned %d dead clients, remaining: %d", h.tag, removed, remaining)
		}
	}
}

// sendFresh kirim payload baru ke satu client. Kalau gagal dibangun, client
// tetap dapat payload broadcast terakhir.
func (h *Hub) sendFresh(cl *client) {
	message, err := h.build()
	if err != nil {
		log.Printf("[%s] initial payload error: %v", h.tag, err)
		if message = h.LastMessage(); message == nil {
			return
		}
	}
	h.write(cl, message)
}

func (h *Hub) write(cl *client, message []byte) {
	cl.writeMux.Lock()
	if cl.closed {
		cl.writeMux.Unlock()
		return
	}

	cl.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	err := cl.conn.WriteMessage(websocket.TextMessage, message)
	cl.writeMux.Unlock()

	if err != nil {
		log.Printf("[%s] %s write error: %v", h.tag, cl.id, err)
		h.unregister(cl.conn)
	}
}
