package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned when no device link is up.
var ErrNotConnected = errors.New("bridge: no device connected")

// Command kinds on the wire, device side.
const (
	commandUpdateText  = "update_text"
	commandUpdateImage = "update_board_image"
)

// eventForegroundEnter is synthesized by the bridge when a device link
// comes up, matching the event the device app sends on launch.
const eventForegroundEnter = "foreground_enter"

// command is the outbound wire envelope.
type command struct {
	Kind          string `json:"kind"`
	ContainerID   string `json:"container_id,omitempty"`
	ContainerName string `json:"container_name,omitempty"`
	Content       string `json:"content,omitempty"`
	ImageBase64   string `json:"image_base64,omitempty"`
}

// Config holds WebSocket tuning for the device link.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConfig returns the defaults tuned for a single wearable client.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// The device connects over the local link; restrict in production.
			return true
		},
	}
}

// WSBridge implements Bridge over a single WebSocket device connection.
// A reconnecting device replaces the previous link.
type WSBridge struct {
	config   Config
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	conn     *deviceConn
	handlers map[int]EventHandler
	nextID   int
	closed   bool
}

type deviceConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
}

var _ Bridge = (*WSBridge)(nil)

func NewWSBridge(config Config) *WSBridge {
	return &WSBridge{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		handlers: make(map[int]EventHandler),
	}
}

// HandleDevice upgrades an HTTP request to the device WebSocket link and
// starts its pumps. An existing link is closed in favor of the new one.
func (b *WSBridge) HandleDevice(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade device connection")
		return
	}

	conn := &deviceConn{
		id:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		ws.Close()
		return
	}
	old := b.conn
	b.conn = conn
	b.mu.Unlock()

	if old != nil {
		log.Info().Str("connection_id", old.id).Msg("replacing device connection")
		old.close()
	}

	go b.writePump(conn)
	go b.readPump(conn)

	log.Info().
		Str("connection_id", conn.id).
		Str("remote_addr", r.RemoteAddr).
		Msg("device connected")

	// A fresh link means the screen content is unknown. Subscribers treat
	// foreground entry as a cue to repaint, so synthesize one.
	enter := eventForegroundEnter
	b.fanOut(InputEvent{EventType: &enter})
}

// UpdateText sends a text container replacement to the device.
func (b *WSBridge) UpdateText(ctx context.Context, containerID, containerName, content string) error {
	return b.send(ctx, command{
		Kind:          commandUpdateText,
		ContainerID:   containerID,
		ContainerName: containerName,
		Content:       content,
	})
}

// UpdateBoardImage sends a rendered board image to the device.
func (b *WSBridge) UpdateBoardImage(ctx context.Context, img []byte) error {
	return b.send(ctx, command{
		Kind:        commandUpdateImage,
		ImageBase64: base64.StdEncoding.EncodeToString(img),
	})
}

func (b *WSBridge) send(ctx context.Context, cmd command) error {
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	select {
	case conn.send <- data:
		return nil
	case <-conn.done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connected reports whether a device link is currently up.
func (b *WSBridge) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conn != nil
}

// SubscribeEvents registers a device input handler.
func (b *WSBridge) SubscribeEvents(handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Shutdown closes the device link. Pending sends fail with ErrNotConnected.
func (b *WSBridge) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		conn.close()
	}
	return nil
}

func (c *deviceConn) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.ws.Close()
}

func (b *WSBridge) dropConn(conn *deviceConn) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	b.mu.Unlock()
	conn.close()
}

// writePump serializes all writes to the device socket.
func (b *WSBridge) writePump(conn *deviceConn) {
	ticker := time.NewTicker(b.config.PingInterval)
	defer func() {
		ticker.Stop()
		b.dropConn(conn)
	}()

	for {
		select {
		case <-conn.done:
			conn.ws.SetWriteDeadline(time.Now().Add(b.config.WriteTimeout))
			conn.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-conn.send:
			conn.ws.SetWriteDeadline(time.Now().Add(b.config.WriteTimeout))
			if err := conn.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", conn.id).
					Msg("failed to write to device")
				return
			}

		case <-ticker.C:
			conn.ws.SetWriteDeadline(time.Now().Add(b.config.WriteTimeout))
			if err := conn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", conn.id).
					Msg("failed to ping device")
				return
			}
		}
	}
}

// readPump decodes device input events and fans them out to handlers.
func (b *WSBridge) readPump(conn *deviceConn) {
	defer b.dropConn(conn)

	conn.ws.SetReadLimit(b.config.MaxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(b.config.ReadTimeout))
	conn.ws.SetPongHandler(func(string) error {
		conn.ws.SetReadDeadline(time.Now().Add(b.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", conn.id).
					Msg("unexpected device close")
			}
			return
		}
		conn.ws.SetReadDeadline(time.Now().Add(b.config.ReadTimeout))

		var ev InputEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", conn.id).
				Msg("dropping malformed device event")
			continue
		}
		b.fanOut(ev)
	}
}

func (b *WSBridge) fanOut(ev InputEvent) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
