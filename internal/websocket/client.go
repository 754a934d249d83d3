package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Options tunes a client's pumps.
type Options struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 64 * 1024,
		SendBuffer:     256,
	}
}

// DispatchFunc handles one inbound frame. The read pump waits for it to
// return before reading the next frame.
type DispatchFunc func(ctx context.Context, c *Client, raw []byte)

// Client is a single WebSocket connection.
type Client struct {
	id   string
	conn *websocket.Conn
	opts Options

	mu   sync.RWMutex
	send chan []byte
}

// NewClient wraps conn. conn may be nil for clients that are only used as
// delivery targets.
func NewClient(id string, conn *websocket.Conn, opts Options) *Client {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultOptions().SendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultOptions().WriteTimeout
	}
	return &Client{
		id:   id,
		conn: conn,
		opts: opts,
		send: make(chan []byte, opts.SendBuffer),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// SendMessage queues msg for the write pump. It never blocks: when the
// client is closed or its buffer is full the message is dropped and false
// is returned.
func (c *Client) SendMessage(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.send == nil {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		slog.Warn("Client send channel full, dropping message", "client_id", c.id)
		return false
	}
}

// Emit encodes an event frame and queues it.
func (c *Client) Emit(event string, data any) error {
	payload, err := Encode(event, data)
	if err != nil {
		return err
	}
	if !c.SendMessage(payload) {
		return ErrNotDelivered
	}
	return nil
}

// ErrNotDelivered is returned by Emit when the frame could not be queued.
var ErrNotDelivered = errors.New("frame not delivered")

// Close closes the send channel, which ends the write pump.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.send != nil {
		close(c.send)
		c.send = nil
	}
}

// outbox returns the send channel for the write pump and tests.
func (c *Client) outbox() <-chan []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.send
}

// Run pumps the connection until the peer disconnects or ctx is canceled.
// Inbound frames are handed to dispatch one at a time.
func (c *Client) Run(ctx context.Context, dispatch DispatchFunc) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.opts.MaxMessageSize > 0 {
		c.conn.SetReadLimit(c.opts.MaxMessageSize)
	}

	go c.writePump(ctx)
	if c.opts.PingInterval > 0 {
		go c.pingLoop(ctx)
	}
	c.readPump(ctx, dispatch)
}

func (c *Client) readPump(ctx context.Context, dispatch DispatchFunc) {
	defer func() {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		typ, message, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				slog.Debug("WebSocket closed normally by client", "client_id", c.id)
			case errors.Is(err, context.Canceled) || errors.Is(err, io.EOF):
			default:
				slog.Warn("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			slog.Debug("Ignoring binary frame", "client_id", c.id)
			continue
		}
		dispatch(ctx, c, message)
	}
}

func (c *Client) writePump(ctx context.Context) {
	out := c.outbox()
	if out == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-out:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Warn("WebSocket write error", "client_id", c.id, "error", err)
				_ = c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					slog.Debug("WebSocket ping failed, closing", "client_id", c.id, "error", err)
					_ = c.conn.Close(websocket.StatusPolicyViolation, "ping timeout")
				}
				return
			}
		}
	}
}
