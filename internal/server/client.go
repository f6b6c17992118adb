// Package server manages individual websocket clients, handling read/write
// pumps and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fylora/bloggle/internal/session"
)

const (
	pongWait      = 60 * time.Second
	pingInterval  = 54 * time.Second
	writeWait     = 10 * time.Second
	sendQueueSize = 256
)

// ErrSendBufferFull is returned when a peer is too slow to drain its send
// queue. The core treats it as a transport failure and disconnects the
// session.
var ErrSendBufferFull = errors.New("send buffer full")

// errChannelClosed is returned by Send after Close.
var errChannelClosed = errors.New("channel closed")

// Client is one websocket connection bound to a verified identity. It
// implements session.Channel: Send enqueues onto a buffered writer so no
// store lock is ever held across a network write, and Close tears the
// connection down with a close code.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn, maxMessageSize int64) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// Send enqueues a payload for the write pump. It never blocks: a closed
// channel or a full queue is an error for the caller to act on.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errChannelClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close shuts the connection down with the given close code. Safe to call
// more than once; only the first call takes effect.
func (c *Client) Close(code session.CloseCode, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	message := websocket.FormatCloseMessage(int(code), reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait)); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing close message: %v", err)
		}
	}
	if err := c.conn.Close(); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error closing connection: %v", err)
		}
	}
}

// ReadLoop consumes inbound frames strictly in arrival order and hands each
// one to handle. It returns when the connection dies; the caller performs
// disconnect cleanup.
func (c *Client) ReadLoop(handle func(raw []byte)) {
	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		handle(raw)
	}
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Error setting initial read deadline: %v", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Error setting read deadline in pong handler: %v", err)
		}
		return nil
	})
}

func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Printf("Inbound message exceeded the maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		log.Printf("Client disconnected: %v", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		log.Printf("Client connection closed: %v", err)
	default:
		log.Printf("Websocket read error: %v", err)
	}
}

// WriteLoop drains the send queue onto the wire and keeps the connection
// alive with pings. It exits on Close or on the first write failure.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close(session.CloseNormal, "write pump stopped")
	}()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if !c.writeMessage(payload) {
				return
			}
		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeMessage writes one payload plus anything else already queued,
// newline-separated in a single frame batch.
func (c *Client) writeMessage(payload []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Error setting write deadline: %v", err)
		return false
	}

	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error creating writer: %v", err)
		}
		return false
	}

	if _, err := w.Write(payload); err != nil {
		log.Printf("Error writing message: %v", err)
		return false
	}

	queued := len(c.send)
	for i := 0; i < queued; i++ {
		if _, err := w.Write([]byte{'\n'}); err != nil {
			log.Printf("Error writing separator: %v", err)
			return false
		}
		if _, err := w.Write(<-c.send); err != nil {
			log.Printf("Error writing queued message: %v", err)
			return false
		}
	}

	if err := w.Close(); err != nil {
		log.Printf("Error closing writer: %v", err)
		return false
	}
	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Error setting write deadline for ping: %v", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing ping message: %v", err)
		}
		return false
	}
	return true
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
