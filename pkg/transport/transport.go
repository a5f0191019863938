// Package transport carries live messages between the browser and the
// server over WebSocket.
package transport

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Common transport errors.
var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendTimeout      = errors.New("send timeout")
)

// Transport is a bidirectional message connection.
type Transport interface {
	// Send queues a message for the client.
	Send(msg Message) error

	// Receive returns a channel for incoming messages.
	Receive() <-chan Message

	// CloseChan is closed when the connection ends.
	CloseChan() <-chan struct{}

	// Close terminates the connection.
	Close() error

	// IsConnected returns true if connected.
	IsConnected() bool
}

// Message represents a message sent over a transport.
type Message struct {
	// Ref is an optional message reference for request/response correlation
	Ref string `json:"ref,omitempty"`

	// Topic is the channel the message is for
	Topic string `json:"topic"`

	// Event is the event type
	Event string `json:"event"`

	// Payload contains the message data
	Payload map[string]any `json:"payload,omitempty"`
}

// Marshal serializes the message to JSON.
func (m Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal deserializes a message from JSON.
func Unmarshal(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// Config holds transport timing and buffer settings.
type Config struct {
	// ReadTimeout is how long a connection may stay silent. Clients send
	// heartbeats well inside it.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single write and a blocked Send.
	WriteTimeout time.Duration

	// PingInterval is how often protocol pings are sent.
	PingInterval time.Duration

	// MaxMessageSize is the maximum message size in bytes
	MaxMessageSize int64

	// SendBufferSize is the size of the send channel buffer
	SendBufferSize int

	// ReceiveBufferSize is the size of the receive channel buffer
	ReceiveBufferSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBufferSize:    64,
		ReceiveBufferSize: 64,
	}
}

// BaseTransport provides the channels and state shared by transports.
type BaseTransport struct {
	config    *Config
	connected bool
	sendCh    chan Message
	recvCh    chan Message
	closeCh   chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

// NewBaseTransport creates a new base transport.
func NewBaseTransport(config *Config) *BaseTransport {
	if config == nil {
		config = DefaultConfig()
	}
	return &BaseTransport{
		config:  config,
		sendCh:  make(chan Message, config.SendBufferSize),
		recvCh:  make(chan Message, config.ReceiveBufferSize),
		closeCh: make(chan struct{}),
	}
}

// Config returns the transport configuration.
func (t *BaseTransport) Config() *Config {
	return t.config
}

// IsConnected returns the connection status.
func (t *BaseTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.connected
}

// SetConnected updates the connection status.
func (t *BaseTransport) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = connected
}

// Receive returns the receive channel.
func (t *BaseTransport) Receive() <-chan Message {
	return t.recvCh
}

// CloseChan returns the close channel.
func (t *BaseTransport) CloseChan() <-chan struct{} {
	return t.closeCh
}

// Close marks the transport closed. It is safe to call more than once.
func (t *BaseTransport) Close() error {
	t.closeOnce.Do(func() {
		t.SetConnected(false)
		close(t.closeCh)
	})
	return nil
}

// PushMessage delivers an incoming message without blocking.
func (t *BaseTransport) PushMessage(msg Message) bool {
	select {
	case t.recvCh <- msg:
		return true
	case <-t.closeCh:
		return false
	default:
		return false
	}
}
