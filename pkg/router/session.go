package router

import (
	"sync"
	"time"

	"github.com/gabrielmiguelok/golivefolio/pkg/core"
	"github.com/gabrielmiguelok/golivefolio/pkg/transport"
)

// infoQueueSize bounds the messages waiting for HandleInfo per session.
const infoQueueSize = 16

// LiveViewSession binds a live component to its WebSocket connection.
type LiveViewSession struct {
	// SocketID is the id of the associated socket.
	SocketID string

	Component core.Component
	Socket    *core.Socket
	Transport *transport.WebSocketTransport

	// Params holds the query parameters of the upgrade request.
	Params core.Params

	// Session holds cookies and client hints of the upgrade request.
	Session core.Session

	CreatedAt time.Time

	info chan any

	mounted bool
	version uint64

	// Per-socket slot state from the last render.
	slotHashes map[string]uint64
	slotMu     sync.RWMutex

	mu sync.RWMutex
}

// NewLiveViewSession creates a new live session.
func NewLiveViewSession(socketID string, comp core.Component, params core.Params, session core.Session) *LiveViewSession {
	return &LiveViewSession{
		SocketID:  socketID,
		Component: comp,
		Params:    params,
		Session:   session,
		CreatedAt: time.Now(),
		info:      make(chan any, infoQueueSize),
	}
}

// GetSlotHashes returns the slot hashes of the last render.
func (s *LiveViewSession) GetSlotHashes() map[string]uint64 {
	s.slotMu.RLock()
	defer s.slotMu.RUnlock()
	return s.slotHashes
}

// SetSlotHashes stores the slot hashes of the last render.
func (s *LiveViewSession) SetSlotHashes(hashes map[string]uint64) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	s.slotHashes = hashes
}

// SetMounted marks the session as mounted.
func (s *LiveViewSession) SetMounted(mounted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = mounted
}

// IsMounted reports whether the component was mounted.
func (s *LiveViewSession) IsMounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// nextVersion returns the diff version used by the client for ordering.
func (s *LiveViewSession) nextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}
