// Package core provides the live component abstractions: components,
// renderers and the socket a mounted component talks through.
package core

import (
	"context"
	"io"
)

// Component is a stateful server-side view. The router mounts it once per
// HTTP render and once per live connection, then feeds it client events.
type Component interface {
	// Name returns the identifier used in logs.
	Name() string

	// Mount is called before the first render with the request parameters
	// and session data.
	Mount(ctx context.Context, params Params, session Session) error

	// Render returns the current HTML representation of the component.
	// This is called after Mount and after each event.
	Render(ctx context.Context) Renderer

	// HandleEvent processes a client event.
	HandleEvent(ctx context.Context, event string, payload map[string]any) error

	// HandleInfo processes server-side messages such as broadcasts.
	HandleInfo(ctx context.Context, msg any) error

	// Terminate is called when the connection ends.
	Terminate(ctx context.Context, reason TerminateReason) error
}

// Renderer is the interface for rendering HTML content.
type Renderer interface {
	Render(ctx context.Context, w io.Writer) error
}

// RendererFunc is an adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, w io.Writer) error

func (f RendererFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

// Params contains the query parameters of the connection.
type Params map[string]string

// Get returns a parameter value or empty string if not found.
func (p Params) Get(key string) string {
	return p[key]
}

// Session contains request data captured by the router: cookies under
// "cookie:<name>" and selected headers under "header:<name>".
type Session map[string]any

// Get returns a session value.
func (s Session) Get(key string) any {
	return s[key]
}

// GetString returns a session value as string.
func (s Session) GetString(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Cookie returns the value of a captured cookie.
func (s Session) Cookie(name string) string {
	return s.GetString("cookie:" + name)
}

// Header returns the value of a captured request header.
func (s Session) Header(name string) string {
	return s.GetString("header:" + name)
}

// TerminateReason indicates why a component is being terminated.
type TerminateReason int

const (
	// TerminateNormal indicates the client left.
	TerminateNormal TerminateReason = iota
	// TerminateShutdown indicates the connection was closed by the server
	// or dropped.
	TerminateShutdown
	// TerminateError indicates termination due to an error.
	TerminateError
)

func (r TerminateReason) String() string {
	switch r {
	case TerminateNormal:
		return "normal"
	case TerminateShutdown:
		return "shutdown"
	case TerminateError:
		return "error"
	default:
		return "unknown"
	}
}

// BaseComponent provides default implementations for Component methods.
// Embed this in your components to avoid implementing unused methods.
type BaseComponent struct {
	socket *Socket
}

// SetSocket sets the socket for the component (called by the router).
func (bc *BaseComponent) SetSocket(s *Socket) {
	bc.socket = s
}

// Socket returns the component's socket. It is nil during HTTP renders.
func (bc *BaseComponent) Socket() *Socket {
	return bc.socket
}

// Push sends an event to the client if the component is connected.
func (bc *BaseComponent) Push(event string, payload map[string]any) error {
	if bc.socket == nil {
		return nil
	}
	return bc.socket.Push(event, payload)
}

// Mount does nothing by default.
func (bc *BaseComponent) Mount(ctx context.Context, params Params, session Session) error {
	return nil
}

// HandleEvent does nothing by default.
func (bc *BaseComponent) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	return nil
}

// HandleInfo does nothing by default.
func (bc *BaseComponent) HandleInfo(ctx context.Context, msg any) error {
	return nil
}

// Terminate does nothing by default.
func (bc *BaseComponent) Terminate(ctx context.Context, reason TerminateReason) error {
	return nil
}
