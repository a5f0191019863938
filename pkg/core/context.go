package core

import "context"

type contextKey string

const socketKey contextKey = "golivefolio:socket"

// WithSocket returns a context carrying the socket of a live connection.
func WithSocket(ctx context.Context, socket *Socket) context.Context {
	return context.WithValue(ctx, socketKey, socket)
}

// SocketFromContext returns the socket stored in ctx, or nil during an
// HTTP render.
func SocketFromContext(ctx context.Context) *Socket {
	s, _ := ctx.Value(socketKey).(*Socket)
	return s
}
