// Package router serves live components over HTTP and WebSocket.
//
// A live route answers a plain GET with a full server render and upgrades
// WebSocket requests on the same path into a live session. Events from the
// client go to the component; the re-rendered data-slot regions that
// changed are sent back as a diff.
package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gabrielmiguelok/golivefolio/pkg/core"
	"github.com/gabrielmiguelok/golivefolio/pkg/limits"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/transport"
)

// Common router errors.
var (
	ErrNilRenderer = errors.New("component returned nil renderer")
	ErrShutdown    = errors.New("router is shutting down")
	ErrAtCapacity  = errors.New("live sessions at capacity")
)

// AfterRenderer is implemented by components that queue client events
// which must arrive after the diff of the same event.
type AfterRenderer interface {
	AfterRender(ctx context.Context)
}

// Middleware is a function that wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// ErrorHandler handles errors during request processing.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Router handles HTTP routing for live components.
type Router struct {
	mux          *http.ServeMux
	middleware   []Middleware
	errorHandler ErrorHandler
	logger       logging.Logger

	transportConfig *transport.Config
	wsConfig        *transport.WebSocketConfig
	clientHints     []string

	sockets  *core.SocketManager
	sessions map[string]*LiveViewSession
	limiter  *limits.SessionLimiter

	// baseCtx outlives requests; live sessions run under it.
	baseCtx  context.Context
	cancel   context.CancelFunc
	loops    sync.WaitGroup
	shutdown bool

	mu sync.RWMutex
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithAllowedOrigins lists extra origins allowed to open live sessions.
func WithAllowedOrigins(origins ...string) Option {
	return func(r *Router) {
		r.wsConfig.AllowedOrigins = append(r.wsConfig.AllowedOrigins, origins...)
	}
}

// WithClientHints asks browsers for the named client hint headers and
// copies them into the component session as "header:<name>".
func WithClientHints(headers ...string) Option {
	return func(r *Router) {
		r.clientHints = append(r.clientHints, headers...)
	}
}

// WithSessionLimit caps concurrent live sessions. Pages still render over
// HTTP when the cap is reached; only the upgrade is refused.
func WithSessionLimit(max int) Option {
	return func(r *Router) {
		r.limiter = limits.NewSessionLimiter(max)
	}
}

// WithErrorHandler sets the error handler for HTTP renders.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// New creates a new router.
func New(opts ...Option) *Router {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		mux:             http.NewServeMux(),
		logger:          logging.NopLogger{},
		transportConfig: transport.DefaultConfig(),
		wsConfig:        &transport.WebSocketConfig{},
		sockets:         core.NewSocketManager(),
		sessions:        make(map[string]*LiveViewSession),
		limiter:         limits.NewSessionLimiter(0),
		baseCtx:         ctx,
		cancel:          cancel,
		errorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Use adds middleware to the router. It applies to routes registered
// afterwards.
func (r *Router) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

func (r *Router) wrap(h http.Handler) http.Handler {
	r.mu.RLock()
	middleware := make([]Middleware, len(r.middleware))
	copy(middleware, r.middleware)
	r.mu.RUnlock()

	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// Handle registers a standard HTTP handler.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, r.wrap(handler))
}

// HandleFunc registers a standard HTTP handler function.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Live registers a live route. factory is called once per HTTP render and
// once per live connection.
func (r *Router) Live(pattern string, factory func() core.Component) {
	r.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.renderLive(w, req, factory)
	}))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Sockets returns the socket manager.
func (r *Router) Sockets() *core.SocketManager {
	return r.sockets
}

// Notify delivers msg to HandleInfo of every live component. Delivery
// happens on each session's own loop; sessions whose queue is full skip it.
func (r *Router) Notify(msg any) int {
	r.mu.RLock()
	sessions := make([]*LiveViewSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range sessions {
		select {
		case s.info <- msg:
			delivered++
		default:
			r.logger.Warn("info queue full", logging.String("socket_id", s.SocketID))
		}
	}
	return delivered
}

// Shutdown closes every live session and waits for their loops to finish
// or ctx to end.
func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.shutdown = true
	r.mu.Unlock()

	r.cancel()
	if err := r.sockets.CloseAll(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		r.loops.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// renderLive renders a live component over HTTP or upgrades to WebSocket.
func (r *Router) renderLive(w http.ResponseWriter, req *http.Request, factory func() core.Component) {
	if isWebSocketRequest(req) {
		r.handleWebSocket(w, req, factory())
		return
	}

	if len(r.clientHints) > 0 {
		hints := strings.Join(r.clientHints, ", ")
		w.Header().Set("Accept-CH", hints)
		w.Header().Set("Critical-CH", hints)
		w.Header().Add("Vary", hints)
	}

	component := factory()
	ctx := req.Context()

	if err := component.Mount(ctx, extractParams(req), r.extractSession(req)); err != nil {
		r.errorHandler(w, req, fmt.Errorf("mount %s: %w", component.Name(), err))
		return
	}
	defer component.Terminate(ctx, core.TerminateNormal)

	renderer := component.Render(ctx)
	if renderer == nil {
		r.errorHandler(w, req, ErrNilRenderer)
		return
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		r.errorHandler(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleWebSocket upgrades the request and starts the session loop.
func (r *Router) handleWebSocket(w http.ResponseWriter, req *http.Request, component core.Component) {
	r.mu.RLock()
	closing := r.shutdown
	r.mu.RUnlock()
	if closing {
		http.Error(w, ErrShutdown.Error(), http.StatusServiceUnavailable)
		return
	}
	if !r.limiter.Acquire() {
		r.logger.Warn("live session refused", logging.Int("max", r.limiter.Max()), logging.Any("refused", r.limiter.Blocked()))
		http.Error(w, ErrAtCapacity.Error(), http.StatusServiceUnavailable)
		return
	}

	socketID := uuid.NewString()
	logger := r.logger.With(logging.String("socket_id", socketID), logging.String("component", component.Name()))

	ws := transport.NewWebSocketTransport(r.transportConfig, r.wsConfig, logger)
	if err := ws.Upgrade(w, req); err != nil {
		r.limiter.Release()
		logger.Warn("websocket upgrade failed", logging.Err(err))
		return
	}

	socket := core.NewSocket(socketID, transportAdapter{ws})
	if bc, ok := component.(interface{ SetSocket(*core.Socket) }); ok {
		bc.SetSocket(socket)
	}

	session := NewLiveViewSession(socketID, component, extractParams(req), r.extractSession(req))
	session.Socket = socket
	session.Transport = ws

	r.mu.Lock()
	r.sessions[socketID] = session
	r.mu.Unlock()
	r.sockets.Add(socket)

	logger.Debug("live session started")

	// The session outlives the upgrade request, so it runs under baseCtx.
	ctx := core.WithSocket(r.baseCtx, socket)
	r.loops.Add(1)
	go func() {
		defer r.loops.Done()
		defer r.limiter.Release()
		r.messageLoop(ctx, session, logger)
	}()
}

// messageLoop processes one session's messages until the connection ends.
func (r *Router) messageLoop(ctx context.Context, session *LiveViewSession, logger logging.Logger) {
	reason := core.TerminateShutdown
	defer func() {
		r.handleDisconnect(session, reason)
		logger.Debug("live session ended", logging.String("reason", reason.String()))
	}()

	recvCh := session.Transport.Receive()
	closeCh := session.Transport.CloseChan()

	for {
		select {
		case msg := <-recvCh:
			switch msg.Event {
			case "heartbeat", "phx_heartbeat":
				r.sendReply(session, msg.Ref, msg.Topic, nil)

			case "phx_join":
				r.handleJoin(ctx, session, msg)

			case "phx_leave":
				reason = core.TerminateNormal
				return

			default:
				if err := r.dispatchEvent(ctx, session, msg); err != nil {
					logger.Warn("event failed", logging.String("event", msg.Event), logging.Err(err))
					r.sendError(session, msg.Ref, msg.Topic, err)
					continue
				}
				r.sendReply(session, msg.Ref, msg.Topic, nil)
				r.renderAndSendDiff(ctx, session, logger)
			}

		case info := <-session.info:
			if !session.IsMounted() {
				continue
			}
			if err := session.Component.HandleInfo(ctx, info); err != nil {
				logger.Warn("info failed", logging.Err(err))
				continue
			}
			r.renderAndSendDiff(ctx, session, logger)

		case <-closeCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleJoin mounts the component, replies with the full render and seeds
// the slot hashes so the first diff only carries real changes. Pushes queued
// during mount follow the reply.
func (r *Router) handleJoin(ctx context.Context, session *LiveViewSession, msg transport.Message) {
	if !session.IsMounted() {
		if err := session.Component.Mount(ctx, session.Params, session.Session); err != nil {
			r.sendError(session, msg.Ref, msg.Topic, err)
			return
		}
		session.SetMounted(true)
	}

	html, err := renderToString(ctx, session.Component)
	if err != nil {
		r.sendError(session, msg.Ref, msg.Topic, err)
		return
	}

	textSlots, htmlSlots := extractSlots(html)
	session.SetSlotHashes(hashSlots(textSlots, htmlSlots))

	r.sendReply(session, msg.Ref, msg.Topic, map[string]any{
		"socket_id": session.SocketID,
		"rendered": map[string]any{
			"s": []string{html},
		},
	})

	if ar, ok := session.Component.(AfterRenderer); ok {
		ar.AfterRender(ctx)
	}
}

// dispatchEvent dispatches a user event to the component.
func (r *Router) dispatchEvent(ctx context.Context, session *LiveViewSession, msg transport.Message) error {
	if !session.IsMounted() {
		return errors.New("event before join")
	}

	payload := msg.Payload
	if payload == nil {
		payload = make(map[string]any)
	}

	return session.Component.HandleEvent(ctx, msg.Event, payload)
}

// renderAndSendDiff re-renders the component and sends the changed slots.
func (r *Router) renderAndSendDiff(ctx context.Context, session *LiveViewSession, logger logging.Logger) {
	html, err := renderToString(ctx, session.Component)
	if err != nil {
		logger.Error("render failed", logging.Err(err))
		return
	}

	payload := buildDiffPayload(session, html)
	if !payload.IsEmpty() {
		if err := session.Socket.SendDiff(payload); err != nil {
			logger.Debug("diff not sent", logging.Err(err))
		}
	}

	if ar, ok := session.Component.(AfterRenderer); ok {
		ar.AfterRender(ctx)
	}
}

func renderToString(ctx context.Context, component core.Component) (string, error) {
	renderer := component.Render(ctx)
	if renderer == nil {
		return "", ErrNilRenderer
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if err := renderer.Render(ctx, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// handleDisconnect terminates the component and forgets the session.
func (r *Router) handleDisconnect(session *LiveViewSession, reason core.TerminateReason) {
	session.Component.Terminate(context.Background(), reason)

	r.mu.Lock()
	delete(r.sessions, session.SocketID)
	r.mu.Unlock()
	r.sockets.Remove(session.SocketID)

	session.Transport.Close()
}

// sendReply sends a reply message to the client.
func (r *Router) sendReply(session *LiveViewSession, ref, topic string, response map[string]any) {
	session.Transport.Send(transport.Message{
		Ref:   ref,
		Topic: topic,
		Event: "phx_reply",
		Payload: map[string]any{
			"status":   "ok",
			"response": response,
		},
	})
}

// sendError sends an error reply to the client.
func (r *Router) sendError(session *LiveViewSession, ref, topic string, err error) {
	session.Transport.Send(transport.Message{
		Ref:   ref,
		Topic: topic,
		Event: "phx_reply",
		Payload: map[string]any{
			"status": "error",
			"response": map[string]any{
				"reason": err.Error(),
			},
		},
	})
}

// extractSession captures cookies and the configured client hints.
func (r *Router) extractSession(req *http.Request) core.Session {
	session := make(core.Session)

	for _, cookie := range req.Cookies() {
		session["cookie:"+cookie.Name] = cookie.Value
	}
	for _, h := range r.clientHints {
		if v := req.Header.Get(h); v != "" {
			session["header:"+h] = v
		}
	}

	return session
}

// extractParams extracts the query parameters.
func extractParams(req *http.Request) core.Params {
	params := make(core.Params)

	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return params
}

// isWebSocketRequest checks if this is a WebSocket upgrade request.
func isWebSocketRequest(req *http.Request) bool {
	return strings.Contains(strings.ToLower(req.Header.Get("Upgrade")), "websocket")
}

// transportAdapter lets a core.Socket write through a WebSocket transport.
type transportAdapter struct {
	ws *transport.WebSocketTransport
}

func (a transportAdapter) Send(msg core.Message) error {
	return a.ws.Send(transport.Message{
		Ref:     msg.Ref,
		Topic:   msg.Topic,
		Event:   msg.Event,
		Payload: msg.Payload,
	})
}

func (a transportAdapter) Close() error {
	return a.ws.Close()
}

func (a transportAdapter) IsConnected() bool {
	return a.ws.IsConnected()
}

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 16*1024))
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns buf to the pool unless it grew unusually large.
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1<<20 {
		return
	}
	bufferPool.Put(buf)
}
