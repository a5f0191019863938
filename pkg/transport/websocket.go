package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
)

// ErrOriginNotAllowed is returned when an upgrade comes from a foreign origin.
var ErrOriginNotAllowed = errors.New("origin not allowed")

// WebSocketConfig configures WebSocket security settings.
type WebSocketConfig struct {
	// AllowedOrigins lists extra origins besides the serving host. "*"
	// allows any origin.
	AllowedOrigins []string
}

// WebSocketTransport is the server end of a WebSocket connection.
type WebSocketTransport struct {
	*BaseTransport
	conn     *websocket.Conn
	wsConfig *WebSocketConfig
	logger   logging.Logger
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewWebSocketTransport creates a transport that is not yet connected.
func NewWebSocketTransport(config *Config, wsConfig *WebSocketConfig, logger logging.Logger) *WebSocketTransport {
	if wsConfig == nil {
		wsConfig = &WebSocketConfig{}
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &WebSocketTransport{
		BaseTransport: NewBaseTransport(config),
		wsConfig:      wsConfig,
		logger:        logger,
	}
}

// isOriginAllowed checks if the origin is allowed for WebSocket connections.
func (t *WebSocketTransport) isOriginAllowed(origin string, requestHost string) bool {
	// No Origin header means a non-browser client.
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if originURL.Host == requestHost {
		return true
	}

	for _, allowed := range t.wsConfig.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if allowedURL, err := url.Parse(allowed); err == nil && allowedURL.Host != "" && allowedURL.Host == originURL.Host {
			return true
		}
	}

	return false
}

// Upgrade upgrades an HTTP connection to WebSocket and starts the read,
// write and ping loops.
func (t *WebSocketTransport) Upgrade(w http.ResponseWriter, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if !t.isOriginAllowed(origin, r.Host) {
		http.Error(w, "Forbidden: Origin not allowed", http.StatusForbidden)
		return ErrOriginNotAllowed
	}

	// The origin was checked above, including the configured extra origins.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return fmt.Errorf("accept websocket: %w", err)
	}
	conn.SetReadLimit(t.config.MaxMessageSize)

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	t.SetConnected(true)

	t.wg.Add(3)
	go t.readLoop()
	go t.writeLoop()
	go t.pingLoop()

	return nil
}

// Send queues a message. It blocks at most WriteTimeout when the buffer is full.
func (t *WebSocketTransport) Send(msg Message) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}

	select {
	case t.sendCh <- msg:
		return nil
	case <-t.closeCh:
		return ErrConnectionClosed
	case <-time.After(t.config.WriteTimeout):
		return ErrSendTimeout
	}
}

// Close closes the WebSocket connection.
func (t *WebSocketTransport) Close() error {
	t.BaseTransport.Close()

	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

// Wait blocks until the connection loops have exited.
func (t *WebSocketTransport) Wait() {
	t.wg.Wait()
}

func (t *WebSocketTransport) currentConn() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *WebSocketTransport) readLoop() {
	defer t.wg.Done()
	defer t.Close()

	for {
		conn := t.currentConn()
		if conn == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), t.config.ReadTimeout)
		_, data, err := conn.Read(ctx)
		cancel()

		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				t.logger.Debug("websocket read ended", logging.Err(err))
			}
			return
		}

		msg, err := Unmarshal(data)
		if err != nil {
			t.logger.Debug("dropping malformed message", logging.Err(err))
			continue
		}

		if !t.PushMessage(msg) {
			select {
			case <-t.closeCh:
				return
			default:
				t.logger.Warn("receive buffer full, dropping message", logging.String("event", msg.Event))
			}
		}
	}
}

func (t *WebSocketTransport) writeLoop() {
	defer t.wg.Done()

	for {
		select {
		case msg := <-t.sendCh:
			conn := t.currentConn()
			if conn == nil {
				return
			}

			data, err := msg.Marshal()
			if err != nil {
				t.logger.Error("encode message", logging.String("event", msg.Event), logging.Err(err))
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			err = conn.Write(ctx, websocket.MessageText, data)
			cancel()

			if err != nil {
				t.logger.Debug("websocket write failed", logging.Err(err))
				t.Close()
				return
			}

		case <-t.closeCh:
			return
		}
	}
}

func (t *WebSocketTransport) pingLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn := t.currentConn()
			if conn == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), t.config.WriteTimeout)
			conn.Ping(ctx)
			cancel()
		case <-t.closeCh:
			return
		}
	}
}
