package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// WebSocket speaks JSON-RPC over WebSocket connections, one frame per
// message. Each connection is an independent peer; requests on one
// connection are handled concurrently like on stdio.
type WebSocket struct {
	addr     string
	upgrader websocket.Upgrader
	logger   middleware.Logger

	readTimeout  time.Duration
	writeTimeout time.Duration
	drainTimeout time.Duration

	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	inflight inflight
}

type wsClient struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

// WebSocketOption configures a WebSocket transport.
type WebSocketOption func(*WebSocket)

// WithWebSocketReadTimeout closes connections idle for longer than d.
func WithWebSocketReadTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.readTimeout = d
	}
}

// WithWebSocketWriteTimeout bounds each response write.
func WithWebSocketWriteTimeout(d time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.writeTimeout = d
	}
}

// WithWebSocketCheckOrigin sets the origin check for upgrades.
func WithWebSocketCheckOrigin(fn func(r *http.Request) bool) WebSocketOption {
	return func(ws *WebSocket) {
		ws.upgrader.CheckOrigin = fn
	}
}

// WithWebSocketLogger sets the logger for connection-level events.
func WithWebSocketLogger(l middleware.Logger) WebSocketOption {
	return func(ws *WebSocket) {
		if l != nil {
			ws.logger = l
		}
	}
}

// NewWebSocket creates a WebSocket transport listening on addr.
func NewWebSocket(addr string, opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger:       middleware.NopLogger{},
		readTimeout:  5 * time.Minute,
		writeTimeout: 10 * time.Second,
		drainTimeout: DefaultDrainTimeout,
		clients:      make(map[*wsClient]struct{}),
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Addr returns the listen address.
func (ws *WebSocket) Addr() string {
	return ws.addr
}

// Serve listens on Addr until ctx is canceled. On shutdown it stops
// accepting connections, waits for in-flight requests and then closes
// every open connection.
func (ws *WebSocket) Serve(ctx context.Context, handler Handler) error {
	srv := &http.Server{
		Addr:              ws.addr,
		Handler:           ws.HTTPHandler(ctx, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ws.logger.Info("websocket transport listening", middleware.F("addr", ws.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ws.drainTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if drainErr := ws.inflight.drain(ws.drainTimeout); drainErr != nil {
		ws.logger.Warn("websocket shutdown with requests in flight", middleware.F("pending", ws.inflight.pending()))
	}
	ws.closeAll()
	return err
}

// HTTPHandler returns the upgrade handler. Connections it accepts are
// served until the peer disconnects or ctx is canceled.
func (ws *WebSocket) HTTPHandler(ctx context.Context, handler Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.upgrader.Upgrade(w, r, nil)
		if err != nil {
			ws.logger.Debug("websocket upgrade failed", middleware.F("error", err.Error()))
			return
		}
		ws.serveConn(ctx, conn, r.RemoteAddr, handler)
	})
}

func (ws *WebSocket) serveConn(ctx context.Context, conn *websocket.Conn, remoteAddr string, handler Handler) {
	client := &wsClient{conn: conn, writeTimeout: ws.writeTimeout}

	ws.mu.Lock()
	ws.clients[client] = struct{}{}
	ws.mu.Unlock()

	ws.logger.Debug("websocket client connected", middleware.F("remote_addr", remoteAddr))
	defer func() {
		ws.mu.Lock()
		delete(ws.clients, client)
		ws.mu.Unlock()
		_ = conn.Close()
		ws.logger.Debug("websocket client disconnected", middleware.F("remote_addr", remoteAddr))
	}()

	// closing the connection unblocks ReadMessage
	stop := context.AfterFunc(ctx, func() { client.close() })
	defer stop()

	var pending sync.WaitGroup
	defer pending.Wait()

	for {
		if ws.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(ws.readTimeout))
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.logger.Warn("websocket read failed", middleware.F("remote_addr", remoteAddr), middleware.F("error", err.Error()))
			}
			return
		}
		if blank(message) {
			continue
		}
		if !ws.inflight.start() {
			return
		}

		pending.Add(1)
		go func() {
			defer pending.Done()
			defer ws.inflight.done()
			reqCtx := withMeta(ctx, "websocket", remoteAddr)
			if resp := respond(reqCtx, handler, message); resp != nil {
				if err := client.writeJSON(resp); err != nil {
					ws.logger.Debug("websocket write failed", middleware.F("error", err.Error()))
				}
			}
		}()
	}
}

func (ws *WebSocket) closeAll() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for client := range ws.clients {
		client.close()
	}
}

func (c *wsClient) writeJSON(resp *protocol.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteJSON(resp)
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = c.conn.Close()
}
