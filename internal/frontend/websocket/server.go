// Package websocket serves the JSON envelope protocol over WebSocket
// connections, one coordinator connection per socket.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/parlor/internal/config"
	"github.com/cory-johannsen/parlor/internal/game/session"
	"github.com/cory-johannsen/parlor/internal/gameserver"
	"github.com/cory-johannsen/parlor/internal/observability"
	"github.com/cory-johannsen/parlor/internal/protocol"
)

// Server is the HTTP front door: the /ws upgrade endpoint plus health and
// room inspection routes.
type Server struct {
	httpCfg  config.HTTPConfig
	wsCfg    config.WebSocketConfig
	coord    *gameserver.Coordinator
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	srv     *http.Server
	sockets map[string]*websocket.Conn
}

// NewServer creates a WebSocket server.
//
// Precondition: coord and logger must be non-nil; the configs must have passed Validate.
// Postcondition: Returns a Server ready to be started with ListenAndServe or mounted via Handler.
func NewServer(httpCfg config.HTTPConfig, wsCfg config.WebSocketConfig, coord *gameserver.Coordinator, logger *zap.Logger) *Server {
	s := &Server{
		httpCfg: httpCfg,
		wsCfg:   wsCfg,
		coord:   coord,
		logger:  logger,
		sockets: make(map[string]*websocket.Conn),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  wsCfg.ReadBufferSize,
		WriteBufferSize: wsCfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return httpCfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// Handler returns the routed handler wrapped in recovery, CORS, and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.serveHealth).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomID}", s.serveRoom).Methods(http.MethodGet)

	stdlog := zap.NewStdLog(s.logger.Named("http"))
	var h http.Handler = r
	h = handlers.CORS(
		handlers.AllowedOrigins(s.httpCfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)(h)
	h = handlers.CombinedLoggingHandler(stdlog.Writer(), h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(stdlog), handlers.PrintRecoveryStack(true))(h)
	return h
}

// ListenAndServe listens on the configured HTTP address and serves until Stop is called.
//
// Postcondition: Returns nil after a clean Stop, or the listen/serve error.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.httpCfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpCfg.Addr(), err)
	}
	return s.Serve(l)
}

// Serve serves HTTP on l until Stop is called.
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.httpCfg.ReadHeaderTimeout,
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	s.logger.Info("websocket server listening", zap.String("addr", l.Addr().String()))
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down and closes every open socket. Each
// socket's read pump then fails and disconnects its connection.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.srv
	sockets := make([]*websocket.Conn, 0, len(s.sockets))
	for _, ws := range s.sockets {
		sockets = append(sockets, ws)
	}
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Warn("shutting down http server", zap.Error(err))
		}
	}
	deadline := time.Now().Add(s.wsCfg.WriteWait)
	for _, ws := range sockets {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = ws.Close()
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.coord.Store().Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"rooms":       stats.Rooms,
		"connections": stats.Connections,
	})
}

func (s *Server) serveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	info, ok := s.coord.Store().Get(roomID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serveWS upgrades the request and runs the connection until either side ends it.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	conn, err := s.coord.Connect(connID)
	if err != nil {
		s.logger.Error("registering websocket connection", observability.Conn(connID), zap.Error(err))
		_ = ws.Close()
		return
	}
	s.track(connID, ws)
	s.logger.Info("websocket connected",
		observability.Conn(connID),
		zap.String("remote", r.RemoteAddr),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump(ws, conn.Outbox)
	}()

	s.readPump(connID, ws)

	// Disconnect closes the outbox, which ends the write pump.
	s.coord.Disconnect(connID)
	<-done
	s.untrack(connID)
	_ = ws.Close()
	s.logger.Info("websocket disconnected", observability.Conn(connID))
}

// readPump dispatches inbound envelopes in order until the socket fails.
func (s *Server) readPump(connID string, ws *websocket.Conn) {
	ws.SetReadLimit(s.wsCfg.MaxMessageBytes)
	_ = ws.SetReadDeadline(time.Now().Add(s.wsCfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.wsCfg.PongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", observability.Conn(connID), zap.Error(err))
			}
			return
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			_ = s.coord.Reject(connID, "", fmt.Errorf("%w: %v", gameserver.ErrMalformedPayload, err))
			continue
		}
		_ = s.coord.Dispatch(connID, env)
	}
}

// writePump forwards outbox events and keeps the peer alive with pings. A
// closed outbox ends the socket with a close frame.
func (s *Server) writePump(ws *websocket.Conn, outbox *session.Outbox) {
	connID := outbox.ConnID()
	ticker := time.NewTicker(s.wsCfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-outbox.Events():
			_ = ws.SetWriteDeadline(time.Now().Add(s.wsCfg.WriteWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				// Unblocks the read pump when the outbox was closed on overflow.
				_ = ws.Close()
				return
			}
			if err := ws.WriteJSON(ev); err != nil {
				s.logger.Debug("websocket write failed", observability.Conn(connID), zap.Error(err))
				_ = ws.Close()
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(s.wsCfg.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = ws.Close()
				return
			}
		}
	}
}

func (s *Server) track(connID string, ws *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets[connID] = ws
}

func (s *Server) untrack(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sockets, connID)
}
