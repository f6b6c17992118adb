// Package server exposes HTTP handlers, including the authenticated
// websocket upgrade and the health check.
package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fylora/bloggle/internal/auth"
	"github.com/fylora/bloggle/internal/session"
)

// Server binds the session core and the auth collaborators to HTTP. It is
// constructed once at startup and passed to the router; there is no
// process-wide mutable state.
type Server struct {
	core     *session.Core
	tokens   *auth.TokenService
	auth     *auth.Handler
	upgrader websocket.Upgrader
	cfg      Config
}

// NewServer assembles the transport layer around the session core.
func NewServer(core *session.Core, tokens *auth.TokenService, authHandler *auth.Handler, cfg Config) *Server {
	checker := newOriginChecker(cfg.AllowedOrigins)
	return &Server{
		core:   core,
		tokens: tokens,
		auth:   authHandler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checker.check,
		},
		cfg: cfg,
	}
}

// ConnectHandler upgrades the connection, verifies the caller's identity,
// and drives the session lifecycle: register with the core, replay backlog,
// then dispatch inbound messages in arrival order until the connection
// dies.
func (s *Server) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s.cfg.MaxMessageSize)
	go client.WriteLoop()

	identity, err := s.tokens.Parse(auth.BearerToken(r))
	if err != nil {
		client.Close(session.ClosePolicyViolation, "Authentication required")
		return
	}

	user, err := s.core.Connect(identity.UserID, identity.Username, client)
	if err != nil {
		if errors.Is(err, session.ErrAlreadyConnected) {
			client.Close(session.CloseInternalError, err.Error())
		} else {
			client.Close(session.CloseInternalError, "connect failed")
		}
		return
	}

	client.ReadLoop(func(raw []byte) {
		s.core.HandleMessage(user, raw)
	})

	_ = s.core.Disconnect(user)
}

// HealthHandler provides a simple health check endpoint that returns server
// status.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Bloggle server is running!")
}
