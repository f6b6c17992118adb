// Package server wires HTTP handlers into a chi router for the Bloggle
// application.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes configures and returns the application router: auth
// endpoints, the websocket entry point, and the health check.
func (s *Server) SetupRoutes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/", s.HealthHandler)
	router.Get("/health", s.HealthHandler)
	router.Post("/signup", s.auth.SignUp)
	router.Post("/signin", s.auth.SignIn)
	router.Get("/authenticate", s.auth.Authenticate)
	router.Get("/connect", s.ConnectHandler)

	return router
}
