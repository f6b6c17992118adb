package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fylora/bloggle/internal/auth"
	"github.com/fylora/bloggle/internal/feed"
	"github.com/fylora/bloggle/internal/server"
	"github.com/fylora/bloggle/internal/session"
)

func main() {
	log.Println("Starting Bloggle server...")

	cfg := server.NewConfigFromEnv()

	users, cleanup := openUserStore(cfg)
	defer cleanup()

	tokens := auth.NewTokenService(auth.TokenConfig{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
		Secret:   cfg.JWTSecret,
	})

	content := feed.NewContentStore()
	graph := feed.NewSocialGraph()
	core := session.NewCore(content, graph, session.NewRegistry())

	seedAccounts(users, graph)

	authHandler := auth.NewHandler(users, tokens)
	authHandler.OnSignup = func(user *auth.User) {
		graph.EnsureAccount(user.ID, user.Username)
	}

	srv := server.NewServer(core, tokens, authHandler, *cfg)
	httpServer := server.CreateServer(cfg.Port, srv.SetupRoutes())

	errs := make(chan error, 1)
	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errs:
		log.Fatalf("Server failed: %v", err)
	case sig := <-stop:
		log.Printf("Received signal %s, shutting down", sig)
	}

	if err := server.ShutdownServer(httpServer, 10*time.Second); err != nil {
		log.Printf("Shutdown finished with error: %v", err)
	}
}

// openUserStore picks the Postgres store when DATABASE_URL is configured
// and falls back to the in-memory store otherwise.
func openUserStore(cfg *server.Config) (auth.UserStore, func()) {
	if cfg.DatabaseURL == "" {
		log.Println("No DATABASE_URL configured, using in-memory user store")
		return auth.NewMemoryUserStore(), func() {}
	}

	store, err := auth.OpenPostgresUserStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing user store: %v", err)
		}
	}
}

// seedAccounts makes every persisted user visible in the social graph
// before the first connection arrives.
func seedAccounts(users auth.UserStore, graph *feed.SocialGraph) {
	all, err := users.All()
	if err != nil {
		log.Printf("Account seeding failed: %v", err)
		return
	}
	for _, user := range all {
		graph.EnsureAccount(user.ID, user.Username)
	}
	log.Printf("Seeded %d accounts from the user store", len(all))
}
