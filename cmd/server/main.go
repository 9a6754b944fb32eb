// Package main is the entry point for the event list manager.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/eventlist-manager/backend/internal/api"
	"github.com/eventlist-manager/backend/internal/eventapi"
	"github.com/eventlist-manager/backend/internal/session"
	"github.com/eventlist-manager/backend/internal/storage"
	"github.com/eventlist-manager/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// apiURL is the events resource the UI talks to, fixed at build time via
// -ldflags "-X main.apiURL=https://example.com/events".
var apiURL = "http://localhost:3000/events"

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "eventlist",
		Usage:   "Manage a list of events in the browser.",
		Version: version,
		Commands: []*cli.Command{
			serveCommand(),
			backendCommand(),
			watchCommand(),
			healthCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the event list UI.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address", EnvVars: []string{"EVENTLIST_ADDR"}},
			&cli.StringFlag{Name: "api-url", Value: apiURL, Usage: "events resource URL", EnvVars: []string{"EVENTLIST_API_URL"}},
			&cli.StringFlag{Name: "csrf-key", Usage: "hex-encoded 32-byte CSRF key; random when empty", EnvVars: []string{"EVENTLIST_CSRF_KEY"}},
			&cli.BoolFlag{Name: "secure-cookies", Usage: "send the CSRF cookie over HTTPS only", EnvVars: []string{"EVENTLIST_SECURE_COOKIES"}},
			&cli.StringSliceFlag{Name: "trusted-origin", Usage: "extra origin allowed to post forms", EnvVars: []string{"EVENTLIST_TRUSTED_ORIGINS"}},
			&cli.DurationFlag{Name: "session-idle", Value: session.DefaultIdleTimeout, Usage: "drop UI sessions idle this long", EnvVars: []string{"EVENTLIST_SESSION_IDLE"}},
		},
		Action: func(c *cli.Context) error {
			csrfKey, err := loadCSRFKey(c.String("csrf-key"))
			if err != nil {
				return err
			}

			log.Printf("Starting event list UI (version: %s, api: %s)...", version, c.String("api-url"))

			client := eventapi.NewClient(c.String("api-url"))
			sessions := session.NewManager(client, c.Duration("session-idle"))
			if err := sessions.Start(); err != nil {
				return fmt.Errorf("starting session sweeper: %w", err)
			}
			defer sessions.Stop()

			router := api.NewUIRouter(sessions, api.UIOptions{
				APIURL:         client.BaseURL(),
				CSRFKey:        csrfKey,
				SecureCookies:  c.Bool("secure-cookies"),
				TrustedOrigins: c.StringSlice("trusted-origin"),
			})
			return listenAndServe(c.Context, c.String("addr"), router)
		},
	}
}

func backendCommand() *cli.Command {
	return &cli.Command{
		Name:  "backend",
		Usage: "Serve the /events REST resource backed by SQLite.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":3000", Usage: "HTTP listen address", EnvVars: []string{"EVENTLIST_BACKEND_ADDR"}},
			&cli.StringFlag{Name: "data", Value: "./data", Usage: "directory for the SQLite database", EnvVars: []string{"EVENTLIST_DATA_DIR"}},
			&cli.StringFlag{Name: "seed", Usage: "JSON file of events to import at startup"},
		},
		Action: func(c *cli.Context) error {
			log.Printf("Starting events backend (version: %s)...", version)

			db, err := storage.NewDB(filepath.Join(c.String("data"), "events.db"))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := storage.RunMigrations(c.Context, db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			log.Printf("Database ready at %s", db.Path())

			if seed := c.String("seed"); seed != "" {
				events, err := storage.LoadSeedFile(seed)
				if err != nil {
					return err
				}
				n, err := storage.NewEventRepository(db).Import(c.Context, events)
				if err != nil {
					return fmt.Errorf("importing seed events: %w", err)
				}
				log.Printf("Imported %d events from %s", n, seed)
			}

			hubCtx, stopHub := context.WithCancel(c.Context)
			defer stopHub()
			hub := websocket.NewHub()
			go hub.Run(hubCtx)

			return listenAndServe(c.Context, c.String("addr"), api.NewBackendRouter(db, hub))
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print changes from the backend's change feed.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "ws://localhost:3000/events/ws", Usage: "change feed URL"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("Watching %s", c.String("url"))
			return websocket.Watch(ctx, c.String("url"), func(m websocket.Message) {
				log.Printf("%s %s", m.Type, m.Payload)
			})
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Probe a running server's health endpoint, for container health checks.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080/health", Usage: "health endpoint"},
		},
		Action: func(c *cli.Context) error {
			return runHealthCheck(c.Context, c.String("url"))
		},
	}
}

// listenAndServe runs handler until SIGINT/SIGTERM, then shuts down gracefully.
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func loadCSRFKey(encoded string) ([]byte, error) {
	if encoded == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating CSRF key: %w", err)
		}
		log.Println("No CSRF key configured; using a random key for this process")
		return key, nil
	}

	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding CSRF key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CSRF key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// runHealthCheck performs a health check against a running server.
func runHealthCheck(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}
