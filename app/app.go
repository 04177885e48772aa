package app

import (
	"log"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/searchktools/c10k-server/config"
	"github.com/searchktools/c10k-server/core"
)

// App ties the server core to process concerns: configuration, signals and
// the shutdown sequence.
type App struct {
	cfg    *config.Config
	server *core.Server
}

// New creates an application instance around the given seam handler
func New(cfg *config.Config, handler core.Handler) *App {
	server := core.NewServer(core.Options{
		Port:           cfg.Port,
		Workers:        cfg.Workers,
		MaxConnections: cfg.MaxConnections,
	}, handler)

	return &App{
		cfg:    cfg,
		server: server,
	}
}

// Server returns the underlying server, mainly for tests and stats
func (a *App) Server() *core.Server {
	return a.server
}

// Run starts the server and blocks until SIGINT or SIGTERM, then shuts
// down gracefully. SIGPIPE is ignored so a broken pipe during send stays an
// error return on the write path.
func (a *App) Run() error {
	signal.Ignore(unix.SIGPIPE)

	if err := a.server.Start(); err != nil {
		return err
	}

	log.Printf("⚡ environment: %s", a.cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, unix.SIGINT, unix.SIGTERM)

	sig := <-quit
	log.Printf("signal received: %v, shutting down", sig)

	a.server.Stop()
	log.Printf("final stats: %s", a.server.Stats().Text())

	return nil
}
