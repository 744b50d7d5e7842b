// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/starford/mdpages/internal/api"
	"github.com/starford/mdpages/internal/docroot"
	"github.com/starford/mdpages/internal/index"
	"github.com/starford/mdpages/internal/mcpserver"
	"github.com/starford/mdpages/internal/pages"
	"github.com/starford/mdpages/internal/sse"
	"golang.org/x/sync/errgroup"
)

// indexEventThrottle bounds how often index.updated reaches browsers.
const indexEventThrottle = 2 * time.Second

// core holds the components shared by every run mode.
type core struct {
	cfg    *Config
	logger *slog.Logger
	root   *docroot.Root
	db     *index.DB
	pages  *pages.Service
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup builds the logger, document root, index and page service, and runs
// the initial index sync.
func setup(app *application) (*core, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(app.logOut, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("index_path", cfg.Index.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	root, err := docroot.New(cfg.Docs.Root)
	if err != nil {
		return nil, fmt.Errorf("init document root: %w", err)
	}

	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	c := &core{
		cfg:    cfg,
		logger: logger,
		root:   root,
		db:     db,
		pages:  pages.NewService(root, logger),
	}
	if _, err := c.sync(); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return c, nil
}

func (c *core) sync() ([]index.Change, error) {
	changes, err := index.Sync(c.db, c.root, c.logger)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		c.logger.Info("index synced", slog.Int("changes", len(changes)))
	}
	return changes, nil
}

// watch re-syncs the index after every debounced change below the root and
// hands the applied changes to publish. It returns when ctx is done.
func (c *core) watch(ctx context.Context, publish func(index.Change)) error {
	err := index.Watch(ctx, c.root.Dir(), c.cfg.Watch.Debounce, c.logger, func() {
		changes, err := c.sync()
		if err != nil {
			c.logger.Warn("sync after change failed", slog.String("error", err.Error()))
			return
		}
		for _, ch := range changes {
			publish(ch)
		}
	})
	if err != nil {
		// Pages are still served from disk; only live reload is lost.
		c.logger.Error("watcher failed", slog.String("error", err.Error()))
	}
	return nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	c, err := setup(app)
	if err != nil {
		return err
	}
	defer c.db.Close()

	cfg := c.cfg
	logger := c.logger

	var broker *sse.Broker
	var events http.Handler
	if cfg.Watch.Enabled {
		broker = sse.NewBroker(indexEventThrottle)
		defer broker.Close()
		events = broker
	}

	handler := chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	).Handler(api.NewRouter(c.pages, c.db, events))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if broker != nil {
		g.Go(func() error {
			return c.watch(gCtx, func(ch index.Change) {
				broker.PublishPageEvent(ch.Kind, ch.Path)
			})
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Event streams never finish on their own.
		if broker != nil {
			broker.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once shutdown has been initiated so the
// watcher stops too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdin/stdout. Logs go to stderr unless
// redirected, since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	c, err := setup(app)
	if err != nil {
		return err
	}
	defer c.db.Close()

	srv := mcpserver.New(c.pages, c.db, app.version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	if c.cfg.Watch.Enabled {
		g.Go(func() error {
			return c.watch(gCtx, func(index.Change) {})
		})
	}
	g.Go(func() error {
		defer cancel()
		c.logger.Info("Serving MCP over stdio")
		return srv.ServeStdio()
	})
	return g.Wait()
}
