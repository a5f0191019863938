package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gabrielmiguelok/golivefolio/client"
	"github.com/gabrielmiguelok/golivefolio/internal/config"
	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/content"
	"github.com/gabrielmiguelok/golivefolio/pkg/health"
	"github.com/gabrielmiguelok/golivefolio/pkg/live"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/router"
	"github.com/gabrielmiguelok/golivefolio/pkg/shutdown"
	"github.com/gabrielmiguelok/golivefolio/pkg/theme"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live portfolio page",
		Long: `Starts an HTTP server for the portfolio page. Every open page keeps a
WebSocket connection; theme and console interactions are handled on the
server. With --watch, open pages reload when the data file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Server.Watch = watch
			}

			logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logging.SetDefault(logger)

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
			}
			return newServer(cfg, logger).run(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload open pages when the data file changes")
	return cmd
}

// server is the assembled HTTP surface of folio serve.
type server struct {
	cfg     *config.Config
	logger  logging.Logger
	source  *content.CachedSource
	router  *router.Router
	checker *health.Checker
}

func newServer(cfg *config.Config, logger logging.Logger) *server {
	src := content.NewCachedSource(contentSource(cfg.Content))

	r := router.New(
		router.WithLogger(logger),
		router.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		router.WithClientHints(theme.HintHeader),
		router.WithSessionLimit(cfg.Server.MaxSessions),
	)
	r.Use(logging.RequestLogger(logger))
	r.Use(router.Recovery(logger))

	secure := router.DefaultSecureHeadersConfig()
	secure.ScriptSources = []string{site.TailwindCDN}
	r.Use(router.SecureHeadersWithConfig(secure))

	checker := health.NewChecker()
	checker.SetVersion(version)
	checker.AddCriticalCheck("content", health.ContentCheck(src), 0)
	checker.AddCheck("sessions", health.SessionsCheck(r.Sockets().Count, cfg.Server.MaxSessions), 0)

	r.Handle("/_live/", http.StripPrefix("/_live/", client.Handler()))
	r.Handle("/data.json", cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		MaxAge:         300,
	})(documentHandler(src)))
	r.Handle("GET /healthz", checker.ReadinessHandler())
	r.Handle("GET /livez", checker.LivenessHandler())
	r.Live("/{$}", live.NewFactory(live.Config{
		Source: src,
		Meta:   siteMeta(cfg.Site),
		Logger: logger,
	}))

	return &server{
		cfg:     cfg,
		logger:  logger,
		source:  src,
		router:  r,
		checker: checker,
	}
}

// documentHandler serves the raw portfolio document.
func documentHandler(src content.Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := src.Fetch(r.Context())
		if err != nil {
			logging.L(r.Context()).Warn("portfolio document unavailable", logging.Err(err))
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})
}

// contentChanged drops the cached document and asks open pages to reload.
func (s *server) contentChanged() {
	s.source.Invalidate()
	n := s.router.Notify(live.ContentChanged{})
	s.logger.Info("portfolio document changed", logging.Int("sessions", n))
}

// run serves on ln until ctx ends or a shutdown signal arrives.
func (s *server) run(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sd := shutdown.NewHandler(&shutdown.Config{
		Timeout: s.cfg.Server.ShutdownTimeout,
		Signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
		Logger:  s.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	defer stopWatch()

	if s.cfg.Server.Watch {
		if path := s.cfg.Content.WatchPath(); path != "" {
			w, err := content.NewWatcher(path, s.contentChanged, content.WithWatchLogger(s.logger))
			if err != nil {
				ln.Close()
				return err
			}
			g.Go(func() error { return w.Run(watchCtx) })
			s.logger.Info("watching portfolio document", logging.String("path", path))
		} else {
			s.logger.Warn("watch ignored for remote content", logging.String("source", s.cfg.Content.Source))
		}
	}

	sd.RegisterFunc("watcher", shutdown.PriorityFirst, func(context.Context) error {
		stopWatch()
		return nil
	})
	sd.Register(shutdown.HTTPServerHook("http", httpSrv.Shutdown))
	sd.RegisterFunc("live sessions", shutdown.PriorityWebSocket, s.router.Shutdown)

	g.Go(func() error {
		s.logger.Info("serving portfolio",
			logging.String("addr", ln.Addr().String()),
			logging.String("source", s.source.String()),
			logging.Bool("watch", s.cfg.Server.Watch),
		)
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sd.Wait(gctx)
	})

	return g.Wait()
}
