package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/reelpick/internal/server"
	"github.com/desertthunder/reelpick/internal/shared"
	"github.com/desertthunder/reelpick/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web viewer until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("%w: port %d", shared.ErrInvalidFlag, cfg.Port)
	}

	router, handler, closer, err := r.newWebRouter(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer handler.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go handler.Janitor(ctx, 0)

	srv := server.NewServer(cfg.Addr(), router, shared.WithLogger(r.logger, "component", "server"))
	if cmd.Bool("open") {
		go func() {
			select {
			case <-srv.Ready():
				if err := shared.OpenBrowser(ctx, srv.URL()); err != nil {
					r.logger.Warn("failed to open browser", "error", err)
				}
			case <-ctx.Done():
			}
		}()
	}

	r.logger.Info("starting web viewer", "addr", cfg.Addr(), "backend", r.config.Backend.URL, "cache", r.config.Cache.Backend)
	return srv.Run(ctx)
}

// newWebRouter wires the web handler and middleware. The closer releases the poster cache.
func (r *Runner) newWebRouter(ctx context.Context) (*server.BasicRouter, *web.Handler, io.Closer, error) {
	resolver, closer, err := r.openResolver(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	handler := web.NewHandler(r.backend, web.Options{
		Resolver:   resolver,
		Playback:   r.config.Playback,
		SessionTTL: r.config.Server.SessionTTL.Duration,
		Logger:     r.logger,
	})

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.Logging(shared.WithLogger(r.logger, "component", "http")), server.Recover(r.logger))
	handler.Register(router)

	return router, handler, closer, nil
}
