// Package app contains the web front-end.
package app

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/quill/internal/auth"
	"github.com/stolasapp/quill/internal/config"
	"github.com/stolasapp/quill/internal/sec"
	"github.com/stolasapp/quill/internal/storage"
)

// New creates the web front-end server.
func New(cfg *config.Config, logger *slog.Logger, store storage.Store) (*echo.Echo, error) {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}
	srv.Renderer = renderer

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	} else {
		srv.Use(middleware.Recover())
	}

	srv.Use(
		middleware.Decompress(),
		middleware.Gzip(),
		middleware.Secure(),
		middleware.RequestID(),
	)

	sessions := sec.NewSessions([]byte(cfg.SessionSecret), !cfg.DevMode)
	handler{
		auth:  auth.NewService(store, sessions),
		store: store,
	}.register(srv)
	return srv, nil
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return err
		}
	}
}
