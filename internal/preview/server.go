// Package preview serves generated pages over HTTP.
package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cubahno/oasdocs/internal/config"
	"github.com/cubahno/oasdocs/internal/includer"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	MarkdownContentType = "text/markdown; charset=utf-8"
	YAMLContentType     = "application/yaml; charset=utf-8"

	shutdownTimeout = 5 * time.Second
)

// Server serves the pages kept by a MemoryWriter.
type Server struct {
	echo    *echo.Echo
	pages   *includer.MemoryWriter
	address string
}

// New creates a server for the pages.
func New(pages *includer.MemoryWriter, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		pages:   pages,
		address: cfg.Preview.Address,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	e.GET("/", s.serveIndex)
	e.GET("/*", s.servePage)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the address the server listens on, nil before Start.
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

// Start serves until the context is done, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		slog.Info("preview server started", "address", s.address)
		err := s.echo.Start(s.address)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errs <- err
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("preview server stopping")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errs
}

func (s *Server) serveIndex(c echo.Context) error {
	return s.serve(c, includer.IndexPath)
}

func (s *Server) servePage(c echo.Context) error {
	name := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	if name == "" {
		name = includer.IndexPath
	}
	return s.serve(c, name)
}

func (s *Server) serve(c echo.Context, name string) error {
	data, ok := s.pages.Get(name)
	if !ok {
		return echo.ErrNotFound
	}

	contentType := MarkdownContentType
	if path.Ext(name) == ".yaml" {
		contentType = YAMLContentType
	}
	return c.Blob(http.StatusOK, contentType, data)
}
