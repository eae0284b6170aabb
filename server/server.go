// Package server exposes the resolution pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"
	"github.com/vidlink-cli/vidlink/pipeline"
	"golang.org/x/time/rate"
)

// Factory builds a pipeline for a single request. release is called when the request is done.
type Factory func() (p *pipeline.Pipeline, release func(), err error)

// Options tune the HTTP adapter.
type Options struct {
	// RateLimit is the number of requests per second allowed per client. Zero disables limiting.
	RateLimit float64
	Burst     int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

type Server struct {
	echo    *echo.Echo
	factory Factory
}

// New registers the API routes and middleware.
func New(factory Factory, options Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(level(options.LogLevel))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	if options.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(options.RateLimit),
				Burst:     options.Burst,
				ExpiresIn: 3 * time.Minute,
			}),
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return c.JSON(http.StatusTooManyRequests, failure("too many requests"))
			},
		}))
	}

	s := &Server{echo: e, factory: factory}

	api := e.Group("/api")
	api.POST("/analyze", s.analyze)
	api.POST("/download", s.download)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on address until Shutdown is called.
func (s *Server) Start(address string) error {
	s.echo.Logger.Infof("listening on %s", address)
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func level(name string) glog.Lvl {
	switch strings.ToLower(name) {
	case "debug", "trace":
		return glog.DEBUG
	case "warn", "warning":
		return glog.WARN
	case "error", "fatal", "panic":
		return glog.ERROR
	default:
		return glog.INFO
	}
}
