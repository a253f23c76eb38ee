// Package api serves measurements, smoothing and curve comparison over
// HTTP with gin.
package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/internal/config"
	"github.com/cwbudde/algo-fresp/measure/response"
)

// Server holds the collaborators of the HTTP handlers.
type Server struct {
	backend  duplex.Backend
	measurer *response.Measurer
	defaults *config.Config
	log      logrus.FieldLogger
}

// NewServer creates a Server measuring on backend. defaults fill every
// field a request leaves out. A nil log discards messages.
func NewServer(backend duplex.Backend, defaults *config.Config, log logrus.FieldLogger) *Server {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Server{
		backend:  backend,
		measurer: response.NewMeasurer(backend, response.WithLogger(log)),
		defaults: defaults,
		log:      log,
	}
}

// Router returns the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	v1.GET("/devices", s.devices)
	v1.POST("/measure", s.measure)
	v1.POST("/smooth", s.smooth)
	v1.POST("/compare", s.compare)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}
