// Package api provides the REST API server for svsbridge
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/svsbridge/pkg/config"
	"github.com/james-see/svsbridge/pkg/converter"
	"github.com/james-see/svsbridge/pkg/converter/formats"
	"github.com/james-see/svsbridge/pkg/metrics"
	"github.com/james-see/svsbridge/pkg/sparse"
)

// @title svsbridge API
// @version 1.0
// @description API for converting and merging singing voice synthesis projects
// @host localhost:8080
// @BasePath /api/v1

// Server holds what the handlers share
type Server struct {
	cfg     config.Config
	conv    *converter.Converter
	metrics *metrics.SentryMetrics
}

// NewServer creates a Server. A nil converter gets the built-in formats
// configured from cfg.
func NewServer(cfg config.Config, conv *converter.Converter, m *metrics.SentryMetrics) *Server {
	if conv == nil {
		conv = converter.New(formats.NewMIDI(cfg.MIDIOptions()), formats.NewYAML())
	}
	if m == nil {
		m = metrics.NewSentryMetrics(false)
	}
	return &Server{cfg: cfg, conv: conv, metrics: m}
}

// StartServer starts the API server on the configured port
func StartServer(cfg config.Config) error {
	m := metrics.NewSentryMetrics(cfg.SentryDSN != "")
	return NewServer(cfg, nil, m).Router().Run(fmt.Sprintf(":%d", cfg.Port))
}

// Router builds the gin engine with every route
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", s.listFormats)
		v1.GET("/engines", listEngines)
		v1.POST("/convert", s.handleConvert)
		v1.POST("/merge", s.handleMerge)
		v1.POST("/timing", handleTiming)
		v1.POST("/pitch/:engine/decode", s.handlePitchDecode)
		v1.POST("/pitch/:engine/encode", s.handlePitchEncode)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// errorStatus maps an error to its HTTP status and user-facing message
func errorStatus(err error) (int, string) {
	switch {
	case ftag.Get(err) == ftag.InvalidArgument:
		msg := fmsg.GetIssue(err)
		if msg == "" {
			msg = err.Error()
		}
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, converter.ErrUnsupportedFormat):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func abortWithError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	c.JSON(status, gin.H{"error": msg})
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "svsbridge",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the registered file formats and conversion paths
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func (s *Server) listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     s.conv.Formats(),
		"conversions": s.conv.SupportedConversions(),
	})
}

// listEngines godoc
// @Summary List sparse pitch engines
// @Description Returns the engines accepted by the pitch endpoints
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]map[string]any
// @Router /api/v1/engines [get]
func listEngines(c *gin.Context) {
	engines := make([]gin.H, 0, len(sparse.Engines))
	for _, e := range sparse.Engines {
		engines = append(engines, gin.H{
			"name":                 e.Name,
			"tempo_ticks_per_beat": e.TempoTicksPerBeat,
			"frames_per_second":    e.FramesPerSecond,
		})
	}
	c.JSON(http.StatusOK, gin.H{"engines": engines})
}
