package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"npk-weather/internal/collector"
	"npk-weather/internal/render"
	"npk-weather/internal/report"
)

const buildTimeout = 30 * time.Second

type ReportBuilder interface {
	Build(ctx context.Context, location string, detailed bool) (*report.Report, error)
}

type Server struct {
	router    *gin.Engine
	server    *http.Server
	builder   ReportBuilder
	resolver  report.LocationResolver
	collector *collector.Collector
	port      int
	logger    *slog.Logger
}

type ServerConfig struct {
	Port     int
	Builder  ReportBuilder
	Resolver report.LocationResolver
	// Collector is optional; it backs /api/v1/status when set.
	Collector *collector.Collector
	Logger    *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	s := &Server{
		router:    router,
		builder:   cfg.Builder,
		resolver:  cfg.Resolver,
		collector: cfg.Collector,
		port:      cfg.Port,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.GET("/report", s.reportTextHandler)
		api.GET("/report/lines", s.reportLinesHandler)
		api.GET("/current", s.currentHandler)
		api.GET("/forecast", s.forecastHandler)
		api.GET("/status", s.statusHandler)
	}
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("api server starting", "port", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	}
	if s.collector != nil {
		resp["collecting"] = s.collector.IsCollecting()
	}
	c.JSON(http.StatusOK, resp)
}

// build answers the request itself on failure and returns nil.
func (s *Server) build(c *gin.Context) *report.Report {
	detailed := false
	if v := c.Query("detailed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'detailed' value"})
			return nil
		}
		detailed = b
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), buildTimeout)
	defer cancel()

	location := strings.TrimSpace(c.Query("location"))
	if location == "" {
		location = s.resolver.Resolve(ctx)
	}

	rep, err := s.builder.Build(ctx, location, detailed)
	if err != nil {
		s.logger.Error("report failed", "location", location, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil
	}
	return rep
}

func (s *Server) reportTextHandler(c *gin.Context) {
	rep := s.build(c)
	if rep == nil {
		return
	}
	c.String(http.StatusOK, render.Text(rep.Lines))
}

func (s *Server) reportLinesHandler(c *gin.Context) {
	rep := s.build(c)
	if rep == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location":  rep.Location,
		"provider":  rep.Provider,
		"generated": rep.Generated,
		"lines":     rep.Lines,
	})
}

func (s *Server) currentHandler(c *gin.Context) {
	rep := s.build(c)
	if rep == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location":            rep.Location,
		"current":             rep.Current,
		"device_pressure_hpa": rep.DevicePressure,
	})
}

func (s *Server) forecastHandler(c *gin.Context) {
	rep := s.build(c)
	if rep == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"location": rep.Location,
		"forecast": rep.Forecast,
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	var rep *report.Report
	if s.collector != nil {
		rep = s.collector.GetLatest()
	}
	if rep == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No data available yet",
		})
		return
	}
	c.JSON(http.StatusOK, rep)
}
