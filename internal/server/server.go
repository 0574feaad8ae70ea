// Package server exposes status check runs over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amartya2002/status-checker/report"
	"github.com/amartya2002/status-checker/statuscheck"
)

// Publisher receives the records of every finished run.
type Publisher interface {
	Publish(ctx context.Context, runID string, records []report.Record) error
}

// CheckRequest is the body of POST /checks. Zero or omitted tuning fields
// fall back to the server's configuration; the upper bounds cap what a single
// request can make the server spend.
type CheckRequest struct {
	URLs           []string `json:"urls" binding:"required,min=1"`
	Workers        int      `json:"workers,omitempty" binding:"gte=0,lte=1024"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" binding:"gte=0,lte=3600"`
	MaxRetries     *int     `json:"max_retries,omitempty" binding:"omitempty,gte=0,lte=100"`
}

type Run struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Total     int             `json:"total"`
	OK        int             `json:"ok"`
	Failed    int             `json:"failed"`
	Records   []report.Record `json:"records"`
}

type Server struct {
	engine    *gin.Engine
	logger    *zap.Logger
	baseOpts  []statuscheck.Option
	publisher Publisher
	retention int

	mu    sync.Mutex
	runs  map[string]Run
	order []string
}

// New builds the router. baseOpts apply to every run before the per-request
// overrides; retention caps how many past runs are kept in memory.
func New(logger *zap.Logger, retention int, publisher Publisher, baseOpts ...statuscheck.Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 100
	}
	s := &Server{
		engine:    gin.New(),
		logger:    logger,
		baseOpts:  baseOpts,
		publisher: publisher,
		retention: retention,
		runs:      make(map[string]Run),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until it fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("Server running", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	s.engine.POST("/checks", s.createCheck)
	s.engine.GET("/checks", s.listChecks)
	s.engine.GET("/checks/:id", s.getCheck)
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (s *Server) createCheck(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, u := range req.URLs {
		if strings.TrimSpace(u) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "urls must not contain blank entries"})
			return
		}
	}

	opts := append([]statuscheck.Option(nil), s.baseOpts...)
	opts = append(opts,
		statuscheck.WithWorkers(req.Workers),
		statuscheck.WithTimeout(time.Duration(req.TimeoutSeconds)*time.Second),
	)
	if req.MaxRetries != nil {
		opts = append(opts, statuscheck.WithMaxRetries(*req.MaxRetries))
	}
	checker := statuscheck.New(opts...)
	defer checker.Close()

	started := time.Now()
	results, err := checker.Run(c.Request.Context(), req.URLs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sum := statuscheck.Summarize(results)
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: started,
		ElapsedMS: time.Since(started).Milliseconds(),
		Total:     sum.Total,
		OK:        sum.OK,
		Failed:    sum.Failed,
		Records:   report.FromResults(results),
	}
	s.saveRun(run)

	if s.publisher != nil {
		if err := s.publisher.Publish(c.Request.Context(), run.ID, run.Records); err != nil {
			s.logger.Warn("Publishing results failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, run)
}

func (s *Server) getCheck(c *gin.Context) {
	run, ok := s.lookupRun(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No run found with that id"})
		return
	}
	c.JSON(http.StatusOK, run)
}

type runSummary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Total     int       `json:"total"`
	Failed    int       `json:"failed"`
}

func (s *Server) listChecks(c *gin.Context) {
	s.mu.Lock()
	out := make([]runSummary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.runs[s.order[i]]
		out = append(out, runSummary{ID: r.ID, StartedAt: r.StartedAt, Total: r.Total, Failed: r.Failed})
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func (s *Server) saveRun(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	if len(s.order) > s.retention {
		drop := s.order[:len(s.order)-s.retention]
		for _, id := range drop {
			delete(s.runs, id)
		}
		s.order = append([]string(nil), s.order[len(s.order)-s.retention:]...)
	}
}

func (s *Server) lookupRun(id string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
