// Package httpapi exposes Index Store queries and NZB assembly over HTTP,
// for callers that would rather poll a REST endpoint than shell out to the
// CLI. Started by the serve command when [http] enabled = true.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// Server implements driving.HTTPServer over the query and NZB assembly
// ports.
type Server struct {
	cfg       domain.HTTPConfig
	query     driving.IndexQueryService
	assembler driving.NZBAssembler
	sink      driven.NZBSink

	engine *gin.Engine
}

// NewServer wires a gin engine with the /articles, /nzb, and /health
// routes against the given ports.
func NewServer(cfg domain.HTTPConfig, query driving.IndexQueryService, assembler driving.NZBAssembler, sink driven.NZBSink) *Server {
	s := &Server{cfg: cfg, query: query, assembler: assembler, sink: sink}

	engine := gin.Default()
	engine.GET("/health", s.handleHealth)
	engine.GET("/articles", s.handleArticles)
	engine.POST("/nzb", s.handleNZB)
	s.engine = engine

	return s
}

// Start runs the HTTP listener on cfg.Addr, shutting down gracefully when
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleArticles(c *gin.Context) {
	filter := domain.Filter{
		GroupName:   c.Query("group"),
		SubjectLike: c.Query("subject_like"),
		FromLike:    c.Query("from_like"),
	}
	if filter.GroupName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group is required"})
		return
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		filter.Limit = limit
	}

	rows, err := s.query.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

type nzbRequest struct {
	Group               string `json:"group" binding:"required"`
	SubjectLike         string `json:"subject_like"`
	FromLike            string `json:"from_like"`
	RequireCompleteSets bool   `json:"require_complete_sets"`
	GroupByCollection   bool   `json:"group_by_collection"`
}

func (s *Server) handleNZB(c *gin.Context) {
	var req nzbRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := domain.Filter{
		GroupName:   req.Group,
		SubjectLike: req.SubjectLike,
		FromLike:    req.FromLike,
	}

	rows, err := s.query.Query(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	docs, err := s.assembler.Assemble(c.Request.Context(), rows, domain.NZBConfig{
		RequireCompleteSets: req.RequireCompleteSets,
		GroupByCollection:   req.GroupByCollection,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	locations := make([]string, 0, len(docs))
	for _, doc := range docs {
		loc, err := s.sink.Write(c.Request.Context(), doc.Filename, doc.XML)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("writing %s: %v", doc.Filename, err)})
			return
		}
		locations = append(locations, loc)
	}

	c.JSON(http.StatusOK, gin.H{"written": locations, "count": len(locations)})
}
