package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/vegasq/minisql/internal/metrics"
	"github.com/vegasq/minisql/internal/query"
	"github.com/vegasq/minisql/internal/reader"
)

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	RequestID string          `json:"request_id"`
	Table     string          `json:"table"`
	Columns   []string        `json:"columns"`
	Rows      []*query.Record `json:"rows"`
	Count     int             `json:"count"`
}

type tableResponse struct {
	Name    string              `json:"name"`
	Columns []string            `json:"columns"`
	Rows    int                 `json:"rows"`
	Schema  []reader.ColumnInfo `json:"schema"`
}

type result struct {
	rows []*query.Record
	err  error
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTable(c *gin.Context) {
	c.JSON(http.StatusOK, tableResponse{
		Name:    s.table.Name,
		Columns: s.table.Columns,
		Rows:    s.table.Len(),
		Schema:  s.table.Schema(),
	})
}

func (s *Server) handleQuery(c *gin.Context) {
	id := requestID(c)
	if id == "" {
		id = uuid.NewString()
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, id, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	done := make(chan result, 1)
	start := time.Now()
	err := s.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("query panicked: %v", r)}
			}
		}()
		rows, err := s.execute(req.Query)
		done <- result{rows: rows, err: err}
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) {
			metrics.QueriesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			s.fail(c, id, http.StatusServiceUnavailable, errors.New("server busy, retry later"))
			return
		}
		s.fail(c, id, http.StatusInternalServerError, err)
		return
	}

	var res result
	select {
	case res = <-done:
	case <-c.Request.Context().Done():
		s.logger.Info("client went away", "request_id", id)
		return
	}

	elapsed := time.Since(start)
	metrics.ObserveQuery(res.err, elapsed, len(res.rows))

	if res.err != nil {
		if query.IsUserError(res.err) {
			s.logger.Debug("query rejected", "request_id", id, "query", req.Query, "error", res.err)
		} else {
			s.logger.Error("query failed", "request_id", id, "query", req.Query, "error", res.err)
		}
		s.fail(c, id, StatusFor(res.err), res.err)
		return
	}
	s.logger.Debug("query executed", "request_id", id, "rows", len(res.rows), "elapsed", elapsed)

	columns := query.GetColumnNames(res.rows)
	if columns == nil {
		columns = []string{}
	}
	rows := res.rows
	if rows == nil {
		rows = []*query.Record{}
	}
	c.JSON(http.StatusOK, queryResponse{
		RequestID: id,
		Table:     s.table.Name,
		Columns:   columns,
		Rows:      rows,
		Count:     len(rows),
	})
}

func (s *Server) execute(text string) ([]*query.Record, error) {
	q, err := s.parse(text)
	if err != nil {
		return nil, err
	}
	return s.table.Execute(q)
}

func (s *Server) fail(c *gin.Context, id string, status int, err error) {
	c.JSON(status, gin.H{
		"request_id": id,
		"error":      err.Error(),
	})
}

// StatusFor maps a parse or execution error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrEmptyQuery), errors.Is(err, query.ErrSyntax):
		return http.StatusBadRequest
	case errors.Is(err, query.ErrUnknownTable):
		return http.StatusNotFound
	case errors.Is(err, query.ErrUnknownColumn),
		errors.Is(err, query.ErrUnsupportedAggregation),
		errors.Is(err, query.ErrTypeMismatch):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
