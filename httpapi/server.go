/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/logging"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
)

var logger = logging.GetLogger("httpapi")

// Server exposes a Transport over HTTP. Every engine error is answered with
// an errorResponse carrying its code.
type Server struct {
	transport query.Transport
	cfg       config.Server
	engine    *gin.Engine
	metrics   *metrics
	registry  *prometheus.Registry
	http      *http.Server
}

func NewServer(transport query.Transport, cfg config.Server) *Server {
	s := &Server{
		transport: transport,
		cfg:       cfg,
		engine:    gin.New(),
		registry:  prometheus.NewRegistry(),
	}
	s.metrics = newMetrics(s.registry)

	s.engine.Use(gin.Recovery(), s.metrics.middleware())
	if cfg.Gzip {
		s.engine.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	s.engine.GET(healthRoute, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET(metricsRoute, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{DisableCompression: true})))
	s.engine.POST(prepareRoute, s.prepare)
	s.engine.POST(queryRoute, s.query)
	s.engine.POST(getRoute, s.get)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.http = &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.engine,
	}
	logger.Infof("serving on %s", s.cfg.Address)
	if err := s.http.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func statusOf(code nosqlerr.Code) int {
	switch code {
	case nosqlerr.IllegalArgument:
		return http.StatusBadRequest
	case nosqlerr.TableNotFound:
		return http.StatusNotFound
	case nosqlerr.RequestTimeout:
		return http.StatusGatewayTimeout
	case nosqlerr.MemoryLimitExceeded:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error, op string) {
	err = nosqlerr.FromTransport(err, op)
	code := nosqlerr.CodeOf(err)
	if code == nosqlerr.ServerError || code == nosqlerr.Unknown {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	msg := err.Error()
	if e, ok := nosqlerr.As(err); ok {
		msg = e.Message
		if e.Cause() != nil {
			msg += ": " + e.Cause().Error()
		}
	}
	c.AbortWithStatusJSON(statusOf(code), errorResponse{Code: code.String(), Message: msg})
}

// callContext bounds the engine call by the request timeout.
func callContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (s *Server) prepare(c *gin.Context) {
	var req prepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, nosqlerr.Argument("invalid request body: %v", err), "prepare")
		return
	}
	opts, err := req.Options.options()
	if err != nil {
		s.fail(c, err, "prepare")
		return
	}
	ctx, cancel := callContext(c, opts.Timeout)
	defer cancel()
	res, err := s.transport.Prepare(ctx, &query.PrepareRequest{Statement: req.Statement, Options: opts})
	if err != nil {
		s.fail(c, err, "prepare")
		return
	}
	c.JSON(http.StatusOK, toPrepareResponse(res))
}

func (s *Server) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, nosqlerr.Argument("invalid request body: %v", err), "query")
		return
	}
	opts, err := req.Options.options()
	if err != nil {
		s.fail(c, err, "query")
		return
	}
	ctx, cancel := callContext(c, opts.Timeout)
	defer cancel()
	res, err := s.transport.Query(ctx, &query.QueryRequest{
		Statement: req.Statement,
		Prepared:  req.Prepared,
		Bindings:  req.Bindings,
		Options:   opts,
	})
	if err != nil {
		s.fail(c, err, "query")
		return
	}
	s.metrics.rows.Add(float64(len(res.Rows)))
	c.JSON(http.StatusOK, queryResponse{
		Rows:            res.Rows,
		Capacity:        res.Capacity,
		ContinuationKey: res.ContinuationKey,
	})
}

func (s *Server) get(c *gin.Context) {
	var req getRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, nosqlerr.Argument("invalid request body: %v", err), "get")
		return
	}
	if req.Key == nil {
		s.fail(c, nosqlerr.Argument("primary key can not be empty"), "get")
		return
	}
	consistency, err := query.ParseConsistency(req.Consistency)
	if err != nil {
		s.fail(c, err, "get")
		return
	}
	res, err := s.transport.Get(c.Request.Context(), &query.GetRequest{
		Table:       req.Table,
		Key:         req.Key,
		Consistency: consistency,
		Compartment: req.Compartment,
	})
	if err != nil {
		s.fail(c, err, "get")
		return
	}
	c.JSON(http.StatusOK, getResponse{Row: res.Row, Version: res.Version, Capacity: res.Capacity})
}
