// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

// Package api turns listing results and failures into gateway-shaped HTTP
// responses, and serves them over plain HTTP or the function platform.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shelf-labs/bucketd/pkg/listing"
	"github.com/shelf-labs/bucketd/pkg/logger"
	"github.com/shelf-labs/bucketd/pkg/storage"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ListServer handles the /list-bucket operation. Stateless per invocation;
// the only shared state is the injected backend and the metric vectors.
type ListServer struct {
	engine *listing.Engine

	metricsRequests        *prometheus.CounterVec
	metricsRequestDuration *prometheus.HistogramVec
}

// NewListServer creates the server and registers its metrics. Pass nil to
// skip metric registration (tests).
func NewListServer(backend storage.Backend, reg prometheus.Registerer) *ListServer {
	s := &ListServer{
		engine: listing.NewEngine(backend),
		metricsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucketd_requests_total",
			Help: "Number of list-bucket requests handled",
		}, []string{"status_code"}),
		metricsRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bucketd_request_duration_seconds",
			Help:    "Duration of list-bucket requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"status_code"}),
	}
	if reg != nil {
		reg.MustRegister(s.metricsRequests, s.metricsRequestDuration)
	}
	return s
}

// Register mounts the server's routes on the given mux.
func (s *ListServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("/list-bucket", s.handleListBucket)
}

// Invoke runs one listing invocation: parse, list, respond. This is the
// shared entry point for both the HTTP server and the function platform, and
// the single boundary where failures become responses.
func (s *ListServer) Invoke(ctx context.Context, params map[string]string) Response {
	start := time.Now()

	var resp Response
	q, err := listing.ParseQuery(params)
	if err != nil {
		resp = errorResponse(err)
	} else if res, lerr := s.engine.List(ctx, q); lerr != nil {
		resp = errorResponse(lerr)
	} else {
		resp = successResponse(q, res)
		logger.Ctx(ctx).Info().
			Str("prefix", q.Prefix).
			Int("count", len(res.Entries)).
			Bool("truncated", res.Truncated).
			Str("total_size", humanize.Bytes(uint64(res.TotalSize))).
			Msg("listed bucket")
	}

	status := strconv.Itoa(resp.StatusCode)
	s.metricsRequests.WithLabelValues(status).Inc()
	s.metricsRequestDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	return resp
}

// HandleAPIGateway adapts Invoke to the gateway proxy integration.
func (s *ListServer) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	reqLogger := logger.Ctx(ctx).With().Str("request_id", requestID).Logger()
	ctx = logger.WithLogger(ctx, &reqLogger)

	return s.Invoke(ctx, req.QueryStringParameters).APIGateway(), nil
}

func (s *ListServer) handleListBucket(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	reqLogger := logger.Ctx(r.Context()).With().
		Str("request_id", requestID).
		Str("remote_addr", r.RemoteAddr).
		Logger()
	ctx := logger.WithLogger(r.Context(), &reqLogger)

	w.Header().Set("X-Request-Id", requestID)

	switch r.Method {
	case http.MethodOptions:
		// Browser preflight; body-less.
		for k, v := range corsHeaders() {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		newResponse(http.StatusMethodNotAllowed, errorBody{
			Error:   "MethodNotAllowed",
			Message: "only GET is supported",
		}).Write(w)
		return
	}

	params := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	s.Invoke(ctx, params).Write(w)
}
