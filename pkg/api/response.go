// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shelf-labs/bucketd/pkg/listing"
	"github.com/shelf-labs/bucketd/pkg/logger"
	"github.com/shelf-labs/bucketd/pkg/storage"

	"github.com/aws/aws-lambda-go/events"
	"github.com/getsentry/sentry-go"
)

// Response is the gateway-shaped result of one invocation: constructed once,
// never mutated afterward.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

type keyEntry struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

type successBody struct {
	Keys      []keyEntry `json:"keys"`
	Count     int        `json:"count"`
	Truncated bool       `json:"truncated"`
	Prefix    string     `json:"prefix"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// corsHeaders makes the endpoint browser-callable without a separate
// preflight component.
func corsHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
	}
}

func newResponse(statusCode int, body any) Response {
	data, err := json.Marshal(body)
	if err != nil {
		// Bodies are plain structs of strings/ints/bools; marshalling them
		// cannot fail. Guard anyway so the caller always gets valid JSON.
		logger.Error().Err(err).Msg("failed to marshal response body")
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    corsHeaders(),
			Body:       `{"error":"InternalError","message":"unexpected failure"}`,
		}
	}
	return Response{
		StatusCode: statusCode,
		Headers:    corsHeaders(),
		Body:       string(data),
	}
}

// successResponse renders a listing result. Keys keep engine order;
// last_modified is RFC 3339 UTC.
func successResponse(q listing.Query, res *listing.Result) Response {
	keys := make([]keyEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		keys = append(keys, keyEntry{
			Key:          e.Key,
			Size:         e.Size,
			LastModified: e.LastModified.UTC().Format(time.RFC3339),
		})
	}
	return newResponse(http.StatusOK, successBody{
		Keys:      keys,
		Count:     len(keys),
		Truncated: res.Truncated,
		Prefix:    q.Prefix,
	})
}

// errorResponse is the single catch point for every failure raised by the
// parser or the engine. Uncategorized failures become a fixed InternalError
// body; raw error text is never echoed to callers.
func errorResponse(err error) Response {
	var vErr *listing.ValidationError
	if errors.As(err, &vErr) {
		return newResponse(http.StatusBadRequest, errorBody{
			Error:   "ValidationError",
			Message: vErr.Error(),
		})
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return newResponse(http.StatusNotFound, errorBody{
			Error:   "NotFound",
			Message: "the specified bucket does not exist",
		})
	case errors.Is(err, storage.ErrAccessDenied):
		return newResponse(http.StatusForbidden, errorBody{
			Error:   "AccessDenied",
			Message: "insufficient permissions to access the bucket",
		})
	case errors.Is(err, storage.ErrUnavailable):
		return newResponse(http.StatusBadGateway, errorBody{
			Error:   "BackendUnavailable",
			Message: "the storage backend could not be reached",
		})
	}

	logger.Error().Err(err).Msg("unexpected failure")
	sentry.CaptureException(err)
	return newResponse(http.StatusInternalServerError, errorBody{
		Error:   "InternalError",
		Message: "unexpected failure",
	})
}

// Write renders the response onto a standard HTTP response writer.
func (r Response) Write(w http.ResponseWriter) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(r.StatusCode)
	if r.Body != "" {
		w.Write([]byte(r.Body))
	}
}

// APIGateway converts the response to the proxy-integration shape expected
// by the invocation platform.
func (r Response) APIGateway() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
	}
}
