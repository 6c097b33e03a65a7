// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

// Package listing contains the request-parsing and pagination logic for the
// bucket-listing operation.
package listing

import (
	"fmt"
	"strconv"
)

// DefaultMaxKeys is used when the caller does not send max_keys. It matches
// the provider page cap so a default request needs a single backend call.
const DefaultMaxKeys = 1000

// Query is a validated listing request.
type Query struct {
	// Prefix restricts listed keys to those starting with it. Empty matches
	// all keys.
	Prefix string

	// MaxKeys caps the number of entries returned. Always > 0 after parsing.
	MaxKeys int
}

// ValidationError reports a malformed query parameter. It names the
// offending parameter and value so callers can fix the request.
type ValidationError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Param, e.Value, e.Reason)
}

// ParseQuery validates and normalizes raw query-string parameters.
// Deterministic and side-effect free: the same input always yields the same
// Query or the same error.
func ParseQuery(params map[string]string) (Query, error) {
	q := Query{
		Prefix:  params["prefix"],
		MaxKeys: DefaultMaxKeys,
	}

	if raw, ok := params["max_keys"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, &ValidationError{
				Param:  "max_keys",
				Value:  raw,
				Reason: "must be a decimal integer",
			}
		}
		if n <= 0 {
			return Query{}, &ValidationError{
				Param:  "max_keys",
				Value:  raw,
				Reason: "must be greater than zero",
			}
		}
		q.MaxKeys = n
	}

	return q, nil
}
