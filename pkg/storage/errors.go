// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import "errors"

// Backend failure kinds. Every error returned by a Backend wraps exactly one
// of these, so callers can classify with errors.Is without knowing the SDK.
var (
	// ErrNotFound indicates the bucket (key space) does not exist.
	ErrNotFound = errors.New("storage: bucket not found")

	// ErrAccessDenied indicates the backend rejected the caller's credentials
	// or permissions.
	ErrAccessDenied = errors.New("storage: access denied")

	// ErrUnavailable indicates the backend could not be reached or failed in
	// an unrecognized way. Unknown failures map here so internal detail never
	// leaks to callers.
	ErrUnavailable = errors.New("storage: backend unavailable")
)
