// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage abstracts the paginated bucket-listing capability of an
// object store behind a single narrow interface, so the listing engine never
// touches a concrete SDK.
package storage

import (
	"context"
	"time"
)

// Object is one entry returned by a listing page. Produced only by the
// backend; never mutated afterward.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Page is one bounded page of a listing. An empty NextToken signals the
// final page.
type Page struct {
	Objects   []Object
	NextToken string
}

// Backend is the listing capability the engine depends on.
type Backend interface {
	// ListPage returns at most maxKeys objects under prefix, resuming from
	// token. The token is opaque to callers; pass the NextToken of the
	// previous page, or "" for the first page.
	ListPage(ctx context.Context, prefix string, maxKeys int32, token string) (*Page, error)
}
