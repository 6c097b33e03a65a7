// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"context"
	"fmt"

	"github.com/shelf-labs/bucketd/pkg/logger"
	"github.com/shelf-labs/bucketd/pkg/storage"
)

// providerPageCap is the largest page the backend will return per call.
const providerPageCap = 1000

// Result is the aggregated outcome of one listing. Entries keep the backend
// return order.
type Result struct {
	Entries   []storage.Object
	Truncated bool

	// TotalSize is the cumulative byte size of Entries. Logged, not part of
	// the response body.
	TotalSize int64
}

// Engine drives the pagination loop against a storage backend. Stateless;
// safe for concurrent use.
type Engine struct {
	backend storage.Backend
}

func NewEngine(backend storage.Backend) *Engine {
	return &Engine{backend: backend}
}

// List accumulates pages until the backend is drained or the query's MaxKeys
// is reached. The first backend failure aborts the whole operation; no
// partial results, no retries.
func (e *Engine) List(ctx context.Context, q Query) (*Result, error) {
	maxKeys := q.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}

	res := &Result{Entries: []storage.Object{}}
	token := ""

	// A well-behaved backend advances by at least one key per page, so
	// maxKeys pages is the most a converging listing can take. Exceeding the
	// bound means the collaborator is paginating without progress; fail
	// closed instead of looping until the platform timeout.
	for page := 0; page < maxKeys; page++ {
		hint := maxKeys - len(res.Entries)
		if hint > providerPageCap {
			hint = providerPageCap
		}

		p, err := e.backend.ListPage(ctx, q.Prefix, int32(hint), token)
		if err != nil {
			return nil, err
		}

		pageCut := false
		for _, obj := range p.Objects {
			if len(res.Entries) == maxKeys {
				pageCut = true
				break
			}
			res.Entries = append(res.Entries, obj)
			res.TotalSize += obj.Size
		}

		if len(res.Entries) == maxKeys && (pageCut || p.NextToken != "") {
			res.Truncated = true
			return res, nil
		}
		if p.NextToken == "" {
			return res, nil
		}
		token = p.NextToken
	}

	logger.Ctx(ctx).Error().
		Str("prefix", q.Prefix).
		Int("max_keys", maxKeys).
		Msg("pagination did not converge within page bound")
	return nil, fmt.Errorf("listing exceeded %d pages: %w", maxKeys, storage.ErrUnavailable)
}
