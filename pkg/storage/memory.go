// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryBackend is an in-memory Backend used for local development and
// tests. Keys are listed in lexical order, matching S3 behavior; the
// continuation token is the last key of the previous page.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string]Object

	// pageCap bounds a single page regardless of the caller's hint,
	// mirroring the provider-imposed page size.
	pageCap int
}

// NewMemoryBackend creates an empty in-memory backend with the given page
// cap (0 means 1000).
func NewMemoryBackend(pageCap int) *MemoryBackend {
	if pageCap <= 0 {
		pageCap = 1000
	}
	return &MemoryBackend{
		objects: make(map[string]Object),
		pageCap: pageCap,
	}
}

// Put adds or replaces an object.
func (m *MemoryBackend) Put(obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = obj
}

// ListPage implements Backend.
func (m *MemoryBackend) ListPage(ctx context.Context, prefix string, maxKeys int32, token string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]Object, 0, len(m.objects))
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) && k > token {
			matched = append(matched, obj)
		}
	}
	m.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].Key < matched[j].Key })

	limit := int(maxKeys)
	if limit <= 0 || limit > m.pageCap {
		limit = m.pageCap
	}

	page := &Page{Objects: matched}
	if len(matched) > limit {
		page.Objects = matched[:limit]
		page.NextToken = matched[limit-1].Key
	}

	return page, nil
}
