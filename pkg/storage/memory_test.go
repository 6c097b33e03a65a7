// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMemory(t *testing.T, pageCap int, keys ...string) *MemoryBackend {
	t.Helper()
	m := NewMemoryBackend(pageCap)
	for _, k := range keys {
		m.Put(Object{Key: k, Size: 1, LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	}
	return m
}

func TestMemoryBackendListPage(t *testing.T) {
	t.Parallel()

	m := seedMemory(t, 1000, "b.txt", "a.txt", "logs/x", "logs/y")

	page, err := m.ListPage(context.Background(), "", 10, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "logs/x", "logs/y"}, pageKeys(page))
	assert.Empty(t, page.NextToken)
}

func TestMemoryBackendPrefixFilter(t *testing.T) {
	t.Parallel()

	m := seedMemory(t, 1000, "a.txt", "logs/x", "logs/y")

	page, err := m.ListPage(context.Background(), "logs/", 10, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/x", "logs/y"}, pageKeys(page))
}

func TestMemoryBackendPagination(t *testing.T) {
	t.Parallel()

	m := seedMemory(t, 2, "a", "b", "c", "d", "e")

	var keys []string
	token := ""
	pages := 0
	for {
		page, err := m.ListPage(context.Background(), "", 100, token)
		require.NoError(t, err)
		keys = append(keys, pageKeys(page)...)
		pages++
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)
	assert.Equal(t, 3, pages)
}

func TestMemoryBackendHonorsMaxKeysHint(t *testing.T) {
	t.Parallel()

	m := seedMemory(t, 1000, "a", "b", "c")

	page, err := m.ListPage(context.Background(), "", 2, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pageKeys(page))
	assert.Equal(t, "b", page.NextToken)
}

func pageKeys(p *Page) []string {
	keys := make([]string, 0, len(p.Objects))
	for _, o := range p.Objects {
		keys = append(keys, o.Key)
	}
	return keys
}
