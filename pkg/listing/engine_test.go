// Copyright 2025 Bucketd Authors
// SPDX-License-Identifier: Apache-2.0

package listing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shelf-labs/bucketd/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageCall records one ListPage invocation for assertions.
type pageCall struct {
	prefix  string
	maxKeys int32
	token   string
}

// fakeBackend serves a scripted sequence of pages. A non-nil err fails the
// call whose 1-based index equals errOnCall.
type fakeBackend struct {
	pages     []storage.Page
	err       error
	errOnCall int

	calls []pageCall
}

func (f *fakeBackend) ListPage(ctx context.Context, prefix string, maxKeys int32, token string) (*storage.Page, error) {
	f.calls = append(f.calls, pageCall{prefix: prefix, maxKeys: maxKeys, token: token})
	n := len(f.calls)
	if f.err != nil && n == f.errOnCall {
		return nil, f.err
	}
	if n > len(f.pages) {
		return &storage.Page{}, nil
	}
	page := f.pages[n-1]
	return &page, nil
}

func objects(keys ...string) []storage.Object {
	objs := make([]storage.Object, 0, len(keys))
	for i, k := range keys {
		objs = append(objs, storage.Object{
			Key:          k,
			Size:         int64(100 * (i + 1)),
			LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	return objs
}

func TestEngineList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		backend       *fakeBackend
		query         Query
		wantKeys      []string
		wantTruncated bool
		wantCalls     int
	}{
		{
			name:      "empty bucket",
			backend:   &fakeBackend{pages: []storage.Page{{}}},
			query:     Query{MaxKeys: 10},
			wantKeys:  []string{},
			wantCalls: 1,
		},
		{
			name: "single page drained",
			backend: &fakeBackend{pages: []storage.Page{
				{Objects: objects("a.txt", "b.txt")},
			}},
			query:     Query{MaxKeys: 10},
			wantKeys:  []string{"a.txt", "b.txt"},
			wantCalls: 1,
		},
		{
			name: "three pages of two with max five",
			backend: &fakeBackend{pages: []storage.Page{
				{Objects: objects("a", "b"), NextToken: "t1"},
				{Objects: objects("c", "d"), NextToken: "t2"},
				{Objects: objects("e", "f"), NextToken: "t3"},
			}},
			query:         Query{MaxKeys: 5},
			wantKeys:      []string{"a", "b", "c", "d", "e"},
			wantTruncated: true,
			wantCalls:     3,
		},
		{
			name: "max reached exactly with more pages pending",
			backend: &fakeBackend{pages: []storage.Page{
				{Objects: objects("a", "b"), NextToken: "t1"},
				{Objects: objects("c", "d"), NextToken: "t2"},
			}},
			query:         Query{MaxKeys: 4},
			wantKeys:      []string{"a", "b", "c", "d"},
			wantTruncated: true,
			wantCalls:     2,
		},
		{
			name: "max reached exactly on final page",
			backend: &fakeBackend{pages: []storage.Page{
				{Objects: objects("a", "b"), NextToken: "t1"},
				{Objects: objects("c", "d")},
			}},
			query:         Query{MaxKeys: 4},
			wantKeys:      []string{"a", "b", "c", "d"},
			wantTruncated: false,
			wantCalls:     2,
		},
		{
			name: "multiple pages drained below max",
			backend: &fakeBackend{pages: []storage.Page{
				{Objects: objects("a", "b"), NextToken: "t1"},
				{Objects: objects("c")},
			}},
			query:     Query{MaxKeys: 10},
			wantKeys:  []string{"a", "b", "c"},
			wantCalls: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine := NewEngine(tc.backend)
			res, err := engine.List(context.Background(), tc.query)
			require.NoError(t, err)

			keys := make([]string, 0, len(res.Entries))
			var total int64
			for _, e := range res.Entries {
				keys = append(keys, e.Key)
				total += e.Size
			}
			assert.Equal(t, tc.wantKeys, keys)
			assert.Equal(t, tc.wantTruncated, res.Truncated)
			assert.Equal(t, total, res.TotalSize)
			assert.Len(t, tc.backend.calls, tc.wantCalls)
		})
	}
}

func TestEngineListEntriesKeepBackendOrder(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{pages: []storage.Page{
		{Objects: objects("zebra", "apple", "mango")},
	}}
	res, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 10})
	require.NoError(t, err)
	assert.Equal(t, "zebra", res.Entries[0].Key)
	assert.Equal(t, "apple", res.Entries[1].Key)
	assert.Equal(t, "mango", res.Entries[2].Key)
}

func TestEngineListPrefixDelegatedToBackend(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{pages: []storage.Page{
		{Objects: objects("logs/a", "logs/b")},
	}}
	res, err := NewEngine(backend).List(context.Background(), Query{Prefix: "logs/", MaxKeys: 10})
	require.NoError(t, err)

	// No client-side filtering: whatever the backend returns is kept.
	assert.Len(t, res.Entries, 2)
	require.Len(t, backend.calls, 1)
	assert.Equal(t, "logs/", backend.calls[0].prefix)
}

func TestEngineListPageSizeHint(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{pages: []storage.Page{
		{Objects: objects("a", "b", "c"), NextToken: "t1"},
		{Objects: objects("d")},
	}}
	_, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 2500})
	require.NoError(t, err)

	require.Len(t, backend.calls, 2)
	// First page is capped at the provider page size, the second asks only
	// for the remainder.
	assert.Equal(t, int32(1000), backend.calls[0].maxKeys)
	assert.Equal(t, int32(2497), backend.calls[1].maxKeys)
	assert.Equal(t, "t1", backend.calls[1].token)
}

func TestEngineListBackendFailureAborts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"access denied", fmt.Errorf("list bucket b: %w", storage.ErrAccessDenied), storage.ErrAccessDenied},
		{"not found", fmt.Errorf("list bucket b: %w", storage.ErrNotFound), storage.ErrNotFound},
		{"unavailable", fmt.Errorf("list bucket b: %w", storage.ErrUnavailable), storage.ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			backend := &fakeBackend{err: tc.err, errOnCall: 1}
			res, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 10})
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, res)
			// No further pages requested after the failure.
			assert.Len(t, backend.calls, 1)
		})
	}
}

func TestEngineListFailureOnLaterPageDropsPartialResult(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{
		pages: []storage.Page{
			{Objects: objects("a", "b"), NextToken: "t1"},
		},
		err:       fmt.Errorf("list bucket b: %w", storage.ErrUnavailable),
		errOnCall: 2,
	}
	res, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 10})
	require.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Nil(t, res)
}

// loopingBackend always returns a token and never makes progress.
type loopingBackend struct {
	calls int
}

func (l *loopingBackend) ListPage(ctx context.Context, prefix string, maxKeys int32, token string) (*storage.Page, error) {
	l.calls++
	return &storage.Page{NextToken: "again"}, nil
}

func TestEngineListTerminatesOnPathologicalPagination(t *testing.T) {
	t.Parallel()

	backend := &loopingBackend{}
	res, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 50})
	require.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Nil(t, res)
	assert.Equal(t, 50, backend.calls)
}

func TestEngineListAgainstMemoryBackend(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend(2) // force small pages
	for _, o := range objects("a", "b", "c", "d", "e", "f") {
		backend.Put(o)
	}

	res, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 5})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 5)
	assert.True(t, res.Truncated)

	// Idempotent against unchanged state.
	again, err := NewEngine(backend).List(context.Background(), Query{MaxKeys: 5})
	require.NoError(t, err)
	assert.Equal(t, res.Entries, again.Entries)
	assert.Equal(t, res.Truncated, again.Truncated)
}
