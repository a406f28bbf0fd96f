package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdesk/internal/domain"
	"ragdesk/internal/notify"
)

func TestCatalogAutoSelectsFirstModel(t *testing.T) {
	lister := &fakeLister{models: []string{"local-llm", "gpt-4o"}}
	cat := NewModelCatalog(lister, nil, nil, time.Minute)
	assert.True(t, cat.Loading())
	assert.Empty(t, cat.Selected())

	require.NoError(t, cat.Load(context.Background()))

	assert.False(t, cat.Loading())
	assert.Equal(t, []string{"local-llm", "gpt-4o"}, cat.Models())
	assert.Equal(t, "local-llm", cat.Selected())
}

func TestCatalogKeepsSelectionAcrossReloads(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{models: []string{"a", "b"}}
	cat := NewModelCatalog(lister, nil, nil, 0)
	require.NoError(t, cat.Load(ctx))
	require.NoError(t, cat.Select("b"))

	require.NoError(t, cat.Load(ctx))
	assert.Equal(t, "b", cat.Selected())
}

func TestCatalogCache(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{models: []string{"a"}}
	cat := NewModelCatalog(lister, nil, nil, time.Minute)

	require.NoError(t, cat.Load(ctx))
	lister.models = []string{"a", "b"}
	require.NoError(t, cat.Load(ctx))
	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, []string{"a"}, cat.Models())

	require.NoError(t, cat.Refresh(ctx))
	assert.Equal(t, 2, lister.calls)
	assert.Equal(t, []string{"a", "b"}, cat.Models())
}

func TestCatalogWithoutCacheAlwaysFetches(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{models: []string{"a"}}
	cat := NewModelCatalog(lister, nil, nil, 0)
	require.NoError(t, cat.Load(ctx))
	require.NoError(t, cat.Load(ctx))
	assert.Equal(t, 2, lister.calls)
}

func TestCatalogFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "backend detail",
			err:  &domain.BackendError{Op: "list models", Status: 500, Detail: "ollama unreachable"},
			want: "Error fetching models: ollama unreachable",
		},
		{
			name: "network",
			err:  &domain.NetworkError{Op: "list models", Err: errors.New("connection refused")},
			want: "Error fetching models: connection refused",
		},
		{
			name: "backend without detail",
			err:  &domain.BackendError{Op: "list models", Status: 502},
			want: "Error fetching models: Failed to fetch models from server",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rec := &notify.Recorder{}
			lister := &fakeLister{models: []string{"a"}}
			cat := NewModelCatalog(lister, rec, nil, time.Minute)
			require.NoError(t, cat.Load(ctx))

			lister.err = tt.err
			require.Error(t, cat.Refresh(ctx))

			assert.Empty(t, cat.Models())
			assert.False(t, cat.Loading())
			assert.Equal(t, []string{tt.want}, rec.Messages(domain.LevelError))

			lister.err = nil
			require.NoError(t, cat.Load(ctx))
			assert.Equal(t, 3, lister.calls, "failure evicts the cached list")
		})
	}
}

func TestCatalogSelectAndCycle(t *testing.T) {
	cat := NewModelCatalog(&fakeLister{models: []string{"a", "b", "c"}}, nil, nil, 0)
	cat.Cycle()
	assert.Empty(t, cat.Selected())

	require.NoError(t, cat.Load(context.Background()))

	var ve *domain.ValidationError
	assert.ErrorAs(t, cat.Select("z"), &ve)
	assert.Equal(t, "a", cat.Selected())

	cat.Cycle()
	assert.Equal(t, "b", cat.Selected())
	cat.Cycle()
	cat.Cycle()
	assert.Equal(t, "a", cat.Selected())
}
