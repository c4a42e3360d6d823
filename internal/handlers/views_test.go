package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pm-dashboard/internal/cache"
)

func TestCachedViewSkipsWriteWhenInvalidatedDuringLoad(t *testing.T) {
	views := cache.NewMemory(time.Minute)
	h := &Handler{views: views, logger: zap.NewNop()}
	ctx := context.Background()

	// мутация проходит, пока list view читается из БД
	data, err := h.cachedView(ctx, "/projects", "projects", func(ctx context.Context) (any, error) {
		require.NoError(t, views.Invalidate(ctx, "/projects"))
		return []string{"old"}, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `["old"]`, string(data))

	_, ok := views.Get(ctx, "/projects")
	assert.False(t, ok)

	loads := 0
	load := func(ctx context.Context) (any, error) {
		loads++
		return []string{"new"}, nil
	}
	_, err = h.cachedView(ctx, "/projects", "projects", load)
	require.NoError(t, err)
	data, err = h.cachedView(ctx, "/projects", "projects", load)
	require.NoError(t, err)
	assert.JSONEq(t, `["new"]`, string(data))
	assert.Equal(t, 1, loads)
}
