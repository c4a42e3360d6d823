package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"pm-dashboard/internal/cache"
	"pm-dashboard/internal/metrics"
)

// cachedView: JSON view из кэша, при промахе собирается через load.
// label идёт в метрики, чтобы detail view не плодили серию на каждый id.
func (h *Handler) cachedView(ctx context.Context, view, label string, load func(ctx context.Context) (any, error)) (json.RawMessage, error) {
	if data, ok := h.views.Get(ctx, view); ok {
		metrics.RecordCacheLookup(label, true)
		return data, nil
	}
	metrics.RecordCacheLookup(label, false)

	// поколение снимаем до чтения из БД, иначе мутация посреди load
	// оставит в кэше старые данные
	version, verr := h.views.Version(ctx, view)

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		h.logger.Warn("view cache version read failed", zap.String("view", view), zap.Error(verr))
		return data, nil
	}
	switch err := h.views.Set(ctx, view, version, data); {
	case errors.Is(err, cache.ErrStale):
		h.logger.Debug("view changed during load, not cached", zap.String("view", view))
	case err != nil:
		h.logger.Warn("view cache write failed", zap.String("view", view), zap.Error(err))
	}
	return data, nil
}
