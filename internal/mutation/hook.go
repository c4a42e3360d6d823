// Package mutation: состояние loading/error вокруг мутации и refresh после успеха.
package mutation

import (
	"context"
	"sync"

	"pm-dashboard/internal/actions"
	"pm-dashboard/internal/apperror"
)

type State struct {
	Loading bool
	Err     error
}

// Hook: один экземпляр на представление. Refresh повторяет чтение,
// которое построило данные этого представления.
type Hook struct {
	mu      sync.Mutex
	loading bool
	err     error
	refresh func(ctx context.Context) error
}

func New(refresh func(ctx context.Context) error) *Hook {
	return &Hook{refresh: refresh}
}

func (h *Hook) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return State{Loading: h.loading, Err: h.err}
}

// Run: Loading на время вызова, снимается всегда; новый вызов сбрасывает прошлую ошибку.
func (h *Hook) Run(ctx context.Context, fn func(ctx context.Context) actions.Result) actions.Result {
	h.mu.Lock()
	h.loading = true
	h.err = nil
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.loading = false
		h.mu.Unlock()
	}()

	res := h.call(ctx, fn)
	if !res.Success {
		h.setErr(res.Err())
		return res
	}

	if h.refresh != nil {
		if err := h.refresh(ctx); err != nil {
			// данные на экране устарели, но сама мутация прошла
			h.setErr(err)
			if res.Warning == "" {
				res.Warning = "saved, but the view could not be refreshed: " + err.Error()
			}
		}
	}
	return res
}

func (h *Hook) call(ctx context.Context, fn func(ctx context.Context) actions.Result) (res actions.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = actions.Result{Code: apperror.Persistence, Error: "mutation failed unexpectedly"}
		}
	}()
	return fn(ctx)
}

func (h *Hook) setErr(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
}
