// Package actions: мутации для хендлеров. Итог всегда в Result,
// ни error, ни паника наружу не уходят.
package actions

import (
	"fmt"

	"go.uber.org/zap"

	"pm-dashboard/internal/apperror"
)

type Result struct {
	Success bool          `json:"success"`
	ID      string        `json:"id,omitempty"`
	Warning string        `json:"warning,omitempty"`
	Code    apperror.Kind `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func ok(id string) Result {
	return Result{Success: true, ID: id}
}

func fail(err error) Result {
	return Result{Code: apperror.KindOf(err), Error: err.Error()}
}

func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return apperror.New(r.Code, r.Error)
}

// guard: паника внутри действия -> Result с ошибкой
func guard(logger *zap.Logger, action string, res *Result) {
	if p := recover(); p != nil {
		logger.Error("action panicked", zap.String("action", action), zap.Any("panic", p))
		*res = fail(apperror.New(apperror.Persistence, fmt.Sprintf("%s failed unexpectedly", action)))
	}
}
