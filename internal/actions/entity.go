package actions

import (
	"context"

	"go.uber.org/zap"

	"pm-dashboard/internal/access"
	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/models"
	"pm-dashboard/internal/repository"
)

// Input: типизированный набор полей сущности из формы.
type Input interface {
	Fields() (map[string]any, error)
}

// Entity: create/update/delete одного вида сущности. Доступ к строкам
// не проверяем, достаточно быть залогиненным.
type Entity[T any, I Input] struct {
	repo   *repository.Repository[T]
	logger *zap.Logger
}

func NewEntity[T any, I Input](repo *repository.Repository[T], logger *zap.Logger) *Entity[T, I] {
	return &Entity[T, I]{
		repo:   repo,
		logger: logger.With(zap.String("entity", repo.Kind().Name)),
	}
}

type (
	ProjectActions         = Entity[models.Project, models.ProjectInput]
	ProductionOrderActions = Entity[models.ProductionOrder, models.ProductionOrderInput]
	ServiceActions         = Entity[models.Service, models.ServiceInput]
)

func (a *Entity[T, I]) Create(ctx context.Context, auth access.AuthContext, in I) (res Result) {
	defer guard(a.logger, "create", &res)

	if !auth.Authenticated() {
		return fail(apperror.Unauthenticated())
	}
	fields, err := in.Fields()
	if err != nil {
		return fail(err)
	}

	m, err := a.repo.Create(ctx, auth.UserID(), fields)
	if err != nil {
		a.logger.Warn("create failed", zap.String("user_id", auth.UserID()), zap.Error(err))
		return fail(err)
	}
	return withAudit(ok(m.ID), m)
}

func (a *Entity[T, I]) Update(ctx context.Context, auth access.AuthContext, id string, in I) (res Result) {
	defer guard(a.logger, "update", &res)

	if !auth.Authenticated() {
		return fail(apperror.Unauthenticated())
	}
	fields, err := in.Fields()
	if err != nil {
		return fail(err)
	}

	m, err := a.repo.Update(ctx, auth.UserID(), id, fields)
	if err != nil {
		a.logger.Warn("update failed", zap.String("id", id), zap.Error(err))
		return fail(err)
	}
	return withAudit(ok(m.ID), m)
}

func (a *Entity[T, I]) Delete(ctx context.Context, auth access.AuthContext, id string) (res Result) {
	defer guard(a.logger, "delete", &res)

	if !auth.Authenticated() {
		return fail(apperror.Unauthenticated())
	}

	m, err := a.repo.Delete(ctx, auth.UserID(), id)
	if err != nil {
		a.logger.Warn("delete failed", zap.String("id", id), zap.Error(err))
		return fail(err)
	}
	return withAudit(ok(m.ID), m)
}

func withAudit(res Result, m repository.Mutation) Result {
	if m.AuditErr != nil {
		res.Warning = m.AuditErr.Error()
	}
	return res
}
