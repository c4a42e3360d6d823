package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/cache"
	"pm-dashboard/internal/metrics"
	"pm-dashboard/internal/models"
	"pm-dashboard/internal/sanitize"
)

// Kind описывает тип сущности: имя для журнала, представления для сброса кэша
// и необязательную ссылку на родителя.
type Kind struct {
	Name        string
	ListView    string
	OwnerField  string
	ParentField string
	ParentView  func(parentID string) string
}

func (k Kind) DetailView(id string) string {
	return k.ListView + "/" + id
}

var (
	ProjectKind = Kind{
		Name:       "project",
		ListView:   "/projects",
		OwnerField: "created_by",
	}
	ProductionOrderKind = Kind{
		Name:        "production_order",
		ListView:    "/production",
		OwnerField:  "created_by",
		ParentField: "project_id",
		ParentView:  ProjectKind.DetailView,
	}
	ServiceKind = Kind{
		Name:       "service",
		ListView:   "/services",
		OwnerField: "created_by",
	}
)

// Mutation: результат изменения. AuditErr заполнен, если запись в журнал не удалась;
// сама операция при этом уже выполнена.
type Mutation struct {
	ID       string
	History  *models.HistoryEntry
	AuditErr error
}

type Repository[T any] struct {
	db     *gorm.DB
	kind   Kind
	views  cache.ViewCache
	logger *zap.Logger
}

func New[T any](db *gorm.DB, kind Kind, views cache.ViewCache, logger *zap.Logger) *Repository[T] {
	return &Repository[T]{
		db:     db,
		kind:   kind,
		views:  views,
		logger: logger.With(zap.String("entity", kind.Name)),
	}
}

func (r *Repository[T]) Kind() Kind { return r.kind }

func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.NotFound, fmt.Sprintf("%s %s not found", r.kind.Name, id))
		}
		return nil, apperror.Store(err)
	}
	return &rec, nil
}

// List: записи по фильтру на равенство, новые сверху
func (r *Repository[T]) List(ctx context.Context, where map[string]any) ([]T, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if len(where) > 0 {
		q = q.Where(where)
	}
	var recs []T
	if err := q.Find(&recs).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return recs, nil
}

func (r *Repository[T]) Count(ctx context.Context, where map[string]any) (int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if len(where) > 0 {
		q = q.Where(where)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, apperror.Store(err)
	}
	return n, nil
}

// History: журнал изменений записи, старые сверху
func (r *Repository[T]) History(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", r.kind.Name, id).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, apperror.Store(err)
	}
	return entries, nil
}

func (r *Repository[T]) Create(ctx context.Context, actorID string, data map[string]any) (m Mutation, err error) {
	defer func() { metrics.RecordMutation(r.kind.Name, models.ActionCreated, err) }()

	fields := sanitize.Fields(data)
	delete(fields, "id")
	if r.kind.OwnerField != "" && actorID != "" {
		if _, ok := fields[r.kind.OwnerField]; !ok {
			fields[r.kind.OwnerField] = actorID
		}
	}

	var rec T
	if err := decodeInto(fields, &rec); err != nil {
		return Mutation{}, apperror.Invalid(err.Error())
	}

	tx := r.db.WithContext(ctx)
	if err := tx.Create(&rec).Error; err != nil {
		return Mutation{}, apperror.Store(err)
	}

	snapshot, err := toMap(&rec)
	if err != nil {
		return Mutation{}, apperror.Store(err)
	}
	id, _ := snapshot["id"].(string)

	// перечитываем, чтобы в журнал попали значения по умолчанию из БД
	var created T
	if err := tx.First(&created, "id = ?", id).Error; err == nil {
		if s, err := toMap(&created); err == nil {
			snapshot = s
		}
	} else {
		r.logger.Warn("reload after create failed", zap.String("id", id), zap.Error(err))
	}

	m = Mutation{ID: id}
	m.History, m.AuditErr = r.record(ctx, actorID, id, models.ActionCreated, snapshot)

	r.invalidate(ctx, id, parentOf(r.kind, fields))
	return m, nil
}

func (r *Repository[T]) Update(ctx context.Context, actorID, id string, data map[string]any) (m Mutation, err error) {
	defer func() { metrics.RecordMutation(r.kind.Name, models.ActionUpdated, err) }()

	prevRec, err := r.Get(ctx, id)
	if err != nil {
		return Mutation{}, err
	}
	prev, err := toMap(prevRec)
	if err != nil {
		return Mutation{}, apperror.Store(err)
	}

	fields := sanitize.Fields(data)
	delete(fields, "id")
	m = Mutation{ID: id}
	if len(fields) == 0 {
		return m, nil
	}

	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return Mutation{}, apperror.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return Mutation{}, apperror.New(apperror.NotFound, fmt.Sprintf("%s %s not found", r.kind.Name, id))
	}

	next, err := toMap(fields)
	if err != nil {
		return Mutation{}, apperror.Store(err)
	}

	if change, changed := Diff(prev, next); changed {
		m.History, m.AuditErr = r.record(ctx, actorID, id, models.ActionUpdated, change)
	} else {
		metrics.RecordHistoryWrite(r.kind.Name, "skipped")
	}

	r.invalidate(ctx, id, parentOf(r.kind, prev), parentOf(r.kind, next))
	return m, nil
}

// Delete: удаляем запись и пишем "deleted" с её последним состоянием
func (r *Repository[T]) Delete(ctx context.Context, actorID, id string) (m Mutation, err error) {
	defer func() { metrics.RecordMutation(r.kind.Name, models.ActionDeleted, err) }()

	prevRec, err := r.Get(ctx, id)
	if err != nil {
		return Mutation{}, err
	}
	snapshot, err := toMap(prevRec)
	if err != nil {
		return Mutation{}, apperror.Store(err)
	}

	if err := r.db.WithContext(ctx).Delete(new(T), "id = ?", id).Error; err != nil {
		return Mutation{}, apperror.Store(err)
	}

	m = Mutation{ID: id}
	m.History, m.AuditErr = r.record(ctx, actorID, id, models.ActionDeleted, snapshot)

	r.invalidate(ctx, id, parentOf(r.kind, snapshot))
	return m, nil
}

// record пишет запись журнала. Ошибка не откатывает основную операцию.
func (r *Repository[T]) record(ctx context.Context, actorID, entityID, action string, details any) (*models.HistoryEntry, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, r.auditFailed(entityID, action, err)
	}

	entry := models.HistoryEntry{
		EntityType: r.kind.Name,
		EntityID:   entityID,
		ActionType: action,
		Details:    raw,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, r.auditFailed(entityID, action, err)
	}

	metrics.RecordHistoryWrite(r.kind.Name, "ok")
	return &entry, nil
}

func (r *Repository[T]) auditFailed(entityID, action string, err error) error {
	metrics.RecordHistoryWrite(r.kind.Name, "failed")
	r.logger.Warn("history write failed",
		zap.String("entity_id", entityID),
		zap.String("action", action),
		zap.Error(err),
	)
	return fmt.Errorf("history write failed: %w", err)
}

func (r *Repository[T]) invalidate(ctx context.Context, id string, parents ...string) {
	if r.views == nil {
		return
	}
	views := []string{r.kind.ListView, r.kind.DetailView(id)}
	for _, p := range parents {
		if p != "" && r.kind.ParentView != nil {
			views = append(views, r.kind.ParentView(p))
		}
	}
	if err := r.views.Invalidate(ctx, views...); err != nil {
		r.logger.Warn("view invalidation failed", zap.Strings("views", views), zap.Error(err))
	}
}

func parentOf(kind Kind, fields map[string]any) string {
	if kind.ParentField == "" {
		return ""
	}
	s, _ := fields[kind.ParentField].(string)
	return s
}
