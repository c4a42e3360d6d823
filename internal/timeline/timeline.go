// Package timeline: проекты, заказы и сервисы в одном списке для диаграммы Ганта.
package timeline

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pm-dashboard/internal/metrics"
	"pm-dashboard/internal/models"
)

type ItemType string

const (
	TypeProject    ItemType = "project"
	TypeProduction ItemType = "production"
	TypeService    ItemType = "service"
)

// defaultSpan: длительность элемента без даты окончания.
const defaultSpan = 24 * time.Hour

type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      ItemType  `json:"type"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	OwnerID   string    `json:"owner_id,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"`
}

// span: пустые даты только для отображения: старт = now, конец = now + сутки
func span(start, end *time.Time, now time.Time) (time.Time, time.Time) {
	s, e := now, now.Add(defaultSpan)
	if start != nil {
		s = *start
	}
	if end != nil {
		e = *end
	}
	return s, e
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FromProjects(projects []models.Project, now time.Time) []Item {
	items := make([]Item, 0, len(projects))
	for _, p := range projects {
		start, end := span(p.StartDate, p.EndDate, now)
		owner := deref(p.ManagerID)
		if owner == "" {
			owner = deref(p.CreatedBy)
		}
		items = append(items, Item{
			ID:        p.ID,
			Title:     deref(p.Title),
			Type:      TypeProject,
			Status:    string(p.Status),
			StartDate: start,
			EndDate:   end,
			OwnerID:   owner,
		})
	}
	return items
}

func FromOrders(orders []models.ProductionOrder, now time.Time) []Item {
	items := make([]Item, 0, len(orders))
	for _, o := range orders {
		start, end := span(o.StartDate, o.EndDate, now)
		items = append(items, Item{
			ID:        o.ID,
			Title:     deref(o.Title),
			Type:      TypeProduction,
			Status:    string(o.Status),
			StartDate: start,
			EndDate:   end,
			OwnerID:   deref(o.AssignedTo),
			ParentID:  deref(o.ProjectID),
		})
	}
	return items
}

// FromServices: старт = дата сервиса, конец по duration_hours, если задан
func FromServices(services []models.Service, now time.Time) []Item {
	items := make([]Item, 0, len(services))
	for _, s := range services {
		var end *time.Time
		if s.ServiceDate != nil && s.DurationHours != nil && *s.DurationHours > 0 {
			e := s.ServiceDate.Add(time.Duration(*s.DurationHours * float64(time.Hour)))
			end = &e
		}
		start, stop := span(s.ServiceDate, end, now)
		items = append(items, Item{
			ID:        s.ID,
			Title:     deref(s.Title),
			Type:      TypeService,
			Status:    string(s.Status),
			StartDate: start,
			EndDate:   stop,
			OwnerID:   deref(s.AssignedTo),
		})
	}
	return items
}

// Loader: три источника параллельно; упавший логируем и пропускаем
type Loader struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewLoader(db *gorm.DB, logger *zap.Logger) *Loader {
	return &Loader{db: db, logger: logger, now: time.Now}
}

func (l *Loader) Load(ctx context.Context) []Item {
	now := l.now()
	var (
		projects []models.Project
		orders   []models.ProductionOrder
		services []models.Service
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.read(gctx, "projects", &projects)
		return nil
	})
	g.Go(func() error {
		l.read(gctx, "production_orders", &orders)
		return nil
	})
	g.Go(func() error {
		l.read(gctx, "services", &services)
		return nil
	})
	_ = g.Wait()

	items := FromProjects(projects, now)
	items = append(items, FromOrders(orders, now)...)
	items = append(items, FromServices(services, now)...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartDate.Before(items[j].StartDate)
	})
	return items
}

func (l *Loader) read(ctx context.Context, source string, dest any) {
	if err := l.db.WithContext(ctx).Find(dest).Error; err != nil {
		l.logger.Warn("timeline source unavailable", zap.String("source", source), zap.Error(err))
		metrics.RecordSourceFailure("timeline", source)
	}
}
