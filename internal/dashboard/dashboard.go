package dashboard

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"pm-dashboard/internal/metrics"
	"pm-dashboard/internal/models"
)

type Counts struct {
	ActiveProjects    int64 `json:"active_projects"`
	OpenOrders        int64 `json:"open_orders"`
	ScheduledServices int64 `json:"scheduled_services"`
	PendingRequests   int64 `json:"pending_requests"`
}

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Counts: четыре счётчика параллельно; упавший логируем и отдаём 0
func (s *Service) Counts(ctx context.Context) Counts {
	var c Counts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.ActiveProjects = s.count(gctx, "active_projects", &models.Project{},
			"status NOT IN ?", []models.ProjectStatus{models.ProjectCompleted, models.ProjectStopped})
		return nil
	})
	g.Go(func() error {
		c.OpenOrders = s.count(gctx, "open_orders", &models.ProductionOrder{},
			"status IN ?", []models.OrderStatus{models.OrderPending, models.OrderInProgress})
		return nil
	})
	g.Go(func() error {
		c.ScheduledServices = s.count(gctx, "scheduled_services", &models.Service{},
			"status = ?", models.ServiceScheduled)
		return nil
	})
	g.Go(func() error {
		c.PendingRequests = s.count(gctx, "pending_requests", &models.AccessRequest{},
			"status = ?", models.RequestPending)
		return nil
	})
	_ = g.Wait()
	return c
}

func (s *Service) count(ctx context.Context, name string, model any, query string, args ...any) int64 {
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&n).Error; err != nil {
		s.logger.Warn("dashboard count failed", zap.String("count", name), zap.Error(err))
		metrics.RecordSourceFailure("dashboard", name)
		return 0
	}
	return n
}
