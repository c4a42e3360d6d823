package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pm-dashboard/internal/actions"
	"pm-dashboard/internal/activity"
	"pm-dashboard/internal/cache"
	"pm-dashboard/internal/dashboard"
	"pm-dashboard/internal/middleware"
	"pm-dashboard/internal/models"
	"pm-dashboard/internal/repository"
	"pm-dashboard/internal/settings"
	"pm-dashboard/internal/timeline"
)

type Handler struct {
	logger    *zap.Logger
	jwtSecret string
	now       func() time.Time

	views     cache.ViewCache
	accounts  *actions.Accounts
	admin     *actions.Admin
	dashboard *dashboard.Service
	activity  *activity.Aggregator
	timeline  *timeline.Loader
	settings  *settings.Store
	debouncer *settings.Debouncer

	Projects *Entity[models.Project, models.ProjectInput]
	Orders   *Entity[models.ProductionOrder, models.ProductionOrderInput]
	Services *Entity[models.Service, models.ServiceInput]
}

type Options struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	Views     cache.ViewCache
	JWTSecret string
	Debouncer *settings.Debouncer
}

func New(o Options) *Handler {
	db, logger := o.DB, o.Logger

	projectRepo := repository.New[models.Project](db, repository.ProjectKind, o.Views, logger)
	orderRepo := repository.New[models.ProductionOrder](db, repository.ProductionOrderKind, o.Views, logger)
	serviceRepo := repository.New[models.Service](db, repository.ServiceKind, o.Views, logger)

	h := &Handler{
		logger:    logger,
		jwtSecret: o.JWTSecret,
		now:       time.Now,
		views:     o.Views,
		accounts:  actions.NewAccounts(db, logger),
		admin:     actions.NewAdmin(db, logger),
		dashboard: dashboard.New(db, logger),
		activity: activity.NewAggregator(activity.LookupActor(db), logger,
			activity.ImportSource{DB: db},
			activity.SettingsSource{DB: db},
			activity.UserActionSource{DB: db},
		),
		timeline:  timeline.NewLoader(db, logger),
		settings:  settings.NewStore(db),
		debouncer: o.Debouncer,
	}
	h.Projects = newEntity[models.Project, models.ProjectInput](h, projectRepo)
	h.Orders = newEntity[models.ProductionOrder, models.ProductionOrderInput](h, orderRepo)
	h.Services = newEntity[models.Service, models.ServiceInput](h, serviceRepo)

	// заказы проекта показываются на его странице
	h.Projects.children = func(ctx context.Context, id string) (any, error) {
		return orderRepo.List(ctx, map[string]any{"project_id": id})
	}
	return h
}

// Profile: свежее чтение профиля для gate
func (h *Handler) Profile() middleware.ProfileFunc {
	return h.accounts.Profile
}
