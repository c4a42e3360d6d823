// Package activity: общая лента из журналов импорта, настроек и пользователей.
package activity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pm-dashboard/internal/metrics"
)

const (
	perSourceLimit = 10
	feedLimit      = 15
)

type Item struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Actor: чьи записи ищем. Часть логов ключуется по email, часть по id.
type Actor struct {
	ID    string
	Email string
}

type Source interface {
	Name() string
	Recent(ctx context.Context, actor Actor, limit int) ([]Item, error)
}

type ActorLookup func(ctx context.Context, userID string) (Actor, error)

type Aggregator struct {
	lookup  ActorLookup
	sources []Source
	logger  *zap.Logger
}

func NewAggregator(lookup ActorLookup, logger *zap.Logger, sources ...Source) *Aggregator {
	return &Aggregator{lookup: lookup, sources: sources, logger: logger}
}

// Fetch: последние действия userID, новые сверху. Ошибкой считается только
// сбой поиска пользователя, упавший источник просто ничего не даёт.
func (a *Aggregator) Fetch(ctx context.Context, userID string) ([]Item, error) {
	actor, err := a.lookup(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", userID, err)
	}

	var (
		mu  sync.Mutex
		all []Item
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range a.sources {
		g.Go(func() error {
			items, err := src.Recent(gctx, actor, perSourceLimit)
			if err != nil {
				a.logger.Warn("activity source unavailable",
					zap.String("source", src.Name()),
					zap.String("user_id", userID),
					zap.Error(err),
				)
				metrics.RecordSourceFailure("activity", src.Name())
				return nil
			}
			if len(items) > perSourceLimit {
				items = items[:perSourceLimit]
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if len(all) > feedLimit {
		all = all[:feedLimit]
	}
	if all == nil {
		all = []Item{}
	}
	return all, nil
}
