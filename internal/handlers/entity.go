package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"pm-dashboard/internal/actions"
	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/middleware"
	"pm-dashboard/internal/mutation"
	"pm-dashboard/internal/repository"
)

// Entity: чтения (список, карточка, история) и мутации одного вида сущности
type Entity[T any, I actions.Input] struct {
	h       *Handler
	repo    *repository.Repository[T]
	actions *actions.Entity[T, I]

	// дочерние записи для страницы деталей (заказы проекта)
	children func(ctx context.Context, id string) (any, error)
}

func newEntity[T any, I actions.Input](h *Handler, repo *repository.Repository[T]) *Entity[T, I] {
	return &Entity[T, I]{
		h:       h,
		repo:    repo,
		actions: actions.NewEntity[T, I](repo, h.logger),
	}
}

// List: полный список из кэша view; с фильтром по статусу идём в БД
func (e *Entity[T, I]) List(c *gin.Context) {
	ctx := c.Request.Context()
	if status := c.Query("status"); status != "" {
		items, err := e.repo.List(ctx, map[string]any{"status": status})
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, gin.H{"items": items})
		return
	}

	items, err := e.listView(ctx)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"items": items})
}

func (e *Entity[T, I]) listView(ctx context.Context) (json.RawMessage, error) {
	kind := e.repo.Kind()
	return e.h.cachedView(ctx, kind.ListView, kind.ListView, func(ctx context.Context) (any, error) {
		return e.repo.List(ctx, nil)
	})
}

func (e *Entity[T, I]) Show(c *gin.Context) {
	id := c.Param("id")
	kind := e.repo.Kind()
	data, err := e.h.cachedView(c.Request.Context(), kind.DetailView(id), kind.ListView, func(ctx context.Context) (any, error) {
		rec, err := e.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		view := gin.H{"item": rec}
		if e.children != nil {
			kids, err := e.children(ctx, id)
			if err != nil {
				return nil, err
			}
			view["children"] = kids
		}
		return view, nil
	})
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"view": data})
}

func (e *Entity[T, I]) History(c *gin.Context) {
	entries, err := e.repo.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"history": entries})
}

func (e *Entity[T, I]) Create(c *gin.Context) {
	var in I
	if err := c.ShouldBind(&in); err != nil {
		respond(c, invalid(err), nil)
		return
	}
	auth := middleware.Auth(c)
	e.mutate(c, func(ctx context.Context) actions.Result {
		return e.actions.Create(ctx, auth, in)
	})
}

func (e *Entity[T, I]) Update(c *gin.Context) {
	var in I
	if err := c.ShouldBind(&in); err != nil {
		respond(c, invalid(err), nil)
		return
	}
	auth, id := middleware.Auth(c), c.Param("id")
	e.mutate(c, func(ctx context.Context) actions.Result {
		return e.actions.Update(ctx, auth, id, in)
	})
}

func (e *Entity[T, I]) Delete(c *gin.Context) {
	auth, id := middleware.Auth(c), c.Param("id")
	e.mutate(c, func(ctx context.Context) actions.Result {
		return e.actions.Delete(ctx, auth, id)
	})
}

// mutate: действие через mutation hook, refresh перечитывает список,
// свежий список отдаём вместе с результатом
func (e *Entity[T, I]) mutate(c *gin.Context, fn func(ctx context.Context) actions.Result) {
	var items json.RawMessage
	hook := mutation.New(func(ctx context.Context) error {
		v, err := e.listView(ctx)
		if err != nil {
			return err
		}
		items = v
		return nil
	})

	res := hook.Run(c.Request.Context(), fn)
	if !res.Success {
		respond(c, res, nil)
		return
	}
	respond(c, res, gin.H{"items": items})
}

func invalid(err error) actions.Result {
	return actions.Result{Code: apperror.Validation, Error: "invalid form data: " + err.Error()}
}
