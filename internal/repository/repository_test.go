package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/cache"
	"pm-dashboard/internal/models"
	"pm-dashboard/internal/testutil"
)

type recordingCache struct {
	cache.ViewCache
	invalidated []string
}

func (c *recordingCache) Invalidate(ctx context.Context, views ...string) error {
	c.invalidated = append(c.invalidated, views...)
	return nil
}

func historyCount(t *testing.T, r *Repository[models.Project], id string) int {
	t.Helper()
	entries, err := r.History(context.Background(), id)
	require.NoError(t, err)
	return len(entries)
}

func TestCreateWritesHistory(t *testing.T) {
	db := testutil.NewDB(t)
	views := &recordingCache{}
	repo := New[models.Project](db, ProjectKind, views, testutil.Logger())
	ctx := context.Background()

	m, err := repo.Create(ctx, "user-1", map[string]any{
		"title":       "Line 4 retrofit",
		"client_name": "Acme",
		"note":        "  ",
		"quantity":    3,
	})
	require.NoError(t, err)
	require.NoError(t, m.AuditErr)
	require.NotEmpty(t, m.ID)

	p, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Line 4 retrofit", *p.Title)
	assert.Equal(t, models.ProjectPlanning, p.Status)
	assert.Nil(t, p.Note)
	require.NotNil(t, p.CreatedBy)
	assert.Equal(t, "user-1", *p.CreatedBy)

	entries, err := repo.History(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionCreated, entries[0].ActionType)
	assert.Equal(t, "project", entries[0].EntityType)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, "user-1", *entries[0].UserID)

	var details map[string]any
	require.NoError(t, json.Unmarshal(entries[0].Details, &details))
	assert.Equal(t, "Acme", details["client_name"])
	assert.Equal(t, "planning", details["status"])

	assert.Contains(t, views.invalidated, "/projects")
}

func TestCreateBlankTitleFailsWithoutHistory(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.Project](db, ProjectKind, cache.NewMemory(0), testutil.Logger())
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", map[string]any{
		"title":       "   ",
		"client_name": "Acme",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.Persistence, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "title")

	var n int64
	require.NoError(t, db.Model(&models.HistoryEntry{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateRecordsOnlyChangedFields(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.ProductionOrder](db, ProductionOrderKind, cache.NewMemory(0), testutil.Logger())
	ctx := context.Background()

	m, err := repo.Create(ctx, "user-1", map[string]any{"title": "Old", "status": "pending"})
	require.NoError(t, err)

	upd, err := repo.Update(ctx, "user-2", m.ID, map[string]any{"title": "Old", "status": "done"})
	require.NoError(t, err)
	require.NotNil(t, upd.History)
	assert.Equal(t, models.ActionUpdated, upd.History.ActionType)

	var change Change
	require.NoError(t, json.Unmarshal(upd.History.Details, &change))
	assert.Equal(t, map[string]any{"status": "pending"}, change.Before)
	assert.Equal(t, map[string]any{"status": "done"}, change.After)

	o, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDone, o.Status)
}

func TestUpdateWithoutChangesSkipsHistory(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.Project](db, ProjectKind, cache.NewMemory(0), testutil.Logger())
	ctx := context.Background()

	fields, err := models.ProjectInput{
		Title:     testutil.Ptr("Press line"),
		Status:    testutil.Ptr("development"),
		StartDate: testutil.Ptr("2024-03-01"),
		Quantity:  testutil.Ptr("40"),
		Note:      testutil.Ptr(""),
	}.Fields()
	require.NoError(t, err)

	m, err := repo.Create(ctx, "user-1", fields)
	require.NoError(t, err)

	upd, err := repo.Update(ctx, "user-1", m.ID, fields)
	require.NoError(t, err)
	assert.Nil(t, upd.History)
	assert.Equal(t, 1, historyCount(t, repo, m.ID))
}

func TestUpdateMissingRecord(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.Project](db, ProjectKind, cache.NewMemory(0), testutil.Logger())

	_, err := repo.Update(context.Background(), "user-1", "nope", map[string]any{"title": "x"})
	require.Error(t, err)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestUpdateToNullRequiredFieldFails(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.Project](db, ProjectKind, cache.NewMemory(0), testutil.Logger())
	ctx := context.Background()

	m, err := repo.Create(ctx, "user-1", map[string]any{"title": "Keep"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, "user-1", m.ID, map[string]any{"title": " "})
	require.Error(t, err)
	assert.Equal(t, apperror.Persistence, apperror.KindOf(err))
	assert.Equal(t, 1, historyCount(t, repo, m.ID))
}

func TestDeleteWritesHistoryAndInvalidatesParent(t *testing.T) {
	db := testutil.NewDB(t)
	views := &recordingCache{}
	repo := New[models.ProductionOrder](db, ProductionOrderKind, views, testutil.Logger())
	ctx := context.Background()

	m, err := repo.Create(ctx, "user-1", map[string]any{"title": "Batch", "project_id": "p-1"})
	require.NoError(t, err)
	assert.Contains(t, views.invalidated, "/projects/p-1")

	views.invalidated = nil
	del, err := repo.Delete(ctx, "user-1", m.ID)
	require.NoError(t, err)
	require.NotNil(t, del.History)
	assert.Equal(t, models.ActionDeleted, del.History.ActionType)
	assert.ElementsMatch(t, []string{"/production", "/production/" + m.ID, "/projects/p-1"}, views.invalidated)

	_, err = repo.Get(ctx, m.ID)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	entries, err := repo.History(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuditFailureDoesNotRollBack(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.Service](db, ServiceKind, cache.NewMemory(0), testutil.Logger())
	ctx := context.Background()

	require.NoError(t, db.Migrator().DropTable(&models.HistoryEntry{}))

	m, err := repo.Create(ctx, "user-1", map[string]any{"title": "Pump check", "status": "scheduled"})
	require.NoError(t, err)
	assert.Error(t, m.AuditErr)
	assert.Nil(t, m.History)

	s, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pump check", *s.Title)
}

func TestListAndCount(t *testing.T) {
	db := testutil.NewDB(t)
	repo := New[models.Service](db, ServiceKind, cache.NewMemory(0), testutil.Logger())
	ctx := context.Background()

	for _, st := range []string{"scheduled", "scheduled", "done"} {
		_, err := repo.Create(ctx, "", map[string]any{"title": "visit", "status": st})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := repo.Count(ctx, map[string]any{"status": "scheduled"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
