package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pm-dashboard/internal/access"
	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/cache"
	"pm-dashboard/internal/models"
	"pm-dashboard/internal/repository"
	"pm-dashboard/internal/testutil"
)

func TestProjectActions(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.New[models.Project](db, repository.ProjectKind, cache.NewMemory(0), testutil.Logger())
	projects := NewEntity[models.Project, models.ProjectInput](repo, testutil.Logger())
	identity, profile := testutil.CreateUser(t, db, "pm@example.com", models.RoleMember, true)
	auth := authFor(identity, profile)
	ctx := context.Background()

	t.Run("anonymous caller", func(t *testing.T) {
		res := projects.Create(ctx, access.AuthContext{}, models.ProjectInput{Title: testutil.Ptr("x")})
		assert.False(t, res.Success)
		assert.Equal(t, apperror.AuthenticationMissing, res.Code)
	})

	t.Run("non numeric quantity is rejected before the insert", func(t *testing.T) {
		res := projects.Create(ctx, auth, models.ProjectInput{
			Title:    testutil.Ptr("Gearbox"),
			Quantity: testutil.Ptr("a dozen"),
		})
		assert.Equal(t, apperror.Validation, res.Code)

		n, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("blank title surfaces the database message", func(t *testing.T) {
		res := projects.Create(ctx, auth, models.ProjectInput{
			Title:      testutil.Ptr("  "),
			ClientName: testutil.Ptr("Acme"),
		})
		assert.False(t, res.Success)
		assert.Equal(t, apperror.Persistence, res.Code)
		assert.NotEmpty(t, res.Error)
	})

	t.Run("create update delete", func(t *testing.T) {
		res := projects.Create(ctx, auth, models.ProjectInput{
			Title:  testutil.Ptr("Gearbox"),
			Status: testutil.Ptr("planning"),
		})
		require.True(t, res.Success, res.Error)
		id := res.ID

		res = projects.Update(ctx, auth, id, models.ProjectInput{Status: testutil.Ptr("production")})
		require.True(t, res.Success, res.Error)

		res = projects.Update(ctx, auth, id, models.ProjectInput{Status: testutil.Ptr("shipped")})
		assert.Equal(t, apperror.Validation, res.Code)

		res = projects.Delete(ctx, auth, id)
		require.True(t, res.Success, res.Error)

		res = projects.Delete(ctx, auth, id)
		assert.Equal(t, apperror.NotFound, res.Code)

		entries, err := repo.History(ctx, id)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, []string{"created", "updated", "deleted"},
			[]string{entries[0].ActionType, entries[1].ActionType, entries[2].ActionType})
	})
}
