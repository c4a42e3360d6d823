package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/models"
	"pm-dashboard/internal/testutil"
)

func TestSignupAndAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccounts(db, testutil.Logger())
	ctx := context.Background()

	res := accounts.Signup(ctx, " Jana@Example.com ", "tajneheslo", "Jana Nováková")
	require.True(t, res.Success, res.Error)

	profile, err := accounts.Profile(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, profile.Role)
	assert.False(t, profile.Approved())
	require.NotNil(t, profile.FullName)
	assert.Equal(t, "Jana Nováková", *profile.FullName)

	identity, err := accounts.Authenticate(ctx, "jana@example.com", "tajneheslo")
	require.NoError(t, err)
	assert.Equal(t, res.ID, identity.ID)

	_, err = accounts.Authenticate(ctx, "jana@example.com", "wrong")
	assert.Equal(t, apperror.AuthenticationMissing, apperror.KindOf(err))

	_, err = accounts.Authenticate(ctx, "nobody@example.com", "tajneheslo")
	assert.Equal(t, apperror.AuthenticationMissing, apperror.KindOf(err))

	dup := accounts.Signup(ctx, "jana@example.com", "tajneheslo", "")
	assert.Equal(t, apperror.Validation, dup.Code)

	short := accounts.Signup(ctx, "petr@example.com", "123", "")
	assert.Equal(t, apperror.Validation, short.Code)
}

func TestRequestAccessReusesPendingRequest(t *testing.T) {
	db := testutil.NewDB(t)
	accounts := NewAccounts(db, testutil.Logger())
	ctx := context.Background()

	first := accounts.RequestAccess(ctx, "petr@example.com")
	require.True(t, first.Success, first.Error)

	second := accounts.RequestAccess(ctx, "PETR@example.com")
	require.True(t, second.Success, second.Error)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, apperror.Validation, accounts.RequestAccess(ctx, "not-an-email").Code)

	var n int64
	require.NoError(t, db.Model(&models.AccessRequest{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
