package integration

import (
	"context"
	"testing"

	"github.com/otaslabs/otas-api/internal/services"
	"github.com/otaslabs/otas-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Integration_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Ada", "", "Lovelace", "ada@example.com", "correct horse battery")

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	// The stored hash must never be the plain password.
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
}

func TestUserService_Integration_Create_DuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Ada", "", "Lovelace", "ada@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Other", "", "Person", "ada@example.com", "another password")
	assert.ErrorIs(t, err, services.ErrUserExists)
}

func TestUserService_Integration_Authenticate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	fixtures := testutil.NewFixtures(tdb.DB)
	ctx := context.Background()

	created := fixtures.CreateUser(t)

	user, err := svc.Authenticate(ctx, created.Email, testutil.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, created.Email, "wrong password")
	assert.ErrorIs(t, err, services.ErrLoginFailed)

	_, err = svc.Authenticate(ctx, "nobody@example.com", testutil.DefaultPassword)
	assert.ErrorIs(t, err, services.ErrLoginFailed)
}

func TestUserService_Integration_UpdateProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	fixtures := testutil.NewFixtures(tdb.DB)
	ctx := context.Background()

	created := fixtures.CreateUser(t)

	updated, err := svc.UpdateProfile(ctx, created.ID, "Grace", "Brewster", "Hopper")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Hopper", updated.LastName)
}

func TestUserService_Integration_UpdatePassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	fixtures := testutil.NewFixtures(tdb.DB)
	ctx := context.Background()

	created := fixtures.CreateUser(t)

	err := svc.UpdatePassword(ctx, created.ID, "a brand new password")
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = svc.Authenticate(ctx, created.Email, testutil.DefaultPassword)
	assert.ErrorIs(t, err, services.ErrLoginFailed)

	user, err := svc.Authenticate(ctx, created.Email, "a brand new password")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}
