package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talenttune/talenttune-api/internal/models"
)

func TestUserListFilters(t *testing.T) {
	db := openTestDB(t, "user_list")
	seedUsers(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	evaluators, err := repo.List(ctx, UserFilter{Role: models.RoleEvaluator})
	require.NoError(t, err)
	require.Len(t, evaluators, 1)
	require.Equal(t, "Eva Luator", evaluators[0].Name)

	matched, err := repo.List(ctx, UserFilter{Search: "candi"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, "candi@example.com", matched[0].Email)

	all, err := repo.List(ctx, UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestUserGetByEmail(t *testing.T) {
	db := openTestDB(t, "user_email")
	seedUsers(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdministrator, user.Role)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserDeleteAndCount(t *testing.T) {
	db := openTestDB(t, "user_delete")
	_, _, candidate := seedUsers(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	count, err := repo.CountByRole(ctx, models.RoleAdministrator)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	require.NoError(t, repo.Delete(ctx, candidate.ID))
	require.ErrorIs(t, repo.Delete(ctx, candidate.ID), gorm.ErrRecordNotFound)
}
