package services

import (
	"context"
	"testing"

	"forms-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserBulkActions(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewUserService(store.Users, nil)
	ann := createUser(t, store, "ann", models.RoleUser)
	bob := createUser(t, store, "bob", models.RoleUser)

	msg, err := svc.Block(ctx, []string{ann.ID, bob.ID, ann.ID, "", "missing"})
	require.NoError(t, err)
	assert.Equal(t, "Blocked 2 user(s).", msg)

	users, err := svc.ByIDs(ctx, []string{ann.ID, bob.ID})
	require.NoError(t, err)
	for _, u := range users {
		assert.True(t, u.IsBlocked())
	}

	msg, err = svc.MakeAdmin(ctx, []string{bob.ID})
	require.NoError(t, err)
	assert.Equal(t, "Changed to Admin 1 user(s).", msg)

	msg, err = svc.Delete(ctx, []string{ann.ID})
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 user(s).", msg)

	_, total, err := svc.List(ctx, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, err = svc.Unblock(ctx, []string{""})
	assert.ErrorIs(t, err, ErrNoUserIDs)
}

type fixedOnline []string

func (f fixedOnline) GetOnlineUsers(context.Context) ([]string, error) { return f, nil }

func TestUserOnline(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	ann := createUser(t, store, "ann", models.RoleUser)
	createUser(t, store, "bob", models.RoleUser)

	users, err := NewUserService(store.Users, nil).Online(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = NewUserService(store.Users, fixedOnline{ann.ID, "gone"}).Online(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, ann.ID, users[0].ID)
}
