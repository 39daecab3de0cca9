package services

import (
	"context"
	"testing"

	"forms-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormSubmitAccess(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewFormService(store)
	owner := createUser(t, store, "owner", models.RoleUser)
	friend := createUser(t, store, "friend", models.RoleUser)
	stranger := createUser(t, store, "stranger", models.RoleUser)
	restricted := createTemplate(t, store, owner, models.AccessRestricted, friend.ID)

	req := &models.SubmitFormRequest{Answers: []models.Answer{{ID: "q1", Text: "Name", Answer: "Ann"}}}

	_, err := svc.Submit(ctx, stranger, restricted.ID, req)
	assert.ErrorIs(t, err, ErrCannotSubmitForm)

	form, err := svc.Submit(ctx, friend, restricted.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Submission for Survey", form.Title)
	assert.Equal(t, friend.ID, form.CreatorID)

	_, err = svc.Submit(ctx, friend, "missing", req)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestFormReadAccess(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewFormService(store)
	owner := createUser(t, store, "owner", models.RoleUser)
	friend := createUser(t, store, "friend", models.RoleUser)
	stranger := createUser(t, store, "stranger", models.RoleUser)
	restricted := createTemplate(t, store, owner, models.AccessRestricted, friend.ID)

	form, err := svc.Submit(ctx, friend, restricted.ID, &models.SubmitFormRequest{})
	require.NoError(t, err)

	_, _, err = svc.ByTemplate(ctx, friend, restricted.ID, models.ListOptions{})
	assert.ErrorIs(t, err, ErrAccessDenied)

	subs, total, err := svc.ByTemplate(ctx, owner, restricted.ID, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, subs, 1)
	assert.Equal(t, "friend@example.com", subs[0].CreatorEmail)

	got, err := svc.Get(ctx, friend, form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.ID, got.ID)

	_, err = svc.Get(ctx, stranger, form.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Get(ctx, owner, "missing")
	assert.ErrorIs(t, err, ErrFormNotFound)
}
