package services

import (
	"context"
	"testing"

	"forms-service/internal/models"
	"forms-service/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreate(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pub := &recordingPublisher{}
	svc := NewCommentService(store, pub)
	alice := createUser(t, store, "alice", models.RoleUser)
	tpl := createTemplate(t, store, alice, models.AccessPublic)

	comment, err := svc.Create(ctx, alice.Session(), tpl.ID, "  Hello  ")
	require.NoError(t, err)
	assert.Equal(t, "Hello", comment.Text)
	assert.Equal(t, alice.ID, comment.UserID)
	require.NotNil(t, comment.Author)
	assert.Equal(t, "alice", comment.Author.Name)
	assert.Equal(t, "alice.png", comment.Author.Photo)

	require.Len(t, pub.events, 1)
	assert.Equal(t, ActivityCommentCreated, pub.events[0].Type)
	assert.Equal(t, comment.ID, pub.events[0].CommentID)
}

func TestCommentCreateRejectsBlankText(t *testing.T) {
	store := newStore()
	svc := NewCommentService(store, nil)
	alice := createUser(t, store, "alice", models.RoleUser)
	tpl := createTemplate(t, store, alice, models.AccessPublic)

	_, err := svc.Create(context.Background(), alice.Session(), tpl.ID, " \n\t ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "Comment cannot be empty", apperror.PublicMessage(err))

	comments, err := svc.ListByTemplate(context.Background(), tpl.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentCreateUnknownTemplate(t *testing.T) {
	store := newStore()
	svc := NewCommentService(store, nil)
	alice := createUser(t, store, "alice", models.RoleUser)

	_, err := svc.Create(context.Background(), alice.Session(), "missing", "Hello")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestCommentEditAndDeleteRequireAuthorAndTemplate(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewCommentService(store, nil)
	alice := createUser(t, store, "alice", models.RoleUser)
	bob := createUser(t, store, "bob", models.RoleAdmin)
	tpl := createTemplate(t, store, alice, models.AccessPublic)
	other := createTemplate(t, store, alice, models.AccessPublic)

	comment, err := svc.Create(ctx, alice.Session(), tpl.ID, "Hello")
	require.NoError(t, err)

	_, err = svc.Edit(ctx, bob.Session(), comment.ID, tpl.ID, "hijack")
	assert.ErrorIs(t, err, ErrCommentEdit)
	assert.Equal(t, "Comment not found or not authorized to edit", apperror.PublicMessage(err))

	_, err = svc.Edit(ctx, alice.Session(), comment.ID, other.ID, "moved")
	assert.ErrorIs(t, err, ErrCommentEdit)

	_, err = svc.Delete(ctx, bob.Session(), comment.ID, tpl.ID)
	assert.ErrorIs(t, err, ErrCommentDelete)
	assert.Equal(t, "Comment not found or not authorized to delete", apperror.PublicMessage(err))

	stored, err := store.Comments.FindByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Text)

	edited, err := svc.Edit(ctx, alice.Session(), comment.ID, tpl.ID, "Hello again")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", edited.Text)
	assert.Equal(t, "alice", edited.Author.Name)

	deleted, err := svc.Delete(ctx, alice.Session(), comment.ID, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, deleted.CommentID)
	assert.False(t, deleted.DeletedAt.IsZero())
}

func TestCommentListPopulatesAuthorsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewCommentService(store, nil)
	alice := createUser(t, store, "alice", models.RoleUser)
	bob := createUser(t, store, "bob", models.RoleUser)
	tpl := createTemplate(t, store, alice, models.AccessPublic)

	_, err := svc.Create(ctx, alice.Session(), tpl.ID, "first")
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.Session(), tpl.ID, "second")
	require.NoError(t, err)

	comments, err := svc.ListByTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	for _, c := range comments {
		require.NotNil(t, c.Author)
		assert.Equal(t, c.UserID, c.Author.ID)
	}
	assert.False(t, comments[0].CreatedAt.Before(comments[1].CreatedAt))
}
