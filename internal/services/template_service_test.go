package services

import (
	"context"
	"testing"

	"forms-service/internal/models"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateAccess(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewTemplateService(store, nil)
	owner := createUser(t, store, "owner", models.RoleUser)
	friend := createUser(t, store, "friend", models.RoleUser)
	stranger := createUser(t, store, "stranger", models.RoleUser)
	admin := createUser(t, store, "admin", models.RoleAdmin)

	restricted := createTemplate(t, store, owner, models.AccessRestricted, friend.ID)
	public := createTemplate(t, store, owner, models.AccessPublic)

	cases := []struct {
		name    string
		viewer  *models.User
		id      string
		allowed bool
	}{
		{"guest on public", nil, public.ID, true},
		{"guest on restricted", nil, restricted.ID, false},
		{"stranger on restricted", stranger, restricted.ID, false},
		{"allowed user", friend, restricted.ID, true},
		{"owner", owner, restricted.ID, true},
		{"admin", admin, restricted.ID, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Get(ctx, tc.viewer, tc.id)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.id, got.ID)
			} else {
				assert.ErrorIs(t, err, ErrAccessDenied)
			}
		})
	}

	_, err := svc.Get(ctx, owner, "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateCreateNormalizes(t *testing.T) {
	store := newStore()
	svc := NewTemplateService(store, nil)
	owner := createUser(t, store, "owner", models.RoleUser)

	tpl, err := svc.Create(context.Background(), owner, &models.CreateTemplateRequest{
		Title: "  Feedback ",
		Tags:  []string{"Go", " go", "", "Forms"},
		Questions: []models.Question{
			{Type: models.QuestionCheckbox, Text: "Pick", Options: []models.CheckboxOption{{Text: "A"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Feedback", tpl.Title)
	assert.Equal(t, models.AccessPublic, tpl.Access)
	assert.Equal(t, []string{"go", "forms"}, tpl.Tags)
	assert.NotEmpty(t, tpl.Questions[0].ID)
	assert.NotEmpty(t, tpl.Questions[0].Options[0].ID)
	assert.Equal(t, owner.ID, tpl.CreatorID)
}

func TestTemplateUpdateAndDeleteRequireOwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewTemplateService(store, nil)
	owner := createUser(t, store, "owner", models.RoleUser)
	stranger := createUser(t, store, "stranger", models.RoleUser)
	admin := createUser(t, store, "admin", models.RoleAdmin)
	tpl := createTemplate(t, store, owner, models.AccessPublic)

	_, err := svc.Update(ctx, stranger, tpl.ID, &models.UpdateTemplateRequest{Title: lo.ToPtr("x")})
	assert.ErrorIs(t, err, ErrCannotUpdateTemplate)

	updated, err := svc.Update(ctx, admin, tpl.ID, &models.UpdateTemplateRequest{Title: lo.ToPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, []string{"go"}, updated.Tags)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, tpl.ID), ErrCannotDeleteTemplate)
	require.NoError(t, svc.Delete(ctx, owner, tpl.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, tpl.ID), ErrTemplateNotFound)
}

func TestTemplateListings(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewTemplateService(store, nil)
	owner := createUser(t, store, "owner", models.RoleUser)
	other := createUser(t, store, "other", models.RoleUser)

	a := createTemplate(t, store, owner, models.AccessPublic)
	createTemplate(t, store, owner, models.AccessRestricted)
	b := createTemplate(t, store, other, models.AccessPublic)
	_, err := store.Templates.AddLike(ctx, b.ID, "someone")
	require.NoError(t, err)

	mine, total, err := svc.Mine(ctx, owner, models.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	popular, err := svc.PopularByLikes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, b.ID, popular[0].ID)
	assert.Equal(t, a.ID, popular[1].ID)

	tags, err := svc.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.TagCount{{Tag: "go", Count: 3}}, tags)

	n, err := svc.DeleteMany(ctx, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.DeleteMany(ctx, nil)
	assert.ErrorIs(t, err, ErrNoTemplateIDs)
}
