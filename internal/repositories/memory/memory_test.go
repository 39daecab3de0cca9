package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentTripleMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository()
	require.NoError(t, repo.Create(ctx, &models.Comment{ID: "c1", Text: "Hello", UserID: "alice", TemplateID: "t1"}))

	cases := []struct {
		name, id, user, template string
	}{
		{"other author", "c1", "bob", "t1"},
		{"other template", "c1", "alice", "t2"},
		{"unknown comment", "c2", "alice", "t1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Update(ctx, tc.id, tc.user, tc.template, "changed")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, tc.id, tc.user, tc.template), repositories.ErrNotFound)

			stored, err := repo.FindByID(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, "Hello", stored.Text)
		})
	}

	updated, err := repo.Update(ctx, "c1", "alice", "t1", "Hello again")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", updated.Text)
	require.NoError(t, repo.Delete(ctx, "c1", "alice", "t1"))
	_, err = repo.FindByID(ctx, "c1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTemplateLikeGuards(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository()
	require.NoError(t, repo.Create(ctx, &models.Template{ID: "t1", Title: "Survey"}))

	likes, err := repo.AddLike(ctx, "t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	_, err = repo.AddLike(ctx, "t1", "alice")
	assert.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.RemoveLike(ctx, "t1", "bob")
	assert.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.AddLike(ctx, "missing", "alice")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	likes, err = repo.RemoveLike(ctx, "t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
}

func TestTemplateLikesMatchSetUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository()
	require.NoError(t, repo.Create(ctx, &models.Template{ID: "t1"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		user := fmt.Sprintf("user-%d", i%5)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.AddLike(ctx, "t1", user)
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.RemoveLike(ctx, "t1", user)
		}()
	}
	wg.Wait()

	tpl, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, len(tpl.LikedBy), tpl.Likes)
	assert.GreaterOrEqual(t, tpl.Likes, 0)
}

func TestTemplateUpdateKeepsLikeState(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository()
	require.NoError(t, repo.Create(ctx, &models.Template{ID: "t1", Title: "Old"}))
	_, err := repo.AddLike(ctx, "t1", "alice")
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, &models.Template{ID: "t1", Title: "New"}))

	tpl, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "New", tpl.Title)
	assert.Equal(t, 1, tpl.Likes)
	assert.Equal(t, []string{"alice"}, tpl.LikedBy)
}

func TestTemplateFindPaginatesAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Template{
			ID:     fmt.Sprintf("t%d", i),
			Title:  fmt.Sprintf("Form %d", i),
			Access: models.AccessPublic,
			Likes:  i,
			Tags:   []string{"golang"},
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Template{ID: "hidden", Title: "Form hidden", Access: models.AccessRestricted}))

	items, total, err := repo.Find(ctx, repositories.TemplateFilter{PublicOnly: true}, models.ListOptions{
		Page: 1, Limit: 2, Sort: []models.SortField{{Field: "likes", Desc: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "t4", items[0].ID)
	assert.Equal(t, "t3", items[1].ID)

	items, _, err = repo.Find(ctx, repositories.TemplateFilter{Search: "GOLANG"}, models.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 5)

	tags, err := repo.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.TagCount{{Tag: "golang", Count: 5}}, tags)
}
