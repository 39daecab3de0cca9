package mongo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// testDatabase connects to MONGO_URI (or localhost) and skips when no server answers.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB not available: %v", err)
	}

	db := client.Database("forms_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestTemplateLikeIsGuarded(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewTemplateRepository(db)

	tpl := &models.Template{ID: uuid.NewString(), Title: "Survey"}
	require.NoError(t, repo.Create(ctx, tpl))

	likes, err := repo.AddLike(ctx, tpl.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	_, err = repo.AddLike(ctx, tpl.ID, "alice")
	assert.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.RemoveLike(ctx, tpl.ID, "bob")
	assert.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.AddLike(ctx, uuid.NewString(), "alice")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	likes, err = repo.RemoveLike(ctx, tpl.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, likes)
}

func TestTemplateLikesStayConsistentUnderRace(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewTemplateRepository(db)

	tpl := &models.Template{ID: uuid.NewString()}
	require.NoError(t, repo.Create(ctx, tpl))

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = repo.AddLike(ctx, tpl.ID, "alice")
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.RemoveLike(ctx, tpl.ID, "alice")
		}()
	}
	wg.Wait()

	stored, err := repo.FindByID(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, len(stored.LikedBy), stored.Likes)
}

func TestCommentMutationsRequireTripleMatch(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	c := &models.Comment{ID: uuid.NewString(), Text: "Hello", UserID: "alice", TemplateID: "t1"}
	require.NoError(t, repo.Create(ctx, c))

	_, err := repo.Update(ctx, c.ID, "bob", "t1", "hijacked")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID, "alice", "t2"), repositories.ErrNotFound)

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Text)

	updated, err := repo.Update(ctx, c.ID, "alice", "t1", "Hello again")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", updated.Text)
}

func TestUserEmailIsUnique(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(ctx, &models.User{ID: uuid.NewString(), Name: "A", Email: "a@example.com"}))
	err := repo.Create(ctx, &models.User{ID: uuid.NewString(), Name: "B", Email: "A@example.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}
