package services

import (
	"context"
	"testing"

	"forms-service/internal/models"
	"forms-service/internal/repositories"
	"forms-service/internal/repositories/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures activity events synchronously.
type recordingPublisher struct {
	events []ActivityEvent
}

func (r *recordingPublisher) Publish(_ context.Context, e ActivityEvent) { r.events = append(r.events, e) }
func (r *recordingPublisher) Close() error                             { return nil }

func createUser(t *testing.T, store *repositories.Store, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		ID:     uuid.NewString(),
		Name:   name,
		Email:  name + "@example.com",
		Photo:  name + ".png",
		Status: models.StatusActive,
		Role:   role,
	}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func createTemplate(t *testing.T, store *repositories.Store, creator *models.User, access models.Access, allowed ...string) *models.Template {
	t.Helper()
	tpl := &models.Template{
		ID:           uuid.NewString(),
		Title:        "Survey",
		CreatorID:    creator.ID,
		Access:       access,
		AllowedUsers: allowed,
		Tags:         []string{"go"},
		LikedBy:      []string{},
	}
	require.NoError(t, store.Templates.Create(context.Background(), tpl))
	return tpl
}

func newStore() *repositories.Store {
	return memory.New()
}
