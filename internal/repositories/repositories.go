package repositories

import (
	"context"
	"errors"

	"forms-service/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup or the guarded mutation.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a guarded like/unlike finds the set already in the requested state.
	ErrConflict = errors.New("record state conflict")
	// ErrDuplicate is returned on unique key violations.
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// FindIdentity loads only id, name, email, photo, status and role.
	FindIdentity(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, opts models.ListOptions) ([]models.User, int64, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	UpdateStatus(ctx context.Context, ids []string, status models.UserStatus) (int64, error)
	UpdateRole(ctx context.Context, ids []string, role models.Role) (int64, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Count(ctx context.Context, role models.Role) (int64, error)
}

// TemplateFilter narrows Find. Empty fields do not filter.
type TemplateFilter struct {
	CreatorID  string
	PublicOnly bool
	// Search matches title or tags, case-insensitive substring.
	Search string
}

type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	FindByID(ctx context.Context, id string) (*models.Template, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	Find(ctx context.Context, filter TemplateFilter, opts models.ListOptions) ([]models.Template, int64, error)
	TagCounts(ctx context.Context) ([]models.TagCount, error)
	Count(ctx context.Context) (int64, error)

	// AddLike adds userID to the like set and increments the counter in one guarded
	// operation. ErrNotFound when the template is missing, ErrConflict when already liked.
	AddLike(ctx context.Context, templateID, userID string) (int, error)
	// RemoveLike is the inverse of AddLike. ErrConflict when userID has not liked.
	RemoveLike(ctx context.Context, templateID, userID string) (int, error)
	// ClampLikes raises a negative counter back to zero.
	ClampLikes(ctx context.Context, templateID string) error
}

type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id string) (*models.Form, error)
	FindByTemplate(ctx context.Context, templateID string, opts models.ListOptions) ([]models.Form, int64, error)
	Count(ctx context.Context) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	FindByTemplate(ctx context.Context, templateID string) ([]models.Comment, error)
	// Update and Delete only touch a comment matching id, author and template together.
	Update(ctx context.Context, id, userID, templateID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id, userID, templateID string) error
	Search(ctx context.Context, query string, limit int) ([]models.Comment, error)
	Count(ctx context.Context) (int64, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Users     UserRepository
	Templates TemplateRepository
	Forms     FormRepository
	Comments  CommentRepository
	// Close releases the backend connection, nil for backends without one.
	Close func(ctx context.Context) error
}
