package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"
)

type CommentRepository struct {
	mu       sync.RWMutex
	comments map[string]models.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[string]models.Comment)}
}

func (r *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[comment.ID]; ok {
		return repositories.ErrDuplicate
	}
	touch(&comment.CreatedAt, &comment.UpdatedAt)
	c := *comment
	c.Author = nil
	r.comments[comment.ID] = c
	return nil
}

func (r *CommentRepository) FindByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *CommentRepository) FindByTemplate(_ context.Context, templateID string) ([]models.Comment, error) {
	r.mu.RLock()
	out := make([]models.Comment, 0)
	for _, c := range r.comments {
		if c.TemplateID == templateID {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (r *CommentRepository) Update(_ context.Context, id, userID, templateID, text string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok || c.UserID != userID || c.TemplateID != templateID {
		return nil, repositories.ErrNotFound
	}
	c.Text = text
	c.UpdatedAt = time.Now().UTC()
	r.comments[id] = c
	return &c, nil
}

func (r *CommentRepository) Delete(_ context.Context, id, userID, templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok || c.UserID != userID || c.TemplateID != templateID {
		return repositories.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *CommentRepository) Search(_ context.Context, query string, limit int) ([]models.Comment, error) {
	r.mu.RLock()
	out := make([]models.Comment, 0)
	for _, c := range r.comments {
		if containsFold(c.Text, query) {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CommentRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.comments)), nil
}

func sortNewestFirst(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}
