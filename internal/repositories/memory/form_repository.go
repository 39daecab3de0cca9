package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"forms-service/internal/models"
	"forms-service/internal/repositories"
)

type FormRepository struct {
	mu    sync.RWMutex
	forms map[string]models.Form
}

func NewFormRepository() *FormRepository {
	return &FormRepository{forms: make(map[string]models.Form)}
}

func (r *FormRepository) Create(_ context.Context, form *models.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forms[form.ID]; ok {
		return repositories.ErrDuplicate
	}
	touch(&form.CreatedAt, &form.UpdatedAt)
	f := *form
	f.Answers = slices.Clone(form.Answers)
	r.forms[form.ID] = f
	return nil
}

func (r *FormRepository) FindByID(_ context.Context, id string) (*models.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.forms[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	f.Answers = slices.Clone(f.Answers)
	return &f, nil
}

func (r *FormRepository) FindByTemplate(_ context.Context, templateID string, opts models.ListOptions) ([]models.Form, int64, error) {
	r.mu.RLock()
	matched := make([]models.Form, 0)
	for _, f := range r.forms {
		if f.TemplateID == templateID {
			f.Answers = slices.Clone(f.Answers)
			matched = append(matched, f)
		}
	}
	r.mu.RUnlock()

	return page(matched, opts, formSortFields), int64(len(matched)), nil
}

func (r *FormRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.forms)), nil
}

var formSortFields = map[string]func(a, b models.Form) int{
	"createdAt": func(a, b models.Form) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updatedAt": func(a, b models.Form) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
	"title":     func(a, b models.Form) int { return strings.Compare(a.Title, b.Title) },
}
