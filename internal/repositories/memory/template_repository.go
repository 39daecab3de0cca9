package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/samber/lo"
)

type TemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]models.Template
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{templates: make(map[string]models.Template)}
}

func cloneTemplate(t models.Template) models.Template {
	t.Tags = slices.Clone(t.Tags)
	t.AllowedUsers = slices.Clone(t.AllowedUsers)
	t.Questions = slices.Clone(t.Questions)
	t.LikedBy = slices.Clone(t.LikedBy)
	return t
}

func (r *TemplateRepository) Create(_ context.Context, template *models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[template.ID]; ok {
		return repositories.ErrDuplicate
	}
	touch(&template.CreatedAt, &template.UpdatedAt)
	r.templates[template.ID] = cloneTemplate(*template)
	return nil
}

func (r *TemplateRepository) FindByID(_ context.Context, id string) (*models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	t = cloneTemplate(t)
	return &t, nil
}

// Update replaces the editable fields. The like state is owned by AddLike/RemoveLike.
func (r *TemplateRepository) Update(_ context.Context, template *models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.templates[template.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	next := cloneTemplate(*template)
	next.Likes = stored.Likes
	next.LikedBy = stored.LikedBy
	next.CreatedAt = stored.CreatedAt
	touch(&next.CreatedAt, &next.UpdatedAt)
	r.templates[template.ID] = next
	template.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *TemplateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

func (r *TemplateRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range lo.Uniq(ids) {
		if _, ok := r.templates[id]; ok {
			delete(r.templates, id)
			n++
		}
	}
	return n, nil
}

func (r *TemplateRepository) Find(_ context.Context, filter repositories.TemplateFilter, opts models.ListOptions) ([]models.Template, int64, error) {
	r.mu.RLock()
	matched := make([]models.Template, 0)
	for _, t := range r.templates {
		if filter.CreatorID != "" && t.CreatorID != filter.CreatorID {
			continue
		}
		if filter.PublicOnly && !t.IsPublic() {
			continue
		}
		if filter.Search != "" && !containsFold(t.Title, filter.Search) &&
			!lo.SomeBy(t.Tags, func(tag string) bool { return containsFold(tag, filter.Search) }) {
			continue
		}
		matched = append(matched, cloneTemplate(t))
	}
	r.mu.RUnlock()

	return page(matched, opts, templateSortFields), int64(len(matched)), nil
}

func (r *TemplateRepository) TagCounts(_ context.Context) ([]models.TagCount, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, t := range r.templates {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	r.mu.RUnlock()

	out := lo.MapToSlice(counts, func(tag string, n int) models.TagCount {
		return models.TagCount{Tag: tag, Count: n}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (r *TemplateRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.templates)), nil
}

func (r *TemplateRepository) AddLike(_ context.Context, templateID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.templates[templateID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if t.LikedByUser(userID) {
		return 0, repositories.ErrConflict
	}
	t.LikedBy = append(slices.Clone(t.LikedBy), userID)
	t.Likes++
	r.templates[templateID] = t
	return t.Likes, nil
}

func (r *TemplateRepository) RemoveLike(_ context.Context, templateID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.templates[templateID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if !t.LikedByUser(userID) {
		return 0, repositories.ErrConflict
	}
	t.LikedBy = lo.Without(t.LikedBy, userID)
	t.Likes--
	r.templates[templateID] = t
	return t.Likes, nil
}

func (r *TemplateRepository) ClampLikes(_ context.Context, templateID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.templates[templateID]
	if !ok {
		return repositories.ErrNotFound
	}
	if t.Likes < 0 {
		t.Likes = 0
		r.templates[templateID] = t
	}
	return nil
}

var templateSortFields = map[string]func(a, b models.Template) int{
	"createdAt": func(a, b models.Template) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updatedAt": func(a, b models.Template) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
	"likes":     func(a, b models.Template) int { return compareInt(a.Likes, b.Likes) },
	"title":     func(a, b models.Template) int { return strings.Compare(a.Title, b.Title) },
	"topic":     func(a, b models.Template) int { return strings.Compare(a.Topic, b.Topic) },
}
