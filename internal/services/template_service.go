package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

const (
	tagCountsCacheKey = "templates:tag-counts"
	tagCountsCacheTTL = time.Minute
)

type TemplateService struct {
	templates repositories.TemplateRepository
	cache     *RedisService
}

// NewTemplateService builds the service. cache may be nil.
func NewTemplateService(store *repositories.Store, cache *RedisService) *TemplateService {
	return &TemplateService{templates: store.Templates, cache: cache}
}

// CanManage reports whether user may update or delete the template: its creator or an admin.
func CanManage(user *models.User, t *models.Template) bool {
	return user != nil && (user.IsAdmin() || t.IsOwner(user.ID))
}

// CanView reports whether user (nil for guests) may read the template.
func CanView(user *models.User, t *models.Template) bool {
	if t.IsPublic() {
		return true
	}
	return user != nil && (CanManage(user, t) || t.IsAllowed(user.ID))
}

func (s *TemplateService) Create(ctx context.Context, creator *models.User, req *models.CreateTemplateRequest) (*models.Template, error) {
	template := &models.Template{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Image:        req.Image,
		Topic:        req.Topic,
		Tags:         normalizeTags(req.Tags),
		CreatorID:    creator.ID,
		Access:       lo.Ternary(req.Access == "", models.AccessPublic, req.Access),
		AllowedUsers: lo.Uniq(lo.Compact(req.AllowedUsers)),
		Questions:    normalizeQuestions(req.Questions),
		LikedBy:      []string{},
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, storeError(err, nil, "create template")
	}
	s.invalidateTags(ctx)
	return template, nil
}

func (s *TemplateService) Get(ctx context.Context, viewer *models.User, id string) (*models.Template, error) {
	template, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrTemplateNotFound, "find template")
	}
	if !CanView(viewer, template) {
		return nil, ErrAccessDenied
	}
	return template, nil
}

func (s *TemplateService) Update(ctx context.Context, user *models.User, id string, req *models.UpdateTemplateRequest) (*models.Template, error) {
	template, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrTemplateNotFound, "find template")
	}
	if !CanManage(user, template) {
		return nil, ErrCannotUpdateTemplate
	}

	if req.Title != nil {
		template.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.Image != nil {
		template.Image = *req.Image
	}
	if req.Topic != nil {
		template.Topic = *req.Topic
	}
	if req.Tags != nil {
		template.Tags = normalizeTags(*req.Tags)
	}
	if req.Access != nil {
		template.Access = *req.Access
	}
	if req.AllowedUsers != nil {
		template.AllowedUsers = lo.Uniq(lo.Compact(*req.AllowedUsers))
	}
	if req.Questions != nil {
		template.Questions = normalizeQuestions(*req.Questions)
	}

	if err := s.templates.Update(ctx, template); err != nil {
		return nil, storeError(err, ErrTemplateNotFound, "update template")
	}
	if req.Tags != nil {
		s.invalidateTags(ctx)
	}
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, user *models.User, id string) error {
	template, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return storeError(err, ErrTemplateNotFound, "find template")
	}
	if !CanManage(user, template) {
		return ErrCannotDeleteTemplate
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return storeError(err, ErrTemplateNotFound, "delete template")
	}
	s.invalidateTags(ctx)
	return nil
}

// Mine lists the templates created by user.
func (s *TemplateService) Mine(ctx context.Context, user *models.User, opts models.ListOptions) ([]models.Template, int64, error) {
	items, total, err := s.templates.Find(ctx, repositories.TemplateFilter{CreatorID: user.ID}, opts)
	if err != nil {
		return nil, 0, storeError(err, nil, "list own templates")
	}
	return items, total, nil
}

// All lists every template, for admins.
func (s *TemplateService) All(ctx context.Context, opts models.ListOptions) ([]models.Template, int64, error) {
	items, total, err := s.templates.Find(ctx, repositories.TemplateFilter{}, opts)
	if err != nil {
		return nil, 0, storeError(err, nil, "list templates")
	}
	return items, total, nil
}

func (s *TemplateService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return 0, ErrNoTemplateIDs
	}
	n, err := s.templates.DeleteMany(ctx, ids)
	if err != nil {
		return 0, storeError(err, nil, "delete templates")
	}
	s.invalidateTags(ctx)
	return n, nil
}

func (s *TemplateService) Latest(ctx context.Context, limit int) ([]models.Template, error) {
	return s.public(ctx, limit, models.SortField{Field: "createdAt", Desc: true})
}

func (s *TemplateService) PopularByLikes(ctx context.Context, limit int) ([]models.Template, error) {
	return s.public(ctx, limit, models.SortField{Field: "likes", Desc: true}, models.SortField{Field: "createdAt", Desc: true})
}

func (s *TemplateService) public(ctx context.Context, limit int, sort ...models.SortField) ([]models.Template, error) {
	items, _, err := s.templates.Find(ctx, repositories.TemplateFilter{PublicOnly: true}, models.ListOptions{Limit: limit, Sort: sort})
	if err != nil {
		return nil, storeError(err, nil, "list public templates")
	}
	return items, nil
}

// TagCounts returns how many templates use each tag, cached in Redis when available.
func (s *TemplateService) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	if s.cache != nil {
		var cached []models.TagCount
		err := s.cache.Get(ctx, tagCountsCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Failed to read tag counts cache", "error", err)
		}
	}

	counts, err := s.templates.TagCounts(ctx)
	if err != nil {
		return nil, storeError(err, nil, "count tags")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, tagCountsCacheKey, counts, tagCountsCacheTTL); err != nil {
			slog.Warn("Failed to cache tag counts", "error", err)
		}
	}
	return counts, nil
}

func (s *TemplateService) invalidateTags(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, tagCountsCacheKey); err != nil {
		slog.Warn("Failed to invalidate tag counts cache", "error", err)
	}
}

func normalizeTags(tags []string) []string {
	out := lo.Uniq(lo.Compact(lo.Map(tags, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})))
	if out == nil {
		return []string{}
	}
	return out
}

func normalizeQuestions(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		for j := range q.Options {
			if q.Options[j].ID == "" {
				q.Options[j].ID = uuid.NewString()
			}
		}
		out[i] = q
	}
	return out
}
