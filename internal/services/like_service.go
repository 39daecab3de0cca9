package services

import (
	"context"
	"errors"
	"log/slog"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/samber/lo"
)

// LikeService toggles a user's like on a template. The counter and the like set are changed
// together by one guarded store operation.
type LikeService struct {
	templates repositories.TemplateRepository
	activity  ActivityPublisher
}

func NewLikeService(store *repositories.Store, activity ActivityPublisher) *LikeService {
	if activity == nil {
		activity = NoopActivityPublisher{}
	}
	return &LikeService{templates: store.Templates, activity: activity}
}

func (s *LikeService) Like(ctx context.Context, userID, templateID string) (*models.LikeResult, error) {
	likes, err := s.templates.AddLike(ctx, templateID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrAlreadyLiked
		}
		return nil, storeError(err, ErrTemplateNotFound, "add like")
	}

	s.activity.Publish(ctx, ActivityEvent{
		Type:       ActivityTemplateLiked,
		TemplateID: templateID,
		UserID:     userID,
		Likes:      lo.ToPtr(likes),
	})
	return &models.LikeResult{
		TemplateID: templateID,
		Likes:      likes,
		Action:     models.LikeIncreased,
		UserID:     userID,
	}, nil
}

func (s *LikeService) Unlike(ctx context.Context, userID, templateID string) (*models.LikeResult, error) {
	likes, err := s.templates.RemoveLike(ctx, templateID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrNotLiked
		}
		return nil, storeError(err, ErrTemplateNotFound, "remove like")
	}

	// Only rows that drifted before likes moved together with likedBy can go negative.
	if likes < 0 {
		slog.Warn("Like counter below zero, clamping", "templateID", templateID, "likes", likes)
		if err := s.templates.ClampLikes(ctx, templateID); err != nil {
			return nil, storeError(err, nil, "clamp likes")
		}
		likes = 0
	}

	s.activity.Publish(ctx, ActivityEvent{
		Type:       ActivityTemplateUnliked,
		TemplateID: templateID,
		UserID:     userID,
		Likes:      lo.ToPtr(likes),
	})
	return &models.LikeResult{
		TemplateID: templateID,
		Likes:      likes,
		Action:     models.LikeDecreased,
		UserID:     userID,
	}, nil
}
