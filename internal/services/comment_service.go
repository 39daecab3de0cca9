package services

import (
	"context"
	"strings"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type CommentService struct {
	comments  repositories.CommentRepository
	templates repositories.TemplateRepository
	users     repositories.UserRepository
	activity  ActivityPublisher
}

func NewCommentService(store *repositories.Store, activity ActivityPublisher) *CommentService {
	if activity == nil {
		activity = NoopActivityPublisher{}
	}
	return &CommentService{
		comments:  store.Comments,
		templates: store.Templates,
		users:     store.Users,
		activity:  activity,
	}
}

// Create stores a comment by the session user on templateID. The returned comment carries its author.
func (s *CommentService) Create(ctx context.Context, session models.Session, templateID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}
	if _, err := s.templates.FindByID(ctx, templateID); err != nil {
		return nil, storeError(err, ErrTemplateNotFound, "find template")
	}

	comment := &models.Comment{
		ID:         uuid.NewString(),
		Text:       text,
		UserID:     session.ID,
		TemplateID: templateID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, nil, "create comment")
	}
	comment.Author = session.Author()

	s.activity.Publish(ctx, ActivityEvent{
		Type:       ActivityCommentCreated,
		TemplateID: templateID,
		UserID:     session.ID,
		CommentID:  comment.ID,
	})
	return comment, nil
}

// Edit rewrites the text of a comment only when id, author and template all match.
func (s *CommentService) Edit(ctx context.Context, session models.Session, commentID, templateID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentEmpty
	}

	comment, err := s.comments.Update(ctx, commentID, session.ID, templateID, text)
	if err != nil {
		return nil, storeError(err, ErrCommentEdit, "update comment")
	}
	comment.Author = session.Author()

	s.activity.Publish(ctx, ActivityEvent{
		Type:       ActivityCommentUpdated,
		TemplateID: templateID,
		UserID:     session.ID,
		CommentID:  comment.ID,
	})
	return comment, nil
}

// Delete removes a comment only when id, author and template all match.
func (s *CommentService) Delete(ctx context.Context, session models.Session, commentID, templateID string) (*models.CommentDeleted, error) {
	if err := s.comments.Delete(ctx, commentID, session.ID, templateID); err != nil {
		return nil, storeError(err, ErrCommentDelete, "delete comment")
	}

	deleted := &models.CommentDeleted{CommentID: commentID, DeletedAt: time.Now().UTC()}
	s.activity.Publish(ctx, ActivityEvent{
		Type:       ActivityCommentDeleted,
		TemplateID: templateID,
		UserID:     session.ID,
		CommentID:  commentID,
		At:         deleted.DeletedAt,
	})
	return deleted, nil
}

// ListByTemplate returns the comments newest first with their authors resolved.
func (s *CommentService) ListByTemplate(ctx context.Context, templateID string) ([]models.Comment, error) {
	comments, err := s.comments.FindByTemplate(ctx, templateID)
	if err != nil {
		return nil, storeError(err, nil, "list comments")
	}
	if err := s.populateAuthors(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) populateAuthors(ctx context.Context, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := lo.Uniq(lo.Map(comments, func(c models.Comment, _ int) string { return c.UserID }))
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return storeError(err, nil, "load comment authors")
	}
	byID := lo.KeyBy(users, func(u models.User) string { return u.ID })
	for i := range comments {
		if u, ok := byID[comments[i].UserID]; ok {
			comments[i].Author = u.Author()
		}
	}
	return nil
}
