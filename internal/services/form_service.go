package services

import (
	"context"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type FormService struct {
	forms     repositories.FormRepository
	templates repositories.TemplateRepository
	users     repositories.UserRepository
}

func NewFormService(store *repositories.Store) *FormService {
	return &FormService{forms: store.Forms, templates: store.Templates, users: store.Users}
}

// TemplateForForm returns the template a user is about to fill in. Anyone who may view
// the template may fill it.
func (s *FormService) TemplateForForm(ctx context.Context, user *models.User, templateID string) (*models.Template, error) {
	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, storeError(err, ErrTemplateNotFound, "find template")
	}
	if !CanView(user, template) {
		return nil, ErrCannotSubmitForm
	}
	return template, nil
}

func (s *FormService) Submit(ctx context.Context, user *models.User, templateID string, req *models.SubmitFormRequest) (*models.Form, error) {
	template, err := s.TemplateForForm(ctx, user, templateID)
	if err != nil {
		return nil, err
	}

	form := &models.Form{
		ID:         uuid.NewString(),
		Title:      "Submission for " + template.Title,
		TemplateID: template.ID,
		CreatorID:  user.ID,
		Answers:    req.Answers,
	}
	if form.Answers == nil {
		form.Answers = []models.Answer{}
	}
	if err := s.forms.Create(ctx, form); err != nil {
		return nil, storeError(err, nil, "create form")
	}
	return form, nil
}

// ByTemplate lists the submissions of a template for its owner or an admin.
func (s *FormService) ByTemplate(ctx context.Context, user *models.User, templateID string, opts models.ListOptions) ([]models.FormSubmission, int64, error) {
	template, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, 0, storeError(err, ErrTemplateNotFound, "find template")
	}
	if !CanManage(user, template) {
		return nil, 0, ErrAccessDenied
	}

	forms, total, err := s.forms.FindByTemplate(ctx, templateID, opts)
	if err != nil {
		return nil, 0, storeError(err, nil, "list forms")
	}

	ids := lo.Uniq(lo.Map(forms, func(f models.Form, _ int) string { return f.CreatorID }))
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, storeError(err, nil, "load submitters")
	}
	emails := lo.SliceToMap(users, func(u models.User) (string, string) { return u.ID, u.Email })

	out := lo.Map(forms, func(f models.Form, _ int) models.FormSubmission {
		return models.FormSubmission{Form: f, CreatorEmail: emails[f.CreatorID]}
	})
	return out, total, nil
}

// Get returns one submission to its submitter, the template owner, an admin, or anyone
// who can view the template.
func (s *FormService) Get(ctx context.Context, user *models.User, id string) (*models.FormSubmission, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrFormNotFound, "find form")
	}
	template, err := s.templates.FindByID(ctx, form.TemplateID)
	if err != nil {
		return nil, storeError(err, ErrTemplateNotFound, "find template")
	}

	isSubmitter := user != nil && form.CreatorID == user.ID
	if !isSubmitter && !CanView(user, template) {
		return nil, ErrAccessDenied
	}

	submission := &models.FormSubmission{Form: *form}
	if creator, err := s.users.FindByID(ctx, form.CreatorID); err == nil {
		submission.CreatorEmail = creator.Email
	}
	return submission, nil
}
