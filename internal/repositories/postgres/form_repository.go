package postgres

import (
	"context"
	"fmt"

	"forms-service/internal/models"

	"gorm.io/gorm"
)

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

var formColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
}

func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	if err := r.db.WithContext(ctx).Create(form).Error; err != nil {
		return fmt.Errorf("failed to create form: %w", translate(err))
	}
	return nil
}

func (r *FormRepository) FindByID(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&form).Error; err != nil {
		return nil, translate(err)
	}
	return &form, nil
}

func (r *FormRepository) FindByTemplate(ctx context.Context, templateID string, opts models.ListOptions) ([]models.Form, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Form{}).Where("template_id = ?", templateID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var forms []models.Form
	if err := paginate(q, opts, formColumns).Find(&forms).Error; err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

func (r *FormRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Form{}).Count(&count).Error
	return count, err
}
