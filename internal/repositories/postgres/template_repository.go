package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

var templateColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"likes":     "likes",
	"title":     "title",
	"topic":     "topic",
}

func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", translate(err))
	}
	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.Template, error) {
	var template models.Template
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	if err := r.loadLikedBy(ctx, []*models.Template{&template}); err != nil {
		return nil, err
	}
	return &template, nil
}

// Update writes the editable columns. likes is owned by AddLike/RemoveLike.
func (r *TemplateRepository) Update(ctx context.Context, template *models.Template) error {
	res := r.db.WithContext(ctx).Model(template).
		Select("title", "description", "image", "topic", "tags", "access", "allowed_users", "questions", "updated_at").
		Updates(template)
	if res.Error != nil {
		return fmt.Errorf("failed to update template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Template{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return tx.Where("template_id = ?", id).Delete(&models.TemplateLike{}).Error
	})
}

func (r *TemplateRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ?", ids).Delete(&models.Template{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return tx.Where("template_id IN ?", ids).Delete(&models.TemplateLike{}).Error
	})
	return deleted, err
}

func (r *TemplateRepository) Find(ctx context.Context, filter repositories.TemplateFilter, opts models.ListOptions) ([]models.Template, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Template{})
	if filter.CreatorID != "" {
		q = q.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.PublicOnly {
		q = q.Where("access <> ?", models.AccessRestricted)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("LOWER(title) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var templates []models.Template
	if err := paginate(q, opts, templateColumns).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	ptrs := make([]*models.Template, len(templates))
	for i := range templates {
		ptrs[i] = &templates[i]
	}
	if err := r.loadLikedBy(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// TagCounts aggregates in process since tags are stored as a JSON column.
func (r *TemplateRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	var rows []models.Template
	if err := r.db.WithContext(ctx).Select("id", "tags").Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range rows {
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}
	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out, nil
}

func (r *TemplateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Template{}).Count(&count).Error
	return count, err
}

// AddLike locks the template row, inserts the like if absent and bumps the counter
// in the same transaction.
func (r *TemplateRepository) AddLike(ctx context.Context, templateID, userID string) (int, error) {
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTemplate(tx, templateID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.TemplateLike{TemplateID: templateID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrConflict
		}
		return bumpLikes(tx, templateID, 1, &likes)
	})
	return likes, err
}

func (r *TemplateRepository) RemoveLike(ctx context.Context, templateID, userID string) (int, error) {
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTemplate(tx, templateID); err != nil {
			return err
		}
		res := tx.Where("template_id = ? AND user_id = ?", templateID, userID).Delete(&models.TemplateLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrConflict
		}
		return bumpLikes(tx, templateID, -1, &likes)
	})
	return likes, err
}

func (r *TemplateRepository) ClampLikes(ctx context.Context, templateID string) error {
	return r.db.WithContext(ctx).Model(&models.Template{}).
		Where("id = ? AND likes < 0", templateID).
		UpdateColumn("likes", 0).Error
}

func lockTemplate(tx *gorm.DB, templateID string) error {
	var t models.Template
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", templateID).
		First(&t).Error
	return translate(err)
}

func bumpLikes(tx *gorm.DB, templateID string, delta int, likes *int) error {
	err := tx.Model(&models.Template{}).
		Where("id = ?", templateID).
		UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Template{}).Select("likes").Where("id = ?", templateID).Scan(likes).Error
}

func (r *TemplateRepository) loadLikedBy(ctx context.Context, templates []*models.Template) error {
	if len(templates) == 0 {
		return nil
	}
	byID := make(map[string]*models.Template, len(templates))
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		t.LikedBy = []string{}
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	var likes []models.TemplateLike
	err := r.db.WithContext(ctx).Where("template_id IN ?", ids).Order("created_at").Find(&likes).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	for _, l := range likes {
		if t, ok := byID[l.TemplateID]; ok {
			t.LikedBy = append(t.LikedBy, l.UserID)
		}
	}
	return nil
}
