package mongo

import (
	"context"
	"fmt"
	"time"

	"forms-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type FormRepository struct {
	coll *mongo.Collection
}

func NewFormRepository(db *mongo.Database) *FormRepository {
	return &FormRepository{coll: db.Collection(FormsCollection)}
}

var formSortable = map[string]bool{"createdAt": true, "updatedAt": true, "title": true}

func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	now := time.Now().UTC()
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, form); err != nil {
		return fmt.Errorf("failed to create form: %w", translate(err))
	}
	return nil
}

func (r *FormRepository) FindByID(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&form); err != nil {
		return nil, translate(err)
	}
	return &form, nil
}

func (r *FormRepository) FindByTemplate(ctx context.Context, templateID string, opts models.ListOptions) ([]models.Form, int64, error) {
	filter := bson.M{"template": templateID}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.coll.Find(ctx, filter, findOptions(opts, formSortable))
	if err != nil {
		return nil, 0, err
	}
	forms := make([]models.Form, 0)
	if err := cur.All(ctx, &forms); err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

func (r *FormRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
