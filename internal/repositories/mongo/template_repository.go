package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository struct {
	coll *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{coll: db.Collection(TemplatesCollection)}
}

var templateSortable = map[string]bool{
	"createdAt": true, "updatedAt": true, "likes": true, "title": true, "topic": true,
}

func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	template.UpdatedAt = now
	// $addToSet and $pull need an array, never null.
	if template.LikedBy == nil {
		template.LikedBy = []string{}
	}
	if template.Tags == nil {
		template.Tags = []string{}
	}
	if template.AllowedUsers == nil {
		template.AllowedUsers = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, template); err != nil {
		return fmt.Errorf("failed to create template: %w", translate(err))
	}
	return nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.Template, error) {
	var template models.Template
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&template); err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

// Update sets the editable fields. likes and likedBy are owned by AddLike/RemoveLike.
func (r *TemplateRepository) Update(ctx context.Context, template *models.Template) error {
	template.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":        template.Title,
		"description":  template.Description,
		"image":        template.Image,
		"topic":        template.Topic,
		"tags":         template.Tags,
		"access":       template.Access,
		"allowedUsers": template.AllowedUsers,
		"questions":    template.Questions,
		"updatedAt":    template.UpdatedAt,
	}
	res, err := r.coll.UpdateByID(ctx, template.ID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *TemplateRepository) Find(ctx context.Context, filter repositories.TemplateFilter, opts models.ListOptions) ([]models.Template, int64, error) {
	query := bson.M{}
	if filter.CreatorID != "" {
		query["creator"] = filter.CreatorID
	}
	if filter.PublicOnly {
		query["access"] = bson.M{"$ne": models.AccessRestricted}
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"title": containsPattern(filter.Search)},
			bson.M{"tags": containsPattern(filter.Search)},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.coll.Find(ctx, query, findOptions(opts, templateSortable))
	if err != nil {
		return nil, 0, err
	}
	templates := make([]models.Template, 0)
	if err := cur.All(ctx, &templates); err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (r *TemplateRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	counts := make([]models.TagCount, 0)
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *TemplateRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// AddLike is one guarded update: it only matches while userID is absent from likedBy.
func (r *TemplateRepository) AddLike(ctx context.Context, templateID, userID string) (int, error) {
	filter := bson.M{"_id": templateID, "likedBy": bson.M{"$ne": userID}}
	update := bson.M{
		"$inc":      bson.M{"likes": 1},
		"$addToSet": bson.M{"likedBy": userID},
	}
	return r.toggleLike(ctx, templateID, filter, update)
}

// RemoveLike only matches while userID is present in likedBy.
func (r *TemplateRepository) RemoveLike(ctx context.Context, templateID, userID string) (int, error) {
	filter := bson.M{"_id": templateID, "likedBy": userID}
	update := bson.M{
		"$inc":  bson.M{"likes": -1},
		"$pull": bson.M{"likedBy": userID},
	}
	return r.toggleLike(ctx, templateID, filter, update)
}

func (r *TemplateRepository) toggleLike(ctx context.Context, templateID string, filter, update bson.M) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var out struct {
		Likes int `bson:"likes"`
	}
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return out.Likes, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}

	// No match: either the template is gone or the set was already in the requested state.
	n, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": templateID}, options.Count().SetLimit(1))
	if countErr != nil {
		return 0, countErr
	}
	if n == 0 {
		return 0, repositories.ErrNotFound
	}
	return 0, repositories.ErrConflict
}

func (r *TemplateRepository) ClampLikes(ctx context.Context, templateID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": templateID, "likes": bson.M{"$lt": 0}},
		bson.M{"$set": bson.M{"likes": 0}},
	)
	return err
}
