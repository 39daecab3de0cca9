package mongo

import (
	"context"
	"fmt"
	"time"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository struct {
	coll *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{coll: db.Collection(CommentsCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", translate(err))
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) FindByTemplate(ctx context.Context, templateID string) ([]models.Comment, error) {
	return r.find(ctx, bson.M{"template": templateID}, options.Find().SetSort(newestFirst))
}

// Update matches id, author and template in a single findOneAndUpdate.
func (r *CommentRepository) Update(ctx context.Context, id, userID, templateID, text string) (*models.Comment, error) {
	filter := bson.M{"_id": id, "user": userID, "template": templateID}
	update := bson.M{"$set": bson.M{"text": text, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&comment); err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id, userID, templateID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": userID, "template": templateID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Search(ctx context.Context, query string, limit int) ([]models.Comment, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"text": containsPattern(query)}, opts)
}

func (r *CommentRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *CommentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0)
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
