// Package mongo is the document store backend, the default STORE_DRIVER.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"forms-service/internal/models"
	"forms-service/internal/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection     = "users"
	TemplatesCollection = "templates"
	FormsCollection     = "forms"
	CommentsCollection  = "comments"
)

func New(db *mongo.Database) *repositories.Store {
	return &repositories.Store{
		Users:     NewUserRepository(db),
		Templates: NewTemplateRepository(db),
		Forms:     NewFormRepository(db),
		Comments:  NewCommentRepository(db),
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

// EnsureIndexes creates the indexes every collection relies on. It is safe to call repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		TemplatesCollection: {
			{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "likes", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		FormsCollection: {
			{Keys: bson.D{{Key: "template", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "template", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, indexes := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	default:
		return err
	}
}

// containsPattern is a case-insensitive substring match on a literal string.
func containsPattern(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// findOptions converts list options into skip/limit/sort. Fields not in allowed are ignored.
func findOptions(opts models.ListOptions, allowed map[string]bool) *options.FindOptions {
	opts = opts.Normalize()
	sort := bson.D{}
	for _, s := range opts.Sort {
		if !allowed[s.Field] {
			continue
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Field, Value: dir})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}
	return options.Find().
		SetSort(sort).
		SetSkip(int64(opts.Skip())).
		SetLimit(int64(opts.Limit))
}
