package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forms-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

var userSortable = map[string]bool{
	"createdAt": true, "updatedAt": true, "name": true, "email": true, "role": true, "status": true,
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = strings.ToLower(user.Email)
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) FindIdentity(ctx context.Context, id string) (*models.User, error) {
	projection := bson.M{"name": 1, "email": 1, "photo": 1, "status": 1, "role": 1}
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(projection))
}

func (r *UserRepository) List(ctx context.Context, opts models.ListOptions) ([]models.User, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	cur, err := r.coll.Find(ctx, bson.M{}, findOptions(opts, userSortable))
	if err != nil {
		return nil, 0, err
	}
	users := make([]models.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": containsPattern(query)},
		bson.M{"email": containsPattern(query)},
	}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) updateMany(ctx context.Context, ids []string, set bson.M) (int64, error) {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, ids []string, status models.UserStatus) (int64, error) {
	return r.updateMany(ctx, ids, bson.M{"status": status})
}

func (r *UserRepository) UpdateRole(ctx context.Context, ids []string, role models.Role) (int64, error) {
	return r.updateMany(ctx, ids, bson.M{"role": role})
}

func (r *UserRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *UserRepository) Count(ctx context.Context, role models.Role) (int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return r.coll.CountDocuments(ctx, filter)
}
