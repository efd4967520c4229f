package repository

import (
	"context"
	"time"

	"mixshare/internal/db"
	"mixshare/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.PublicUser, error)
	SearchUsers(ctx context.Context, keyword string, limit, offset int) ([]*model.PublicUser, error)
	FindAll(ctx context.Context, limit, offset int) ([]*model.User, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error
}

type userRepository struct {
	users *mongo.Collection
}

func NewUserRepository(store *db.Mongo) UserRepository {
	return &userRepository{users: store.Collection(db.UsersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		return translateError(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// FindPublicByIDs loads the public shape of every referenced user in one
// round trip. Missing ids are simply absent from the map.
func (r *userRepository) FindPublicByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.PublicUser, error) {
	result := make(map[primitive.ObjectID]*model.PublicUser, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	opts := options.Find().SetProjection(bson.M{
		"name": 1, "username": 1, "avatar": 1, "isVerified": 1,
	})
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var users []model.PublicUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translateError(err)
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

// SearchUsers matches name or username case-insensitively.
func (r *userRepository) SearchUsers(ctx context.Context, keyword string, limit, offset int) ([]*model.PublicUser, error) {
	filter := bson.M{
		"isBanned": false,
		"$or": []bson.M{
			{"name": bson.M{"$regex": keyword, "$options": "i"}},
			{"username": bson.M{"$regex": keyword, "$options": "i"}},
		},
	}

	opts := options.Find().
		SetProjection(bson.M{"name": 1, "username": 1, "avatar": 1, "isVerified": 1}).
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var users []*model.PublicUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translateError(err)
	}
	return users, nil
}

// FindAll gets all users with pagination (admin listing).
func (r *userRepository) FindAll(ctx context.Context, limit, offset int) ([]*model.User, int64, error) {
	total, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, translateError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, translateError(err)
	}
	return users, total, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{})
	return count, translateError(err)
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()
	res, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": time.Now()}})
	return translateError(err)
}

func (r *userRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	return r.UpdateFields(ctx, id, bson.M{"isBanned": banned})
}
