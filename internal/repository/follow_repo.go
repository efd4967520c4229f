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

type FollowRepository interface {
	Create(ctx context.Context, follower, following primitive.ObjectID) error
	Delete(ctx context.Context, follower, following primitive.ObjectID) error
	Exists(ctx context.Context, follower, following primitive.ObjectID) (bool, error)
	FindFollowers(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error)
	FindFollowing(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error)
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type followRepository struct {
	follows *mongo.Collection
}

func NewFollowRepository(store *db.Mongo) FollowRepository {
	return &followRepository{follows: store.Collection(db.FollowsCollection)}
}

// Create records the edge. The unique pair index turns a duplicate
// follow into ErrDuplicateKey.
func (r *followRepository) Create(ctx context.Context, follower, following primitive.ObjectID) error {
	follow := &model.Follow{
		Follower:  follower,
		Following: following,
		CreatedAt: time.Now(),
	}
	_, err := r.follows.InsertOne(ctx, follow)
	return translateError(err)
}

func (r *followRepository) Delete(ctx context.Context, follower, following primitive.ObjectID) error {
	res, err := r.follows.DeleteOne(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	count, err := r.follows.CountDocuments(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// FindFollowers returns the IDs of users following userID, newest edge
// first. The caller expands them to public profiles.
func (r *followRepository) FindFollowers(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error) {
	return r.findEdges(ctx, bson.M{"following": userID}, "follower", limit, offset)
}

func (r *followRepository) FindFollowing(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]primitive.ObjectID, int64, error) {
	return r.findEdges(ctx, bson.M{"follower": userID}, "following", limit, offset)
}

func (r *followRepository) findEdges(ctx context.Context, filter bson.M, side string, limit, offset int) ([]primitive.ObjectID, int64, error) {
	total, err := r.follows.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.follows.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer cursor.Close(ctx)

	var edges []model.Follow
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, 0, translateError(err)
	}

	ids := make([]primitive.ObjectID, 0, len(edges))
	for _, edge := range edges {
		if side == "follower" {
			ids = append(ids, edge.Follower)
		} else {
			ids = append(ids, edge.Following)
		}
	}
	return ids, total, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.follows.CountDocuments(ctx, bson.M{"following": userID})
	return count, translateError(err)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.follows.CountDocuments(ctx, bson.M{"follower": userID})
	return count, translateError(err)
}
