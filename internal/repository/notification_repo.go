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

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error
}

type notificationRepository struct {
	notifications *mongo.Collection
}

func NewNotificationRepository(store *db.Mongo) NotificationRepository {
	return &notificationRepository{notifications: store.Collection(db.NotificationsCollection)}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	notification.CreatedAt = time.Now()
	res, err := r.notifications.InsertOne(ctx, notification)
	if err != nil {
		return translateError(err)
	}
	notification.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int) ([]*model.Notification, int64, error) {
	filter := bson.M{"user": userID}
	total, err := r.notifications.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translateError(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.notifications.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer cursor.Close(ctx)

	var notifications []*model.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, translateError(err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.notifications.CountDocuments(ctx, bson.M{"user": userID, "isRead": false})
	return count, translateError(err)
}

// MarkAsRead flips a single notification; the user filter keeps one
// user from reading another's.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "user": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.notifications.UpdateMany(ctx,
		bson.M{"user": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	return translateError(err)
}
