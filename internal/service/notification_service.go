package service

import (
	"context"
	"encoding/json"
	"log"

	"mixshare/internal/model"
	"mixshare/internal/repository"
	"mixshare/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationExchange   = "mixshare.notifications"
	NotificationQueue      = "notification_events"
	NotificationRoutingKey = "notification.created"
)

// Notifier is the write side of notifications: persist, then hand off
// to the delivery queue. Engagement and follow services depend on this
// rather than the full NotificationService.
type Notifier interface {
	Notify(ctx context.Context, notification *model.Notification)
}

type NotificationService interface {
	Notifier
	ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id string, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	rabbitmq         *util.RabbitMQClient
}

func NewNotificationService(notificationRepo repository.NotificationRepository, rabbitmq *util.RabbitMQClient) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, rabbitmq: rabbitmq}
}

// Notify persists the notification and publishes it for real-time
// delivery. Delivery is best effort; a queue failure never fails the
// triggering request, and the stored copy remains the source of truth.
func (s *notificationService) Notify(ctx context.Context, notification *model.Notification) {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("persist notification failed: %v", err)
		return
	}

	if s.rabbitmq == nil {
		return
	}
	body, err := json.Marshal(notification)
	if err != nil {
		log.Printf("marshal notification %s failed: %v", notification.ID.Hex(), err)
		return
	}
	if err := s.rabbitmq.Publish(NotificationExchange, NotificationRoutingKey, body); err != nil {
		log.Printf("publish notification %s failed: %v", notification.ID.Hex(), err)
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*model.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.notificationRepo.FindByUser(ctx, userID, limit, (page-1)*limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id string, userID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	return s.notificationRepo.MarkAsRead(ctx, oid, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}
