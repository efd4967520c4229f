package service

import (
	"encoding/json"
	"log"

	"mixshare/internal/model"
	"mixshare/internal/util"
	"mixshare/internal/websocket"
)

// NotificationWorker consumes the notification queue and pushes each
// event to the recipient's open websocket connections.
type NotificationWorker struct {
	rabbitmq *util.RabbitMQClient
	hub      *websocket.Hub
}

func NewNotificationWorker(rabbitmq *util.RabbitMQClient, hub *websocket.Hub) *NotificationWorker {
	return &NotificationWorker{rabbitmq: rabbitmq, hub: hub}
}

// Start declares the queue and begins consuming. It returns once the
// consumer is registered; delivery handling runs in its own goroutine.
func (w *NotificationWorker) Start() error {
	if err := w.rabbitmq.DeclareQueue(NotificationExchange, NotificationQueue, NotificationRoutingKey); err != nil {
		return err
	}

	deliveries, err := w.rabbitmq.GetChannel().Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for d := range deliveries {
			var notification model.Notification
			if err := json.Unmarshal(d.Body, &notification); err != nil {
				log.Printf("notification worker: bad message: %v", err)
				_ = d.Nack(false, false)
				continue
			}

			recipient := notification.User.Hex()
			if w.hub.ClientCount(recipient) == 0 {
				// Offline; the stored copy is delivered on the next fetch.
				_ = d.Ack(false)
				continue
			}

			w.hub.BroadcastToUser(recipient, websocket.Message{
				Type:    "notification",
				Payload: notification,
			})
			_ = d.Ack(false)
		}
		log.Println("notification worker: delivery channel closed")
	}()

	return nil
}
