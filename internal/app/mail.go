package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MailQueueName is the durable queue shared with cmd/mailer.
const MailQueueName = "email_queue"

// publishMail enqueues a notification for the mailer worker. Notification
// failures never fail the booking that triggered them; they are logged and
// dropped.
func (a *App) publishMail(ctx context.Context, msg MailMessage) {
	if a.MailCh == nil {
		return
	}

	body, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal mail message", "type", msg.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.Cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	err = a.MailCh.PublishWithContext(ctx, "", MailQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		slog.Error("failed to publish mail message", "type", msg.Type, "to", msg.To, "error", err)
	}
}
