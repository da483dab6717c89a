package publisher

import (
	"context"
	"time"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/domain"
	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/store"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the slice of kafka.Writer the poller uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPoller drains the notification outbox. Notifications are committed in
// the same transaction as their order, so publishing them here is what turns
// "queued iff the order committed" into an actually delivered message.
// Publish-then-mark gives at-least-once delivery; the notification collaborator
// deduplicates on notification id.
type OutboxPoller struct {
	tick   time.Duration
	store  store.Store
	writer MessageWriter
	log    *zap.Logger
}

func NewOutboxPoller(st store.Store, log *zap.Logger, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-notifications",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{tick: time.Second, store: st, writer: w, log: log}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnsent(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnsent(ctx context.Context) {
	notifications, err := p.store.GetUnsentNotifications(ctx, 100)
	if err != nil {
		p.log.Warn("failed to fetch unsent notifications", zap.Error(err))
		return
	}

	for _, n := range notifications {
		if err := p.publish(ctx, n); err != nil {
			p.log.Warn("failed to publish notification",
				zap.String("id", n.ID), zap.Error(err))
			continue
		}

		if err := p.store.MarkNotificationSent(ctx, n.ID); err != nil {
			p.log.Warn("failed to mark notification sent",
				zap.String("id", n.ID), zap.Error(err))
			continue
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, n *domain.Notification) error {
	msg := kafka.Message{
		Key:   []byte(n.OrderID), // order id for ordering
		Value: n.Payload,         // already JSON from the finalize transaction
		Headers: []kafka.Header{
			{Key: "notification_id", Value: []byte(n.ID)},
			{Key: "recipient", Value: []byte(n.Recipient)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
