package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MartinSchider/Project-Softwarewebshop-sub000/internal/service"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ItemEvent is what the cart-editing service publishes on every line-item
// write. Only the cart identity matters here: the recalculator re-reads the
// whole item set anyway, so the event carries no delta.
type ItemEvent struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Action    string `json:"action"` // added | updated | removed
}

// Consumer subscribes to cart item-write events and triggers a full totals
// recomputation for the affected cart. Handler failures are logged and
// swallowed: the consumer group redelivers on crash, and recomputation is
// convergent, so any transient failure heals on the next event.
type Consumer struct {
	settlement *service.SettlementService
	reader     *kafka.Reader
	log        *zap.Logger
}

func NewConsumer(settlement *service.SettlementService, log *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "cart-item-events",
		GroupID:  "settlement-service",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{settlement: settlement, reader: reader, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn("failed to close kafka reader", zap.Error(err))
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Warn("failed to read message", zap.Error(err))
		return
	}

	if err := c.HandleEvent(ctx, m.Value); err != nil {
		c.log.Error("failed to recompute cart totals", zap.Error(err))
	}
}

// HandleEvent parses one item-write event and recomputes the cart's totals.
func (c *Consumer) HandleEvent(ctx context.Context, value []byte) error {
	var event ItemEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to parse item event: %w", err)
	}
	if event.UserID == "" {
		return errors.New("item event has no user_id")
	}

	totals, err := c.settlement.RecomputeTotals(ctx, event.UserID)
	if err != nil {
		return err
	}

	c.log.Info("cart totals recomputed",
		zap.String("user_id", event.UserID),
		zap.String("action", event.Action),
		zap.Float64("total_price", totals.TotalPrice),
		zap.Int("item_count", totals.ItemCount))
	return nil
}
