package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/broker"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/juju/clock"
	"go.uber.org/zap"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventPurchaseReceived = "PurchaseReceived"
)

// MessageReader is the consuming half of the broker.
type MessageReader interface {
	ReadMessage(ctx context.Context) (broker.Message, error)
}

type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	clock    clock.Clock
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, clk clock.Clock, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		clock:    clk,
		logger:   logger,
	}
}

// Start reads until ctx is cancelled. Bad messages are logged and skipped.
func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("starting inventory kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping inventory kafka listener")
			return
		default:
		}

		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-l.clock.After(time.Second):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

type StockEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   StockPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

// StockPayload is shared by orders and purchase receipts.
type StockPayload struct {
	ID    string             `json:"id"`
	Items []StockItemPayload `json:"items"`
}

type StockItemPayload struct {
	StockCode string `json:"stock_code"`
	Quantity  int    `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event StockEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to unmarshal event", zap.Error(err))
		return
	}

	var (
		movementType model.MovementType
		sign         int
		note         string
	)
	switch event.EventType {
	case EventOrderCreated:
		movementType, sign, note = model.MovementSale, -1, "Order sale"
	case EventPurchaseReceived:
		movementType, sign, note = model.MovementPurchaseReceived, 1, "Purchase received"
	default:
		return
	}

	l.logger.Info("processing stock event",
		zap.String("event_type", event.EventType),
		zap.String("reference_id", event.Payload.ID),
	)

	for _, item := range event.Payload.Items {
		if item.Quantity <= 0 {
			l.logger.Warn("skipping event item with non-positive quantity",
				zap.String("reference_id", event.Payload.ID),
				zap.String("stock_code", item.StockCode),
				zap.Int("quantity", item.Quantity),
			)
			continue
		}

		input := &dto.RecordMovementInput{
			StockCode:      item.StockCode,
			MovementType:   movementType,
			QuantityChange: sign * item.Quantity,
			Notes:          note,
			ReferenceID:    event.Payload.ID,
		}
		result, err := l.uc.RecordMovement(ctx, input, auth.SystemActor)
		if err != nil {
			l.logger.Error("failed to record movement for event item",
				zap.String("event_type", event.EventType),
				zap.String("reference_id", event.Payload.ID),
				zap.String("stock_code", item.StockCode),
				zap.Error(err),
			)
			continue
		}
		for _, w := range result.Warnings {
			l.logger.Warn("movement recorded with warning",
				zap.String("reference_id", event.Payload.ID),
				zap.String("stock_code", item.StockCode),
				zap.String("warning", w.Code),
			)
		}
	}
}
