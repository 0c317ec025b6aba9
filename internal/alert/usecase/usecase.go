package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/alert"
	"github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	activeAlertsCacheKey = "alerts:active"
	activeAlertsCacheTTL = 30 * time.Second
)

// Publisher sends alert transition events. The Kafka producer satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, value interface{}) error
}

type alertUseCase struct {
	repo      alert.Repository
	cache     *cache.RedisClient
	publisher Publisher
	clock     clock.Clock
	logger    logger.ZapLogger
}

// NewAlertUseCase wires the alert manager. cache and publisher may be nil.
func NewAlertUseCase(repo alert.Repository, cache *cache.RedisClient, publisher Publisher, clk clock.Clock, log logger.ZapLogger) alert.UseCase {
	return &alertUseCase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		clock:     clk,
		logger:    log,
	}
}

func (uc *alertUseCase) ReconcileProduct(ctx context.Context, stockCode string, quantity int, minStockLevel *int) (*dto.Outcome, error) {
	active, err := uc.repo.FindActiveByProduct(ctx, stockCode)
	if err != nil {
		return nil, errors.Annotatef(err, "find active alert for %s", stockCode)
	}

	decision := alert.Decide(active, quantity, minStockLevel)
	now := uc.clock.Now().UTC()

	switch decision.Action {
	case alert.ActionCreate:
		a := &model.LowStockAlert{
			ID:                   uuid.New().String(),
			ProductStockCode:     stockCode,
			CurrentStockAtAlert:  quantity,
			MinStockLevelAtAlert: *minStockLevel,
			Status:               model.AlertStatusActive,
			TriggeredAt:          now,
		}
		if err := uc.repo.Create(ctx, a); err != nil {
			return nil, errors.Annotatef(err, "create alert for %s", stockCode)
		}
		uc.logger.Info("low stock alert raised",
			zap.String("stock_code", stockCode),
			zap.Int("quantity", quantity),
			zap.Int("min_stock_level", *minStockLevel),
		)
		uc.afterTransition(ctx, dto.EventAlertRaised, a)
		return &dto.Outcome{Action: decision.Action.String(), Alert: a}, nil

	case alert.ActionResolve:
		if err := uc.repo.Resolve(ctx, active.ID, now, decision.Note); err != nil {
			return nil, errors.Annotatef(err, "resolve alert %s", active.ID)
		}
		active.Status = model.AlertStatusResolved
		active.ResolvedAt = &now
		active.Notes = decision.Note
		uc.logger.Info("low stock alert resolved",
			zap.String("stock_code", stockCode),
			zap.String("alert_id", active.ID),
			zap.String("note", decision.Note),
		)
		uc.afterTransition(ctx, dto.EventAlertResolved, active)
		return &dto.Outcome{Action: decision.Action.String(), Alert: active}, nil
	}

	return &dto.Outcome{Action: decision.Action.String()}, nil
}

func (uc *alertUseCase) ResolveProduct(ctx context.Context, stockCode, note string) (*dto.Outcome, error) {
	active, err := uc.repo.FindActiveByProduct(ctx, stockCode)
	if err != nil {
		return nil, errors.Annotatef(err, "find active alert for %s", stockCode)
	}
	if active == nil {
		return &dto.Outcome{Action: alert.ActionNone.String()}, nil
	}

	now := uc.clock.Now().UTC()
	if err := uc.repo.Resolve(ctx, active.ID, now, note); err != nil {
		// The product may already be hidden from the active list.
		uc.invalidateActive(ctx)
		return nil, errors.Annotatef(err, "resolve alert %s", active.ID)
	}
	active.Status = model.AlertStatusResolved
	active.ResolvedAt = &now
	active.Notes = note
	uc.logger.Info("low stock alert resolved",
		zap.String("stock_code", stockCode),
		zap.String("alert_id", active.ID),
		zap.String("note", note),
	)
	uc.afterTransition(ctx, dto.EventAlertResolved, active)
	return &dto.Outcome{Action: alert.ActionResolve.String(), Alert: active}, nil
}

func (uc *alertUseCase) invalidateActive(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Client.Del(ctx, activeAlertsCacheKey).Err(); err != nil {
		uc.logger.Warn("failed to invalidate active alerts cache", zap.Error(err))
	}
}

func (uc *alertUseCase) afterTransition(ctx context.Context, eventType string, a *model.LowStockAlert) {
	uc.invalidateActive(ctx)

	if uc.publisher == nil {
		return
	}
	event := dto.AlertEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   *a,
		Timestamp: uc.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := uc.publisher.PublishJSON(ctx, a.ProductStockCode, event); err != nil {
		uc.logger.Error("failed to publish alert event",
			zap.String("event_type", eventType),
			zap.String("alert_id", a.ID),
			zap.Error(err),
		)
	}
}

func (uc *alertUseCase) ListActiveAlerts(ctx context.Context) ([]model.ActiveAlertView, error) {
	if uc.cache != nil {
		var cached []model.ActiveAlertView
		found, err := uc.cache.GetJSON(ctx, activeAlertsCacheKey, &cached)
		if err != nil {
			uc.logger.Warn("active alerts cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	alerts, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "list active alerts")
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, activeAlertsCacheKey, alerts, activeAlertsCacheTTL); err != nil {
			uc.logger.Warn("active alerts cache write failed", zap.Error(err))
		}
	}
	return alerts, nil
}

func (uc *alertUseCase) ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.LowStockAlert, int, error) {
	if filters.Status != "" &&
		filters.Status != model.AlertStatusActive &&
		filters.Status != model.AlertStatusAcknowledged &&
		filters.Status != model.AlertStatusResolved {
		return nil, 0, errors.NotValidf("alert status %q", filters.Status)
	}
	alerts, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, errors.Annotate(err, "list alerts")
	}
	return alerts, count, nil
}
