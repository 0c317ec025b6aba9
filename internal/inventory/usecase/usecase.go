package usecase

import (
	"context"

	alertdto "github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/apperror"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AlertReconciler keeps a product's low-stock alerts in line with its stock.
// The alert usecase satisfies it.
type AlertReconciler interface {
	ReconcileProduct(ctx context.Context, stockCode string, quantity int, minStockLevel *int) (*alertdto.Outcome, error)
}

type inventoryUseCase struct {
	repo   inventory.Repository
	alerts AlertReconciler
	locker inventory.Locker
	clock  clock.Clock
	tracer trace.Tracer
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, alerts AlertReconciler, locker inventory.Locker, clk clock.Clock, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		alerts: alerts,
		locker: locker,
		clock:  clk,
		tracer: otel.Tracer("omnipos-stock-service/inventory"),
		logger: log,
	}
}

func (uc *inventoryUseCase) AdjustStock(ctx context.Context, input *dto.AdjustStockInput, actor *auth.Actor) (*dto.AdjustStockResult, error) {
	return uc.RecordMovement(ctx, &dto.RecordMovementInput{
		StockCode:      input.StockCode,
		MovementType:   model.AdjustmentType(input.QuantityChange),
		QuantityChange: input.QuantityChange,
		Notes:          input.Notes,
	}, actor)
}

func (uc *inventoryUseCase) RecordMovement(ctx context.Context, input *dto.RecordMovementInput, actor *auth.Actor) (*dto.AdjustStockResult, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.RecordMovement", trace.WithAttributes(
		attribute.String("stock_code", input.StockCode),
		attribute.String("movement_type", string(input.MovementType)),
		attribute.Int("quantity_change", input.QuantityChange),
	))
	defer span.End()

	result, err := uc.recordMovement(ctx, input, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("new_quantity", result.NewQuantity))
	return result, nil
}

func (uc *inventoryUseCase) recordMovement(ctx context.Context, input *dto.RecordMovementInput, actor *auth.Actor) (*dto.AdjustStockResult, error) {
	if !actor.Valid() {
		return nil, errors.Unauthorizedf("acting user")
	}
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	release, err := uc.locker.Lock(ctx, inventory.LockKey(input.StockCode))
	if err != nil {
		return nil, errors.Annotatef(err, "lock product %s", input.StockCode)
	}
	defer release()

	product, err := uc.repo.GetProduct(ctx, input.StockCode)
	if err != nil {
		return nil, errors.Annotatef(err, "get product %s", input.StockCode)
	}
	if product == nil {
		return nil, errors.NotFoundf("product %q", input.StockCode)
	}

	now := uc.clock.Now().UTC()
	newQuantity, ok, err := uc.repo.ApplyDelta(ctx, input.StockCode, input.QuantityChange, now)
	if err != nil {
		return nil, errors.Annotatef(err, "update quantity of %s", input.StockCode)
	}
	if !ok {
		wouldBe := product.QuantityOnHand + input.QuantityChange
		if wouldBe >= 0 {
			// The floor was fine, so the row vanished after we read it.
			return nil, errors.NotFoundf("product %q", input.StockCode)
		}
		return nil, apperror.InvariantViolation("quantity_change", "stock_negative", map[string]interface{}{"Result": wouldBe})
	}

	result := &dto.AdjustStockResult{NewQuantity: newQuantity, Warnings: []dto.Warning{}}

	// The quantity is committed from here on. Later failures become warnings.
	if _, err := uc.alerts.ReconcileProduct(ctx, input.StockCode, newQuantity, product.MinStockLevel); err != nil {
		uc.logger.Warn("alert reconciliation failed after stock update",
			zap.String("stock_code", input.StockCode),
			zap.Int("new_quantity", newQuantity),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, dto.Warning{Code: dto.WarningAlertReconciliationFailed})
	}

	movement := &model.InventoryMovement{
		ID:               uuid.New().String(),
		ProductStockCode: input.StockCode,
		MovementType:     input.MovementType,
		QuantityChange:   input.QuantityChange,
		QuantityAfter:    newQuantity,
		Notes:            input.Notes,
		CreatedBy:        actor.UserID,
		CreatedByEmail:   actor.Email,
		CreatedAt:        now,
	}
	if input.ReferenceID != "" {
		movement.ReferenceID = &input.ReferenceID
	}

	if err := uc.repo.LogMovement(ctx, movement); err != nil {
		uc.logger.Error("stock updated but movement not recorded",
			zap.String("stock_code", input.StockCode),
			zap.String("movement_type", string(input.MovementType)),
			zap.Int("quantity_change", input.QuantityChange),
			zap.Int("new_quantity", newQuantity),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, dto.Warning{Code: dto.WarningMovementNotRecorded})
	} else {
		result.Movement = movement
	}

	uc.logger.Info("stock movement recorded",
		zap.String("stock_code", input.StockCode),
		zap.String("movement_type", string(input.MovementType)),
		zap.Int("quantity_change", input.QuantityChange),
		zap.Int("new_quantity", newQuantity),
		zap.String("actor", actor.Email),
	)
	return result, nil
}

func validateMovement(input *dto.RecordMovementInput) error {
	var ve *apperror.ValidationError
	add := func(field, id string) {
		if ve == nil {
			ve = apperror.InvalidInput(field, id)
			return
		}
		ve.Add(field, id)
	}

	if input.StockCode == "" {
		add("stock_code", "stock_code_required")
	}
	switch {
	case !input.MovementType.Valid():
		add("movement_type", "movement_type_invalid")
	case input.QuantityChange == 0:
		add("quantity_change", "quantity_nonzero")
	case !input.MovementType.AllowsChange(input.QuantityChange):
		add("quantity_change", "quantity_sign_invalid")
	}

	if ve != nil {
		return ve
	}
	return nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	if filters.MovementType != "" && !filters.MovementType.Valid() {
		return nil, 0, apperror.InvalidInput("movement_type", "movement_type_invalid")
	}
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, errors.Annotate(err, "list movements")
	}
	return items, count, nil
}

func (uc *inventoryUseCase) GetSummary(ctx context.Context) (*model.InventorySummary, error) {
	s, err := uc.repo.Summary(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "inventory summary")
	}
	return s, nil
}

// AuditLedger lists products whose quantity has drifted from their last
// movement, the trace left when a movement insert failed.
func (uc *inventoryUseCase) AuditLedger(ctx context.Context) ([]model.LedgerDiscrepancy, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.AuditLedger")
	defer span.End()

	items, err := uc.repo.FindDiscrepancies(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Annotate(err, "audit ledger")
	}
	if len(items) > 0 {
		uc.logger.Warn("ledger discrepancies found", zap.Int("count", len(items)))
	}
	span.SetAttributes(attribute.Int("discrepancies", len(items)))
	return items, nil
}
