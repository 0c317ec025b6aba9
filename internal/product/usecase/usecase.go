package usecase

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	alertdto "github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/auth"
	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/product"
	"github.com/fekuna/omnipos-stock-service/internal/product/dto"
	"github.com/fekuna/omnipos-stock-service/pkg/apperror"
	"github.com/fekuna/omnipos-stock-service/pkg/cache"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	minSearchLength  = 2
	maxSearchResults = 10

	searchCachePrefix = "products:search:"
	searchCacheTTL    = 30 * time.Second

	defaultUnit = "pcs"
)

// StockRecorder writes ledger movements. The inventory usecase satisfies it.
type StockRecorder interface {
	RecordMovement(ctx context.Context, input *invdto.RecordMovementInput, actor *auth.Actor) (*invdto.AdjustStockResult, error)
}

type AlertReconciler interface {
	ReconcileProduct(ctx context.Context, stockCode string, quantity int, minStockLevel *int) (*alertdto.Outcome, error)
	ResolveProduct(ctx context.Context, stockCode, note string) (*alertdto.Outcome, error)
}

type productUseCase struct {
	repo   product.Repository
	ledger StockRecorder
	alerts AlertReconciler
	locker inventory.Locker
	cache  *cache.RedisClient
	index  SearchIndex
	clock  clock.Clock
	tracer trace.Tracer
	logger logger.ZapLogger

	// Tracks background index syncs.
	bg sync.WaitGroup
}

// NewProductUseCase wires the catalogue. cache and index may be nil.
func NewProductUseCase(
	repo product.Repository,
	ledger StockRecorder,
	alerts AlertReconciler,
	locker inventory.Locker,
	cache *cache.RedisClient,
	index SearchIndex,
	clk clock.Clock,
	log logger.ZapLogger,
) product.UseCase {
	return &productUseCase{
		repo:   repo,
		ledger: ledger,
		alerts: alerts,
		locker: locker,
		cache:  cache,
		index:  index,
		clock:  clk,
		tracer: otel.Tracer("omnipos-stock-service/product"),
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput, actor *auth.Actor) (*dto.ProductResult, error) {
	ctx, span := uc.tracer.Start(ctx, "product.CreateProduct", trace.WithAttributes(
		attribute.String("stock_code", input.StockCode),
	))
	defer span.End()

	if !actor.Valid() {
		return nil, errors.Unauthorizedf("acting user")
	}

	stockCode := strings.TrimSpace(input.StockCode)
	name := strings.TrimSpace(input.Name)
	ve := validateProduct(stockCode, name, input.MinStockLevel)
	if input.InitialQuantity < 0 {
		if ve == nil {
			ve = apperror.InvalidInput("initial_quantity", "initial_quantity_negative")
		} else {
			ve.Add("initial_quantity", "initial_quantity_negative")
		}
	}
	if ve != nil {
		return nil, ve
	}

	taken, err := uc.repo.IsStockCodeTaken(ctx, stockCode)
	if err != nil {
		return nil, errors.Annotatef(err, "check stock code %s", stockCode)
	}
	if taken {
		return nil, errors.AlreadyExistsf("product %q", stockCode)
	}

	now := uc.clock.Now().UTC()
	p := &model.Product{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		StockCode:     stockCode,
		Name:          name,
		Description:   optional(input.Description),
		Unit:          unitOrDefault(input.Unit),
		MinStockLevel: input.MinStockLevel,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, errors.Annotatef(err, "create product %s", stockCode)
	}

	result := &dto.ProductResult{Product: p, Warnings: []invdto.Warning{}}

	if input.InitialQuantity > 0 {
		// Opening stock goes through the ledger like any other movement.
		res, err := uc.ledger.RecordMovement(ctx, &invdto.RecordMovementInput{
			StockCode:      stockCode,
			MovementType:   model.MovementInitialStock,
			QuantityChange: input.InitialQuantity,
			Notes:          "Initial stock",
		}, actor)
		if err != nil {
			uc.logger.Error("product created without its initial stock",
				zap.String("stock_code", stockCode),
				zap.Int("initial_quantity", input.InitialQuantity),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings, invdto.Warning{Code: invdto.WarningInitialStockNotApplied})
		} else {
			p.QuantityOnHand = res.NewQuantity
			result.Warnings = append(result.Warnings, res.Warnings...)
		}
	}
	// Empty from the start, so it is already below its minimum.
	if p.QuantityOnHand == 0 && p.AlertThreshold() > 0 {
		if err := uc.reconcileLocked(ctx, p); err != nil {
			result.Warnings = append(result.Warnings, invdto.Warning{Code: invdto.WarningAlertReconciliationFailed})
		}
	}

	uc.logger.Info("product created",
		zap.String("stock_code", stockCode),
		zap.Int("quantity_on_hand", p.QuantityOnHand),
		zap.String("actor", actor.Email),
	)
	uc.afterWrite(p, false)
	return result, nil
}

func (uc *productUseCase) reconcileLocked(ctx context.Context, p *model.Product) error {
	release, err := uc.locker.Lock(ctx, inventory.LockKey(p.StockCode))
	if err != nil {
		uc.logger.Warn("could not lock product for alert reconciliation", zap.String("stock_code", p.StockCode), zap.Error(err))
		return err
	}
	defer release()
	return uc.reconcile(ctx, p)
}

// reconcile expects the product lock to be held.
func (uc *productUseCase) reconcile(ctx context.Context, p *model.Product) error {
	if _, err := uc.alerts.ReconcileProduct(ctx, p.StockCode, p.QuantityOnHand, p.MinStockLevel); err != nil {
		uc.logger.Warn("alert reconciliation failed after product write",
			zap.String("stock_code", p.StockCode),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, stockCode string) (*model.Product, error) {
	p, err := uc.repo.FindByStockCode(ctx, stockCode)
	if err != nil {
		return nil, errors.Annotatef(err, "get product %s", stockCode)
	}
	if p == nil {
		return nil, errors.NotFoundf("product %q", stockCode)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, errors.Annotate(err, "list products")
	}
	return products, count, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*dto.ProductResult, error) {
	ctx, span := uc.tracer.Start(ctx, "product.UpdateProduct", trace.WithAttributes(
		attribute.String("stock_code", input.StockCode),
	))
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if err := validateProduct(input.StockCode, name, input.MinStockLevel); err != nil {
		return nil, err
	}

	// The minimum feeds alert reconciliation, so it changes under the same
	// lock the ledger takes.
	release, err := uc.locker.Lock(ctx, inventory.LockKey(input.StockCode))
	if err != nil {
		return nil, errors.Annotatef(err, "lock product %s", input.StockCode)
	}
	defer release()

	p, err := uc.repo.FindByStockCode(ctx, input.StockCode)
	if err != nil {
		return nil, errors.Annotatef(err, "get product %s", input.StockCode)
	}
	if p == nil {
		return nil, errors.NotFoundf("product %q", input.StockCode)
	}

	minChanged := p.AlertThreshold() != thresholdOf(input.MinStockLevel)

	p.Name = name
	p.Description = optional(input.Description)
	p.Unit = unitOrDefault(input.Unit)
	p.MinStockLevel = input.MinStockLevel
	p.UpdatedAt = uc.clock.Now().UTC()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, errors.Annotatef(err, "update product %s", input.StockCode)
	}

	result := &dto.ProductResult{Product: p, Warnings: []invdto.Warning{}}
	if minChanged {
		if err := uc.reconcile(ctx, p); err != nil {
			result.Warnings = append(result.Warnings, invdto.Warning{Code: invdto.WarningAlertReconciliationFailed})
		}
	}

	uc.afterWrite(p, false)
	return result, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, stockCode string) error {
	// An adjustment in flight must not record against a deleted product.
	release, err := uc.locker.Lock(ctx, inventory.LockKey(stockCode))
	if err != nil {
		return errors.Annotatef(err, "lock product %s", stockCode)
	}
	defer release()

	p, err := uc.repo.FindByStockCode(ctx, stockCode)
	if err != nil {
		return errors.Annotatef(err, "get product %s", stockCode)
	}
	if p == nil {
		return errors.NotFoundf("product %q", stockCode)
	}

	deleted, err := uc.repo.SoftDelete(ctx, stockCode, uc.clock.Now().UTC())
	if err != nil {
		return errors.Annotatef(err, "delete product %s", stockCode)
	}
	if !deleted {
		return errors.NotFoundf("product %q", stockCode)
	}

	if _, err := uc.alerts.ResolveProduct(ctx, stockCode, model.AlertNoteProductDeleted); err != nil {
		// Deleted products are already left out of the active list.
		uc.logger.Warn("could not resolve alert of deleted product",
			zap.String("stock_code", stockCode),
			zap.Error(err),
		)
	}

	uc.logger.Info("product deleted", zap.String("stock_code", stockCode))
	uc.afterWrite(p, true)
	return nil
}

func (uc *productUseCase) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < minSearchLength {
		return []model.Product{}, nil
	}

	ctx, span := uc.tracer.Start(ctx, "product.SearchProducts", trace.WithAttributes(
		attribute.String("term", term),
	))
	defer span.End()

	// Only the matched codes are cached. Rows are always read from the
	// database so quantities and deletions are current.
	cacheKey := searchCachePrefix + strings.ToLower(term)
	if uc.cache != nil {
		var codes []string
		found, err := uc.cache.GetJSON(ctx, cacheKey, &codes)
		if err != nil {
			uc.logger.Warn("search cache read failed", zap.Error(err))
		} else if found {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			products, err := uc.repo.FindByStockCodes(ctx, codes)
			if err != nil {
				span.RecordError(err)
				return nil, errors.Annotatef(err, "load products for %q", term)
			}
			return products, nil
		}
	}

	products, err := uc.searchIndex(ctx, term)
	if err != nil {
		if uc.index != nil {
			uc.logger.Warn("search index failed, falling back to database", zap.String("term", term), zap.Error(err))
		}
		products, err = uc.repo.Search(ctx, term, maxSearchResults)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Annotatef(err, "search products %q", term)
		}
	}

	if uc.cache != nil {
		codes := make([]string, len(products))
		for i, prod := range products {
			codes[i] = prod.StockCode
		}
		if err := uc.cache.SetJSON(ctx, cacheKey, codes, searchCacheTTL); err != nil {
			uc.logger.Warn("search cache write failed", zap.Error(err))
		}
	}
	span.SetAttributes(attribute.Int("results", len(products)))
	return products, nil
}

const errNoSearchIndex = errors.ConstError("search index not configured")

func (uc *productUseCase) searchIndex(ctx context.Context, term string) ([]model.Product, error) {
	if uc.index == nil {
		return nil, errNoSearchIndex
	}
	res, err := uc.index.Search(ctx, SearchIndexName, searchQuery(term, maxSearchResults))
	if err != nil {
		return nil, err
	}
	codes, err := stockCodesFromHits(res)
	if err != nil {
		return nil, err
	}
	return uc.repo.FindByStockCodes(ctx, codes)
}

// afterWrite drops cached searches and mirrors the product into the search
// index in the background.
func (uc *productUseCase) afterWrite(p *model.Product, deleted bool) {
	if uc.cache != nil {
		if err := uc.cache.DeletePattern(context.Background(), searchCachePrefix+"*"); err != nil {
			uc.logger.Warn("failed to invalidate search cache", zap.Error(err))
		}
	}
	if uc.index == nil {
		return
	}

	doc := newSearchDocument(p)
	uc.bg.Add(1)
	go func() {
		defer uc.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		if deleted {
			err = uc.index.Delete(ctx, SearchIndexName, doc.StockCode)
		} else {
			err = uc.index.Index(ctx, SearchIndexName, doc.StockCode, doc)
		}
		if err != nil {
			uc.logger.Error("failed to sync product to search index",
				zap.String("stock_code", doc.StockCode),
				zap.Bool("deleted", deleted),
				zap.Error(err),
			)
		}
	}()
}

func validateProduct(stockCode, name string, minStockLevel *int) *apperror.ValidationError {
	var ve *apperror.ValidationError
	add := func(field, id string) {
		if ve == nil {
			ve = apperror.InvalidInput(field, id)
			return
		}
		ve.Add(field, id)
	}
	if stockCode == "" {
		add("stock_code", "stock_code_required")
	}
	if name == "" {
		add("name", "name_required")
	}
	if minStockLevel != nil && *minStockLevel < 0 {
		add("min_stock_level", "min_stock_negative")
	}
	return ve
}

func thresholdOf(level *int) int {
	if level == nil || *level < 0 {
		return 0
	}
	return *level
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func unitOrDefault(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return defaultUnit
	}
	return unit
}
