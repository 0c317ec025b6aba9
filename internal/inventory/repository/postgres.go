package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetProduct(ctx context.Context, stockCode string) (*model.Product, error) {
	var p model.Product
	query := r.DB.Rebind(`SELECT * FROM products WHERE stock_code = ? AND deleted_at IS NULL`)
	err := r.DB.GetContext(ctx, &p, query, stockCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) ApplyDelta(ctx context.Context, stockCode string, delta int, at time.Time) (int, bool, error) {
	// The floor check and the increment happen in one statement, so concurrent
	// writers cannot lose each other's updates.
	query := r.DB.Rebind(`
        UPDATE products
        SET quantity_on_hand = quantity_on_hand + ?, updated_at = ?
        WHERE stock_code = ? AND deleted_at IS NULL AND quantity_on_hand + ? >= 0
        RETURNING quantity_on_hand
    `)
	var newQuantity int
	err := r.DB.GetContext(ctx, &newQuantity, query, delta, at, stockCode, delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return newQuantity, true, nil
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, product_stock_code, movement_type, quantity_change, quantity_after_movement,
            notes, reference_id, created_by, created_by_email, created_at
        )
        VALUES (
            :id, :product_stock_code, :movement_type, :quantity_change, :quantity_after_movement,
            :notes, :reference_id, :created_by, :created_by_email, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items := []model.InventoryMovement{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.StockCode != "" {
		conditions = append(conditions, "product_stock_code = :stock_code")
		args["stock_code"] = f.StockCode
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = string(f.MovementType)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM inventory_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY seq DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) Summary(ctx context.Context) (*model.InventorySummary, error) {
	var s model.InventorySummary
	query := r.DB.Rebind(`
        SELECT
            (SELECT count(*) FROM products WHERE deleted_at IS NULL) AS product_count,
            (SELECT COALESCE(SUM(quantity_on_hand), 0) FROM products WHERE deleted_at IS NULL) AS total_units,
            (SELECT count(*) FROM products
                WHERE deleted_at IS NULL AND min_stock_level > 0 AND quantity_on_hand < min_stock_level) AS below_minimum,
            (SELECT count(*) FROM low_stock_alerts a
                JOIN products p ON p.stock_code = a.product_stock_code
                WHERE a.status = ? AND p.deleted_at IS NULL) AS active_alerts
    `)
	if err := r.DB.GetContext(ctx, &s, query, model.AlertStatusActive); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindDiscrepancies(ctx context.Context) ([]model.LedgerDiscrepancy, error) {
	items := []model.LedgerDiscrepancy{}
	query := `
        SELECT stock_code, quantity_on_hand, last_recorded_quantity FROM (
            SELECT
                p.stock_code,
                p.quantity_on_hand,
                COALESCE((
                    SELECT m.quantity_after_movement FROM inventory_movements m
                    WHERE m.product_stock_code = p.stock_code
                    ORDER BY m.seq DESC
                    LIMIT 1
                ), 0) AS last_recorded_quantity
            FROM products p
            WHERE p.deleted_at IS NULL
        ) ledger
        WHERE quantity_on_hand <> last_recorded_quantity
        ORDER BY stock_code
    `
	err := r.DB.SelectContext(ctx, &items, query)
	return items, err
}
