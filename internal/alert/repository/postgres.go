package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/alert/dto"
	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindActiveByProduct(ctx context.Context, stockCode string) (*model.LowStockAlert, error) {
	var a model.LowStockAlert
	query := r.DB.Rebind(`
        SELECT * FROM low_stock_alerts
        WHERE product_stock_code = ? AND status = ?
        ORDER BY triggered_at DESC
        LIMIT 1
    `)
	err := r.DB.GetContext(ctx, &a, query, stockCode, model.AlertStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) Create(ctx context.Context, a *model.LowStockAlert) error {
	query := `
        INSERT INTO low_stock_alerts (
            id, product_stock_code, current_stock_at_alert, min_stock_level_at_alert,
            status, triggered_at, resolved_at, notes
        )
        VALUES (
            :id, :product_stock_code, :current_stock_at_alert, :min_stock_level_at_alert,
            :status, :triggered_at, :resolved_at, :notes
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, a)
	return err
}

func (r *PGRepository) Resolve(ctx context.Context, id string, resolvedAt time.Time, notes string) error {
	query := r.DB.Rebind(`
        UPDATE low_stock_alerts
        SET status = ?, resolved_at = ?, notes = ?
        WHERE id = ? AND status = ?
    `)
	_, err := r.DB.ExecContext(ctx, query, model.AlertStatusResolved, resolvedAt, notes, id, model.AlertStatusActive)
	return err
}

func (r *PGRepository) ListActive(ctx context.Context) ([]model.ActiveAlertView, error) {
	items := []model.ActiveAlertView{}
	query := r.DB.Rebind(`
        SELECT a.*, p.name AS product_name
        FROM low_stock_alerts a
        JOIN products p ON p.stock_code = a.product_stock_code
        WHERE a.status = ? AND p.deleted_at IS NULL
        ORDER BY a.triggered_at DESC
    `)
	err := r.DB.SelectContext(ctx, &items, query, model.AlertStatusActive)
	return items, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.AlertFilters) ([]model.LowStockAlert, int, error) {
	items := []model.LowStockAlert{}
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.StockCode != "" {
		conditions = append(conditions, "product_stock_code = :stock_code")
		args["stock_code"] = f.StockCode
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = string(f.Status)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM low_stock_alerts"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM low_stock_alerts" + whereClause + " ORDER BY triggered_at DESC"
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
