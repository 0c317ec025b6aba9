package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, stock_code, name, description, unit,
            quantity_on_hand, min_stock_level, created_at, updated_at
        )
        VALUES (
            :id, :stock_code, :name, :description, :unit,
            :quantity_on_hand, :min_stock_level, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) FindByStockCode(ctx context.Context, stockCode string) (*model.Product, error) {
	var product model.Product
	query := r.DB.Rebind(`SELECT * FROM products WHERE stock_code = ? AND deleted_at IS NULL LIMIT 1`)
	err := r.DB.GetContext(ctx, &product, query, stockCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByStockCodes(ctx context.Context, stockCodes []string) ([]model.Product, error) {
	products := []model.Product{}
	if len(stockCodes) == 0 {
		return products, nil
	}

	query, args, err := sqlx.In(`
        SELECT * FROM products
        WHERE stock_code IN (?) AND deleted_at IS NULL
        ORDER BY name, stock_code
    `, stockCodes)
	if err != nil {
		return nil, err
	}

	err = r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...)
	return products, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	products := []model.Product{}
	var count int

	conditions := []string{"deleted_at IS NULL"}
	if f.LowStock {
		conditions = append(conditions, "min_stock_level > 0 AND quantity_on_hand < min_stock_level")
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) FROM products"+whereClause); err != nil {
		return nil, 0, err
	}

	// Whitelisted, never interpolated from input.
	orderBy := "name"
	switch f.SortBy {
	case "quantity":
		orderBy = "quantity_on_hand"
	case "created_at":
		orderBy = "created_at"
	}
	if strings.ToLower(f.SortOrder) == "desc" {
		orderBy += " DESC"
	} else {
		orderBy += " ASC"
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s, stock_code", whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := r.DB.SelectContext(ctx, &products, query); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

// Update writes the catalogue fields. quantity_on_hand belongs to the ledger
// and is left alone.
func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            description = :description,
            unit = :unit,
            min_stock_level = :min_stock_level,
            updated_at = :updated_at
        WHERE stock_code = :stock_code AND deleted_at IS NULL
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) SoftDelete(ctx context.Context, stockCode string, at time.Time) (bool, error) {
	query := r.DB.Rebind(`UPDATE products SET deleted_at = ?, updated_at = ? WHERE stock_code = ? AND deleted_at IS NULL`)
	res, err := r.DB.ExecContext(ctx, query, at, at, stockCode)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepository) IsStockCodeTaken(ctx context.Context, stockCode string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM products WHERE stock_code = ?`)
	if err := r.DB.GetContext(ctx, &count, query, stockCode); err != nil {
		return false, err
	}
	return count > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PGRepository) Search(ctx context.Context, term string, limit int) ([]model.Product, error) {
	products := []model.Product{}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	query := r.DB.Rebind(`
        SELECT * FROM products
        WHERE deleted_at IS NULL
          AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(stock_code) LIKE ? ESCAPE '\')
        ORDER BY name, stock_code
        LIMIT ?
    `)
	err := r.DB.SelectContext(ctx, &products, query, pattern, pattern, limit)
	return products, err
}
