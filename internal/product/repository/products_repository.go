package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

const productColumns = `id, name, sku, barcode, category, purchase_price, selling_price,
	       current_stock, unit, min_stock_threshold, expiry_date, is_active,
	       created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.Category,
		&p.PurchasePrice, &p.SellingPrice, &p.CurrentStock,
		&p.Unit, &p.MinStockThreshold, &p.ExpiryDate, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLProductRepository) Insert(ctx context.Context, p domain.Product) (int, error) {
	query := `
		INSERT INTO products (name, sku, barcode, category, purchase_price, selling_price,
		                      current_stock, unit, min_stock_threshold, expiry_date, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.SKU, p.Barcode, p.Category, p.PurchasePrice, p.SellingPrice,
		p.CurrentStock, p.Unit, p.MinStockThreshold, p.ExpiryDate, p.IsActive,
	)
	if err != nil {
		return 0, errors.NewPersistenceError("inserting product", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewPersistenceError("getting last insert id", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ?`, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, errors.NewPersistenceError("querying product by id", err)
	}

	return p, nil
}

// FindByIDForUpdate reads a product inside the caller's transaction with a
// row lock, so the balance computed from current_stock cannot race a
// concurrent movement on the same product.
func (r *MySQLProductRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ? FOR UPDATE`, productColumns)

	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, errors.NewPersistenceError("querying product for update", err)
	}

	return p, nil
}

func (r *MySQLProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE sku = ?`, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with sku %q not found", sku))
	}
	if err != nil {
		return nil, errors.NewPersistenceError("querying product by sku", err)
	}

	return p, nil
}

func (r *MySQLProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE 1=1`, productColumns)
	var args []interface{}

	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		query += ` AND (name LIKE ? OR sku LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewPersistenceError("querying products", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *MySQLProductRepository) Update(ctx context.Context, p domain.Product) error {
	query := `
		UPDATE products
		SET name = ?, sku = ?, barcode = ?, category = ?, purchase_price = ?,
		    selling_price = ?, unit = ?, min_stock_threshold = ?, expiry_date = ?, is_active = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.SKU, p.Barcode, p.Category, p.PurchasePrice,
		p.SellingPrice, p.Unit, p.MinStockThreshold, p.ExpiryDate, p.IsActive,
		p.ID,
	)
	if err != nil {
		return errors.NewPersistenceError("updating product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		// An update that changes no values also reports zero rows;
		// distinguish that from a missing id.
		var exists bool
		err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, p.ID).Scan(&exists)
		if err != nil {
			return errors.NewPersistenceError("checking product existence", err)
		}
		if !exists {
			return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", p.ID))
		}
	}

	return nil
}

func (r *MySQLProductRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE products SET is_active = 0 WHERE id = ? AND is_active = 1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewPersistenceError("soft-deleting product", err)
	}

	return checkFound(result, fmt.Sprintf("product with id %d not found", id))
}

// UpdateCurrentStock writes the cached balance. Only the ledger may call
// this, and only inside the same transaction as the movement row.
func (r *MySQLProductRepository) UpdateCurrentStock(ctx context.Context, tx *sql.Tx, id int, balance decimal.Decimal) error {
	query := `UPDATE products SET current_stock = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, balance, id)
	if err != nil {
		return errors.NewPersistenceError("updating cached stock", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError("getting rows affected", err)
	}
	// Zero rows is fine when the balance is unchanged (ADJUST to the same
	// value); the FOR UPDATE read already proved the row exists.
	_ = rowsAffected

	return nil
}

// FindLowStock returns active products at or below their alert threshold.
// Products with a zero threshold never match.
func (r *MySQLProductRepository) FindLowStock(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE is_active = 1
		  AND min_stock_threshold > 0
		  AND current_stock <= min_stock_threshold
		ORDER BY id ASC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewPersistenceError("querying low-stock products", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// FindExpiringWithin returns active products whose legacy expiry_date falls
// strictly after today and within the given window of days.
func (r *MySQLProductRepository) FindExpiringWithin(ctx context.Context, days int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE is_active = 1
		  AND expiry_date IS NOT NULL
		  AND DATEDIFF(expiry_date, CURDATE()) BETWEEN 1 AND ?
		ORDER BY expiry_date ASC`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, errors.NewPersistenceError("querying expiring products", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.NewPersistenceError("scanning product row", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterating product rows", err)
	}
	return products, nil
}

func checkFound(result sql.Result, message string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(message)
	}
	return nil
}
