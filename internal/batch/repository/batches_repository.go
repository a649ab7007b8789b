package repository

import (
	"context"
	"database/sql"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

// MySQLBatchRepository is a read-only aggregation over the ledger. Batches
// are never stored as rows; each one is the signed sum of the batch-tagged
// movements sharing a (product, batch_number, batch_expiry_date) key.
// ADJUST movements never carry batch semantics and are excluded from sums.
type MySQLBatchRepository struct {
	db *sql.DB
}

func NewMySQLBatchRepository(db *sql.DB) *MySQLBatchRepository {
	return &MySQLBatchRepository{db: db}
}

const batchAggregation = `
	SELECT m.product_id, p.name, m.batch_number, m.batch_expiry_date, p.unit,
	       SUM(CASE m.type WHEN 'IN' THEN m.quantity WHEN 'OUT' THEN -m.quantity ELSE 0 END) AS current_quantity
	FROM stock_movements m
	JOIN products p ON p.id = m.product_id
	WHERE m.batch_number IS NOT NULL`

const batchGrouping = `
	GROUP BY m.product_id, p.name, m.batch_number, m.batch_expiry_date, p.unit
	HAVING current_quantity > 0`

// ActiveBatchesForProduct lists the product's non-exhausted batches, soonest
// expiry first; undated batches sort last.
func (r *MySQLBatchRepository) ActiveBatchesForProduct(ctx context.Context, productID int) ([]domain.Batch, error) {
	query := batchAggregation + ` AND m.product_id = ?` + batchGrouping + `
	ORDER BY m.batch_expiry_date IS NULL, m.batch_expiry_date ASC, m.batch_number ASC`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, errors.NewPersistenceError("querying active batches", err)
	}
	defer rows.Close()

	return collectBatches(rows)
}

// ExpiringBatches lists non-exhausted batches across all products whose
// expiry falls between today and the given window. Batches already expired
// are excluded from this upcoming view.
func (r *MySQLBatchRepository) ExpiringBatches(ctx context.Context, days int) ([]domain.Batch, error) {
	query := batchAggregation + `
	  AND m.batch_expiry_date IS NOT NULL
	  AND DATEDIFF(m.batch_expiry_date, CURDATE()) BETWEEN 0 AND ?` + batchGrouping + `
	ORDER BY m.batch_expiry_date ASC, m.product_id ASC, m.batch_number ASC`

	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, errors.NewPersistenceError("querying expiring batches", err)
	}
	defer rows.Close()

	return collectBatches(rows)
}

// OldestBatch returns the product's active batch with the earliest expiry,
// the advisory FIFO pick for the next OUT movement.
func (r *MySQLBatchRepository) OldestBatch(ctx context.Context, productID int) (*domain.Batch, error) {
	batches, err := r.ActiveBatchesForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, errors.NewNotFoundError("no active batches for product")
	}
	return &batches[0], nil
}

// CountExpiringProducts counts distinct products with at least one batch in
// the expiring window. Distinct on product identity so multi-batch products
// are not double-counted.
func (r *MySQLBatchRepository) CountExpiringProducts(ctx context.Context, days int) (int, error) {
	query := `
	SELECT COUNT(DISTINCT product_id) FROM (
		SELECT m.product_id
		FROM stock_movements m
		WHERE m.batch_number IS NOT NULL
		  AND m.batch_expiry_date IS NOT NULL
		  AND DATEDIFF(m.batch_expiry_date, CURDATE()) BETWEEN 0 AND ?
		GROUP BY m.product_id, m.batch_number, m.batch_expiry_date
		HAVING SUM(CASE m.type WHEN 'IN' THEN m.quantity WHEN 'OUT' THEN -m.quantity ELSE 0 END) > 0
	) expiring`

	var count int
	if err := r.db.QueryRowContext(ctx, query, days).Scan(&count); err != nil {
		return 0, errors.NewPersistenceError("counting expiring products", err)
	}

	return count, nil
}

func collectBatches(rows *sql.Rows) ([]domain.Batch, error) {
	var batches []domain.Batch
	for rows.Next() {
		var b domain.Batch
		err := rows.Scan(
			&b.ProductID, &b.ProductName, &b.BatchNumber, &b.ExpiryDate,
			&b.Unit, &b.CurrentQuantity,
		)
		if err != nil {
			return nil, errors.NewPersistenceError("scanning batch row", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterating batch rows", err)
	}
	return batches, nil
}
