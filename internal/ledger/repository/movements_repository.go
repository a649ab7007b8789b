package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

type MySQLMovementRepository struct {
	db *sql.DB
}

func NewMySQLMovementRepository(db *sql.DB) *MySQLMovementRepository {
	return &MySQLMovementRepository{db: db}
}

const movementColumns = `id, product_id, type, quantity, unit, reference_no, notes,
	       batch_number, batch_expiry_date, balance_after, created_at`

// Insert appends one ledger row inside the caller's transaction. Rows are
// immutable after this point; there is no update path.
func (r *MySQLMovementRepository) Insert(ctx context.Context, tx *sql.Tx, m domain.StockMovement) (int64, error) {
	query := `
		INSERT INTO stock_movements (product_id, type, quantity, unit, reference_no, notes,
		                             batch_number, batch_expiry_date, balance_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		m.ProductID, string(m.Type), m.Quantity, m.Unit, m.ReferenceNo, m.Notes,
		m.BatchNumber, m.BatchExpiryDate, m.BalanceAfter, m.CreatedAt,
	)
	if err != nil {
		return 0, errors.NewPersistenceError("inserting movement", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewPersistenceError("getting last insert id", err)
	}

	return lastInsertID, nil
}

func (r *MySQLMovementRepository) FindByID(ctx context.Context, id int64) (*domain.StockMovement, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE id = ?`, movementColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the movement row inside the reversal transaction so
// a racing reversal of the same entry cannot double-apply.
func (r *MySQLMovementRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.StockMovement, error) {
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE id = ? FOR UPDATE`, movementColumns)
	return r.scanOne(tx.QueryRowContext(ctx, query, id), id)
}

func (r *MySQLMovementRepository) scanOne(row *sql.Row, id int64) (*domain.StockMovement, error) {
	var m domain.StockMovement
	var mtype string
	err := row.Scan(
		&m.ID, &m.ProductID, &mtype, &m.Quantity, &m.Unit, &m.ReferenceNo, &m.Notes,
		&m.BatchNumber, &m.BatchExpiryDate, &m.BalanceAfter, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("movement with id %d not found", id))
	}
	if err != nil {
		return nil, errors.NewPersistenceError("querying movement by id", err)
	}
	m.Type = domain.MovementType(mtype)

	return &m, nil
}

// Delete removes a ledger row as part of a reversal. The caller must adjust
// the cached balance in the same transaction.
func (r *MySQLMovementRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM stock_movements WHERE id = ?`, id)
	if err != nil {
		return errors.NewPersistenceError("deleting movement", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewPersistenceError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("movement with id %d not found", id))
	}

	return nil
}

func (r *MySQLMovementRepository) ListByProduct(ctx context.Context, productID int) ([]domain.StockMovement, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stock_movements
		WHERE product_id = ?
		ORDER BY created_at DESC, id DESC`, movementColumns)

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, errors.NewPersistenceError("querying movements", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		var mtype string
		err := rows.Scan(
			&m.ID, &m.ProductID, &mtype, &m.Quantity, &m.Unit, &m.ReferenceNo, &m.Notes,
			&m.BatchNumber, &m.BatchExpiryDate, &m.BalanceAfter, &m.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewPersistenceError("scanning movement row", err)
		}
		m.Type = domain.MovementType(mtype)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterating movement rows", err)
	}

	return movements, nil
}
