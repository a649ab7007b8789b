package repository

import (
	"context"
	"database/sql"

	"stockroom/internal/domain"
	"stockroom/internal/errors"
)

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

func (r *MySQLCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, created_at FROM categories ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewPersistenceError("querying categories", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, errors.NewPersistenceError("scanning category row", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("iterating category rows", err)
	}

	return categories, nil
}

func (r *MySQLCategoryRepository) Insert(ctx context.Context, name string) (int, error) {
	result, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, errors.NewPersistenceError("inserting category", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewPersistenceError("getting last insert id", err)
	}

	return int(lastInsertID), nil
}
