package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration-test database. Expects a MySQL instance
// on localhost:3306 with a database named 'stockroom_test'; tests skip when
// it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/stockroom_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"notifications", "stock_movements", "categories", "products"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the tests run against.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createProductsTable := `
	CREATE TABLE IF NOT EXISTS products (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sku VARCHAR(100) NULL,
		barcode VARCHAR(100) NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		purchase_price DECIMAL(20,4) NOT NULL DEFAULT 0,
		selling_price DECIMAL(20,4) NOT NULL DEFAULT 0,
		current_stock DECIMAL(20,4) NOT NULL DEFAULT 0,
		unit VARCHAR(20) NOT NULL DEFAULT 'pcs',
		min_stock_threshold DECIMAL(20,4) NOT NULL DEFAULT 0,
		expiry_date DATE NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE INDEX idx_sku (sku),
		INDEX idx_active (is_active)
	)`

	createMovementsTable := `
	CREATE TABLE IF NOT EXISTS stock_movements (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		product_id INT NOT NULL,
		type VARCHAR(10) NOT NULL,
		quantity DECIMAL(20,4) NOT NULL,
		unit VARCHAR(20) NOT NULL DEFAULT 'pcs',
		reference_no VARCHAR(100) NULL,
		notes TEXT NULL,
		batch_number VARCHAR(100) NULL,
		batch_expiry_date DATE NULL,
		balance_after DECIMAL(20,4) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (product_id) REFERENCES products(id),
		INDEX idx_product (product_id),
		INDEX idx_batch (product_id, batch_number, batch_expiry_date)
	)`

	createCategoriesTable := `
	CREATE TABLE IF NOT EXISTS categories (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	createNotificationsTable := `
	CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		type VARCHAR(30) NOT NULL,
		priority VARCHAR(10) NOT NULL,
		title VARCHAR(100) NOT NULL,
		message TEXT NOT NULL,
		icon VARCHAR(40) NOT NULL DEFAULT '',
		product_id INT NULL,
		product_name VARCHAR(255) NULL,
		quantity DECIMAL(20,4) NULL,
		unit VARCHAR(20) NULL,
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_dedup (type, product_id, created_at),
		INDEX idx_read (is_read)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"products", createProductsTable},
		{"stock_movements", createMovementsTable},
		{"categories", createCategoriesTable},
		{"notifications", createNotificationsTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
