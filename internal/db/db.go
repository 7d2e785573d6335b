package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

func InitDB(driver, dbURL string) *sql.DB {
	db, err := Open(driver, dbURL)
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}

	log.Println("database connected")
	return db
}

// Open connects with the named driver and pings the server.
func Open(driver, dbURL string) (*sql.DB, error) {
	dsn, err := normalizeDSN(driver, dbURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer; keeps in-memory databases on a single connection
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

func normalizeDSN(driver, dbURL string) (string, error) {
	switch driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dbURL)
		if err != nil {
			return "", fmt.Errorf("invalid mysql DSN: %w", err)
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		if dbURL == "" {
			dbURL = "file:catalog.db"
		}
		if !strings.Contains(dbURL, "_foreign_keys") {
			sep := "?"
			if strings.Contains(dbURL, "?") {
				sep = "&"
			}
			dbURL += sep + "_foreign_keys=on"
		}
		return dbURL, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func RunMigrations(db *sql.DB, driver string) {
	if err := Migrate(context.Background(), db, driver); err != nil {
		log.Fatal("migration failed: ", err)
	}
	log.Println("migrations complete")
}

func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var queries []string
	switch driver {
	case DriverMySQL:
		queries = mysqlSchema
	case DriverSQLite:
		queries = sqliteSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(180) NOT NULL UNIQUE,
		email VARCHAR(180) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		roles TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		category_id BIGINT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_products_category (category_id),
		INDEX idx_products_price (price),
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
	);`,
	`CREATE TABLE IF NOT EXISTS images (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		path VARCHAR(255) NOT NULL,
		INDEX idx_images_product (product_id),
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(180) NOT NULL UNIQUE,
		email VARCHAR(180) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		roles TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		quantity INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);`,
	`CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		path VARCHAR(255) NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_images_product ON images(product_id);`,
}
