package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/mr30303/taxiDriver/internal/config"
)

// Connection holds the database connection
type Connection struct {
	DB *sql.DB
}

// DSN builds a lib/pq connection string from the PG* environment variables
func DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.GetEnv("PGHOST", "localhost"),
		config.GetEnv("PGPORT", "5432"),
		config.GetEnv("PGUSER", "postgres"),
		config.GetEnv("PGPASSWORD", "postgres"),
		config.GetEnv("PGDATABASE", "restrooms"),
		config.GetEnv("PGSSLMODE", "disable"),
	)
}

// NewConnection opens and pings a database connection
func NewConnection(ctx context.Context) (*Connection, error) {
	db, err := sql.Open("postgres", DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}
