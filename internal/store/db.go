// internal/store/db.go
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Драйвер PostgreSQL
)

// ConnectPostgres открывает и проверяет соединение с PostgreSQL.
// Возвращенный *sqlx.DB передается во все Postgres-хранилища.
func ConnectPostgres(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	if dbURL == "" {
		return nil, errors.New("DB connection string (dbURL) cannot be empty")
	}
	logger.Info("Connecting to PostgreSQL database...")
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}
