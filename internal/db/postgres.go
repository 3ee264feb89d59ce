package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitPostgres initializes and returns a PostgreSQL connection pool
func InitPostgres() (*pgxpool.Pool, error) {
	// Get database URL from environment variable or use default
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Default local development configuration
		host := getEnvOrDefault("POSTGRES_HOST", "localhost")
		port := getEnvOrDefault("POSTGRES_PORT", "5432")
		user := getEnvOrDefault("POSTGRES_USER", "heartline")
		password := getEnvOrDefault("POSTGRES_PASSWORD", "")
		dbname := getEnvOrDefault("POSTGRES_DB", "heartline")
		sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute * 5

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pool, nil
}

// createTables creates all required tables if they don't exist
func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	// Users table - stores Firebase user information
	usersTable := `
		CREATE TABLE IF NOT EXISTS users (
			uid VARCHAR(255) PRIMARY KEY,
			display_name VARCHAR(255),
			email VARCHAR(255) UNIQUE NOT NULL,
			token TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Profiles - persona attributes used to personalize messages
	profilesTable := `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id VARCHAR(255) PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			recipient_name VARCHAR(255) NOT NULL DEFAULT '',
			tone VARCHAR(500) NOT NULL DEFAULT '',
			relationship_status VARCHAR(255) NOT NULL DEFAULT '',
			special_words TEXT[] NOT NULL DEFAULT '{}',
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Push tokens - stores device push registration, one per user
	pushTokensTable := `
		CREATE TABLE IF NOT EXISTS push_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id VARCHAR(255) NOT NULL,
			expo_push_token TEXT NOT NULL,
			platform VARCHAR(20) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			active BOOLEAN DEFAULT TRUE,
			UNIQUE(user_id)
		);
	`

	// Notification schedules - recurring slots; due when last_sent_at is
	// null or older than the slot interval
	schedulesTable := `
		CREATE TABLE IF NOT EXISTS notification_schedules (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id VARCHAR(255) NOT NULL,
			label VARCHAR(100) NOT NULL,
			interval_minutes INTEGER NOT NULL DEFAULT 1440,
			active BOOLEAN DEFAULT TRUE,
			last_sent_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE(user_id, label)
		);
	`

	// Delivery logs - append-only audit trail, one row per dispatch attempt
	deliveryLogsTable := `
		CREATE TABLE IF NOT EXISTS delivery_logs (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			schedule_label VARCHAR(100) NOT NULL,
			token TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			payload JSONB NOT NULL DEFAULT '{}',
			provider_response JSONB,
			status VARCHAR(20) NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_push_tokens_user_id ON push_tokens(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_push_tokens_active ON push_tokens(active);`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_user_id ON notification_schedules(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_due ON notification_schedules(active, last_sent_at);`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_logs_user_id ON delivery_logs(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_logs_created_at ON delivery_logs(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_delivery_logs_status ON delivery_logs(status);`,
	}

	tables := []string{usersTable, profilesTable, pushTokensTable, schedulesTable, deliveryLogsTable}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
