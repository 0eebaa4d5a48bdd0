package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/olamide00/countryfx-backend/config"
	"github.com/sirupsen/logrus"
)

// Connect establishes the database connection with default pool configuration.
// The returned handle is passed explicitly into services; there is no
// package-level connection.
func Connect(dbURL string) (*sql.DB, error) {
	return ConnectWithConfig(dbURL, config.DefaultDatabasePoolConfig())
}

// ConnectWithConfig establishes a database connection with custom pool configuration
func ConnectWithConfig(dbURL string, pool *config.DatabasePoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), pool.PingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"max_open_conns":     pool.MaxOpenConns,
		"max_idle_conns":     pool.MaxIdleConns,
		"conn_max_lifetime":  pool.ConnMaxLifetime,
		"conn_max_idle_time": pool.ConnMaxIdleTime,
	}).Info("Connected to database successfully")

	return db, nil
}

func Close(db *sql.DB) {
	if db != nil {
		db.Close()
		logrus.Info("Database connection closed")
	}
}

// HealthCheck pings the database and logs connection pool statistics
func HealthCheck(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not established")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	stats := db.Stats()
	logrus.WithFields(logrus.Fields{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration,
	}).Debug("Database connection pool health check")

	return nil
}

// Migrate applies the idempotent schema from the given file. Statements that
// fail on already-existing objects are logged and skipped so repeated startups
// are safe.
func Migrate(db *sql.DB, schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	statements := parseSQLStatements(string(content))

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)

		if stmt == "" {
			continue
		}

		_, err = db.Exec(stmt)
		if err != nil {
			logrus.Warnf("Migration statement failed (continuing): %v", err)
		}
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

// parseSQLStatements parses SQL content into individual statements.
// This handles multi-line statements and comments properly.
func parseSQLStatements(content string) []string {
	var statements []string
	var currentStatement strings.Builder

	lines := strings.Split(content, "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)

		// Skip empty lines and comment-only lines
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		if currentStatement.Len() > 0 {
			currentStatement.WriteString(" ")
		}
		currentStatement.WriteString(line)

		if strings.HasSuffix(line, ";") {
			statements = append(statements, currentStatement.String())
			currentStatement.Reset()
		}
	}

	if currentStatement.Len() > 0 {
		statements = append(statements, currentStatement.String())
	}

	return statements
}
