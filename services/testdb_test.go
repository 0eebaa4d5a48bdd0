package services

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/olamide00/countryfx-backend/database"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the test database, applies the schema and resets
// table contents. Tests that need storage skip when no database is reachable,
// mirroring how the rest of the suite treats integration dependencies.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost/countryfx_test?sslmode=disable"
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Skipf("Skipping database tests - database not available: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Skipping database tests - database ping failed: %v", err)
		return nil
	}

	require.NoError(t, database.Migrate(db, "../database/schema.sql"))

	_, err = db.Exec(`TRUNCATE countries`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE app_status SET last_refreshed_at = NULL WHERE id = 1`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

// snapshotCountries captures the full country table for byte-for-byte
// comparison across a failed refresh.
func snapshotCountries(t *testing.T, db *sql.DB) map[string][]interface{} {
	t.Helper()

	rows, err := db.Query(`SELECT name, capital, region, population, currency_code,
		exchange_rate, estimated_gdp, flag_url, last_refreshed_at FROM countries ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	snapshot := make(map[string][]interface{})
	for rows.Next() {
		var name string
		var capital, region, currencyCode, flagURL sql.NullString
		var population int64
		var exchangeRate, estimatedGDP sql.NullFloat64
		var lastRefreshedAt time.Time
		require.NoError(t, rows.Scan(&name, &capital, &region, &population, &currencyCode,
			&exchangeRate, &estimatedGDP, &flagURL, &lastRefreshedAt))
		snapshot[name] = []interface{}{capital, region, population, currencyCode,
			exchangeRate, estimatedGDP, flagURL, lastRefreshedAt}
	}
	require.NoError(t, rows.Err())
	return snapshot
}
