package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olamide00/countryfx-backend/models"
	"github.com/sirupsen/logrus"
)

const countryColumns = `id, name, capital, region, population, currency_code,
              exchange_rate, estimated_gdp, flag_url, last_refreshed_at`

// CountryService provides read, filter and delete operations over the
// country record store.
type CountryService struct {
	DB *sql.DB
}

func NewCountryService(db *sql.DB) *CountryService {
	return &CountryService{DB: db}
}

// ListCountries returns every record matching the filters. An empty result is
// an empty slice, not an error. Default order is unspecified when no sort is
// requested; gdp sorts exclude no rows but place null GDPs last.
func (s *CountryService) ListCountries(ctx context.Context, filters models.ListFilters) ([]models.Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries`

	var args []interface{}
	var conditions string

	if filters.Region != "" {
		args = append(args, filters.Region)
		conditions = fmt.Sprintf(" WHERE region = $%d", len(args))
	}
	if filters.Currency != "" {
		args = append(args, filters.Currency)
		if conditions == "" {
			conditions = fmt.Sprintf(" WHERE currency_code = $%d", len(args))
		} else {
			conditions += fmt.Sprintf(" AND currency_code = $%d", len(args))
		}
	}
	query += conditions

	switch filters.Sort {
	case "gdp_desc":
		query += ` ORDER BY estimated_gdp DESC NULLS LAST, name ASC`
	case "gdp_asc":
		query += ` ORDER BY estimated_gdp ASC NULLS LAST, name ASC`
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	countries := []models.Country{}
	for rows.Next() {
		country, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		countries = append(countries, country)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate country rows: %w", err)
	}
	return countries, nil
}

// GetCountryByName returns the record matching the name case-insensitively,
// or nil when no record matches.
func (s *CountryService) GetCountryByName(ctx context.Context, name string) (*models.Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries WHERE LOWER(name) = LOWER($1)`

	row := s.DB.QueryRowContext(ctx, query, name)
	country, err := scanCountry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}

// DeleteCountryByName removes the record matching the name case-insensitively.
// Returns false when no row matched. Deletion never touches the status row or
// the summary image.
func (s *CountryService) DeleteCountryByName(ctx context.Context, name string) (bool, error) {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM countries WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete country: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	if affected > 0 {
		logrus.WithField("country_name", name).Info("Country deleted")
	}
	return affected > 0, nil
}

// GetStatus returns the live record count and last refresh timestamp
func (s *CountryService) GetStatus(ctx context.Context) (*models.AppStatus, error) {
	status := &models.AppStatus{}

	total, err := s.CountCountries(ctx)
	if err != nil {
		return nil, err
	}
	status.TotalCountries = total

	err = s.DB.QueryRowContext(ctx, `SELECT last_refreshed_at FROM app_status WHERE id = 1`).
		Scan(&status.LastRefreshedAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read app status: %w", err)
	}

	return status, nil
}

// CountCountries returns the total number of stored records
func (s *CountryService) CountCountries(ctx context.Context) (int, error) {
	var total int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count countries: %w", err)
	}
	return total, nil
}

// TopCountriesByGDP returns up to limit records ranked by estimated GDP
// descending. Records with null GDP are excluded; ties break by name so the
// ranking is deterministic.
func (s *CountryService) TopCountriesByGDP(ctx context.Context, limit int) ([]models.TopCountry, error) {
	query := `SELECT name, estimated_gdp FROM countries
              WHERE estimated_gdp IS NOT NULL
              ORDER BY estimated_gdp DESC, name ASC LIMIT $1`

	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top countries: %w", err)
	}
	defer rows.Close()

	var top []models.TopCountry
	for rows.Next() {
		var entry models.TopCountry
		if err := rows.Scan(&entry.Name, &entry.EstimatedGDP); err != nil {
			return nil, fmt.Errorf("failed to scan top country row: %w", err)
		}
		top = append(top, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top country rows: %w", err)
	}
	return top, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCountry(row rowScanner) (models.Country, error) {
	var country models.Country
	err := row.Scan(
		&country.ID, &country.Name, &country.Capital, &country.Region, &country.Population,
		&country.CurrencyCode, &country.ExchangeRate, &country.EstimatedGDP,
		&country.FlagURL, &country.LastRefreshedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return country, err
		}
		return country, fmt.Errorf("failed to scan country row: %w", err)
	}
	return country, nil
}
