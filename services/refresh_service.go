package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/olamide00/countryfx-backend/models"
	"github.com/olamide00/countryfx-backend/shared"
	"github.com/sirupsen/logrus"
)

const topCountriesLimit = 5

// RefreshService orchestrates a full refresh: fetch both upstream datasets,
// join them by currency code, derive the estimated GDP metric and atomically
// replace the stored snapshot. The country upserts and the status timestamp
// commit in one transaction; concurrent readers observe either the pre- or
// post-refresh state, never a mix.
//
// Concurrent refreshes are not mutually excluded. Two simultaneous calls may
// interleave their upserts; single-flighting the orchestrator is a known
// follow-up, not a guarantee of this design.
type RefreshService struct {
	DB             *sql.DB
	Fetcher        *FetchService
	CountryService *CountryService
	ImageService   *ImageService
	rng            *rand.Rand
}

func NewRefreshService(db *sql.DB, fetcher *FetchService, countryService *CountryService, imageService *ImageService) *RefreshService {
	return &RefreshService{
		DB:             db,
		Fetcher:        fetcher,
		CountryService: countryService,
		ImageService:   imageService,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Refresh runs the full pipeline. Either upstream failure aborts before any
// storage is touched; a storage failure rolls the transaction back so the
// store keeps its complete prior state. The refresh is successful once the
// transaction commits; summary image rendering happens after commit and its
// failure is logged, never propagated.
func (s *RefreshService) Refresh(ctx context.Context) (*models.RefreshResult, error) {
	startTime := time.Now()

	entries, err := s.Fetcher.FetchCountries(ctx)
	if err != nil {
		return nil, err
	}

	rates, err := s.Fetcher.FetchExchangeRates(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, shared.NewStorageError("refresh", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	upserted := 0
	for _, entry := range entries {
		if entry.Name == "" {
			logrus.Warn("Skipping country entry with empty name")
			continue
		}

		country := s.deriveCountry(entry, rates, now)
		if err := upsertCountry(ctx, tx, &country); err != nil {
			return nil, shared.NewStorageError("refresh", err)
		}
		upserted++
	}

	_, err = tx.ExecContext(ctx, `UPDATE app_status SET last_refreshed_at = $1 WHERE id = 1`, now)
	if err != nil {
		return nil, shared.NewStorageError("refresh", fmt.Errorf("failed to update app status: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, shared.NewStorageError("refresh", fmt.Errorf("failed to commit refresh transaction: %w", err))
	}

	total := s.readBackTotal(ctx, upserted)

	upstream := s.Fetcher.Metrics()
	logrus.WithFields(logrus.Fields{
		"upserted_count":    upserted,
		"total_countries":   total,
		"processing_time":   time.Since(startTime),
		"upstream_requests": upstream.TotalRequests,
		"upstream_failures": upstream.FailedRequests,
	}).Info("Refresh completed successfully")

	s.renderSummary(ctx, total, now)

	return &models.RefreshResult{
		Message:         "Countries refreshed successfully",
		TotalCountries:  total,
		LastRefreshedAt: now,
	}, nil
}

// deriveCountry joins one raw entry with the rate table and computes the
// derived fields. The GDP multiplier is drawn uniformly from [1000, 2000) per
// country on every run; the metric is intentionally non-deterministic, a
// placeholder for a real GDP model.
func (s *RefreshService) deriveCountry(entry models.CountryEntry, rates map[string]float64, now time.Time) models.Country {
	country := models.Country{
		Name:            entry.Name,
		Population:      entry.Population,
		LastRefreshedAt: now,
	}
	if country.Population < 0 {
		country.Population = 0
	}

	if entry.Capital != "" {
		capital := entry.Capital
		country.Capital = &capital
	}
	if entry.Region != "" {
		region := entry.Region
		country.Region = &region
	}
	if entry.Flag != "" {
		flag := entry.Flag
		country.FlagURL = &flag
	}

	if len(entry.Currencies) == 0 {
		// No currency at all is a known zero-GDP country, distinct from the
		// unknown-rate case which leaves GDP null.
		zero := 0.0
		country.EstimatedGDP = &zero
		return country
	}

	code := entry.Currencies[0].Code
	country.CurrencyCode = &code

	rate, ok := rates[code]
	if !ok || rate <= 0 {
		return country
	}

	multiplier := 1000 + 1000*s.rng.Float64()
	gdp := float64(country.Population) * multiplier / rate

	country.ExchangeRate = &rate
	country.EstimatedGDP = &gdp
	return country
}

// upsertCountry inserts or overwrites a record keyed by name. Every field,
// including last_refreshed_at, is replaced on conflict.
func upsertCountry(ctx context.Context, tx *sql.Tx, country *models.Country) error {
	query := `
		INSERT INTO countries (
			name, capital, region, population,
			currency_code, exchange_rate, estimated_gdp,
			flag_url, last_refreshed_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9
		)
		ON CONFLICT (name) DO UPDATE SET
			capital = EXCLUDED.capital,
			region = EXCLUDED.region,
			population = EXCLUDED.population,
			currency_code = EXCLUDED.currency_code,
			exchange_rate = EXCLUDED.exchange_rate,
			estimated_gdp = EXCLUDED.estimated_gdp,
			flag_url = EXCLUDED.flag_url,
			last_refreshed_at = EXCLUDED.last_refreshed_at;
	`

	_, err := tx.ExecContext(ctx, query,
		country.Name, country.Capital, country.Region, country.Population,
		country.CurrencyCode, country.ExchangeRate, country.EstimatedGDP,
		country.FlagURL, country.LastRefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert country %q: %w", country.Name, err)
	}
	return nil
}

// readBackTotal counts the committed snapshot. The refresh is already
// successful once the transaction commits, so a failed read-back falls back
// to this run's upsert count instead of failing the whole refresh.
func (s *RefreshService) readBackTotal(ctx context.Context, upserted int) int {
	total, err := s.CountryService.CountCountries(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to count countries after refresh, using upserted count")
		return upserted
	}
	return total
}

// renderSummary reads back the committed snapshot and regenerates the summary
// image. Rendering runs after commit, so failures here never fail the refresh.
func (s *RefreshService) renderSummary(ctx context.Context, total int, generatedAt time.Time) {
	top, err := s.CountryService.TopCountriesByGDP(ctx, topCountriesLimit)
	if err != nil {
		logrus.WithError(err).Error("Failed to read top countries for summary image")
		return
	}

	summary := models.RefreshSummary{
		TotalCountries: total,
		TopCountries:   top,
		GeneratedAt:    generatedAt,
	}

	if err := s.ImageService.RenderSummary(summary); err != nil {
		logrus.WithError(err).Error("Failed to render summary image")
		return
	}

	logrus.WithFields(logrus.Fields{
		"total_countries": total,
		"top_count":       len(top),
	}).Info("Summary image regenerated")
}
