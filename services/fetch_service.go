package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/olamide00/countryfx-backend/models"
	"github.com/olamide00/countryfx-backend/shared"
	"github.com/sirupsen/logrus"
)

const (
	upstreamCountries = "countries API"
	upstreamRates     = "exchange rates API"
)

// FetchService retrieves raw data from the two external upstreams. Every call
// is live (no caching) and single-attempt: the first failure aborts with an
// upstream error, per the refresh contract.
type FetchService struct {
	countriesURL string
	ratesURL     string
	client       *http.Client
	metrics      *shared.UpstreamMetrics
}

// NewFetchService creates a fetch service with a bounded per-call timeout
func NewFetchService(countriesURL, ratesURL string, factory *shared.HTTPClientFactory, timeout time.Duration) *FetchService {
	return &FetchService{
		countriesURL: countriesURL,
		ratesURL:     ratesURL,
		client:       factory.Client(timeout),
		metrics:      shared.NewUpstreamMetrics(),
	}
}

// Metrics returns a snapshot of upstream call counters
func (s *FetchService) Metrics() shared.MetricsSnapshot {
	return s.metrics.GetSnapshot()
}

// exchangeRatesResponse is the upstream rate table shape (open.er-api.com v6).
// Rates are expressed as local currency units per 1 USD.
type exchangeRatesResponse struct {
	Result   string             `json:"result"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// FetchCountries retrieves the full country list from the country directory
func (s *FetchService) FetchCountries(ctx context.Context) ([]models.CountryEntry, error) {
	body, err := s.get(ctx, s.countriesURL, upstreamCountries, "fetch_countries")
	if err != nil {
		return nil, err
	}

	var entries []models.CountryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, shared.NewUpstreamError(upstreamCountries, "fetch_countries",
			fmt.Errorf("failed to parse countries response: %w", err))
	}

	logrus.WithField("country_count", len(entries)).Info("Fetched country list from upstream")
	return entries, nil
}

// FetchExchangeRates retrieves the currency-rate table, keyed by currency code
func (s *FetchService) FetchExchangeRates(ctx context.Context) (map[string]float64, error) {
	body, err := s.get(ctx, s.ratesURL, upstreamRates, "fetch_exchange_rates")
	if err != nil {
		return nil, err
	}

	var resp exchangeRatesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shared.NewUpstreamError(upstreamRates, "fetch_exchange_rates",
			fmt.Errorf("failed to parse exchange rates response: %w", err))
	}

	if len(resp.Rates) == 0 {
		return nil, shared.NewUpstreamError(upstreamRates, "fetch_exchange_rates",
			fmt.Errorf("exchange rates response contained no rates"))
	}

	logrus.WithFields(logrus.Fields{
		"rate_count": len(resp.Rates),
		"base_code":  resp.BaseCode,
	}).Info("Fetched exchange rates from upstream")

	return resp.Rates, nil
}

func (s *FetchService) get(ctx context.Context, url, upstream, operation string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordRequest(err == nil, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, shared.NewUpstreamError(upstream, operation, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"upstream": upstream,
			"url":      url,
		}).WithError(err).Error("Upstream request failed")
		return nil, shared.NewUpstreamError(upstream, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{
			"upstream":    upstream,
			"status_code": resp.StatusCode,
		}).Error("Upstream returned non-success status")
		return nil, shared.NewUpstreamError(upstream, operation,
			fmt.Errorf("upstream returned HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, shared.NewUpstreamError(upstream, operation, fmt.Errorf("failed to read response body: %w", err))
	}

	return body, nil
}
