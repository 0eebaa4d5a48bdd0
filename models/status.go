package models

import "time"

// AppStatus is the singleton status record. LastRefreshedAt stays nil until
// the first successful refresh commits, and is only ever written inside the
// same transaction as the country upserts it accompanies.
type AppStatus struct {
	TotalCountries  int        `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// RefreshResult is the success payload of a refresh run
type RefreshResult struct {
	Message         string    `json:"message"`
	TotalCountries  int       `json:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// TopCountry is one entry of the summary image's GDP ranking
type TopCountry struct {
	Name         string   `json:"name"`
	EstimatedGDP *float64 `json:"estimated_gdp"`
}

// RefreshSummary is the renderer input: a snapshot read back from the store
// after a refresh commits.
type RefreshSummary struct {
	TotalCountries int          `json:"total_countries"`
	TopCountries   []TopCountry `json:"top_countries"`
	GeneratedAt    time.Time    `json:"generated_at"`
}
