package models

import (
	"time"

	"github.com/google/uuid"
)

type Country struct {
	ID uuid.UUID `json:"id"`

	// Name uniquely identifies a record; re-ingesting the same name updates
	// in place, never duplicates.
	Name string `json:"name"`

	Capital    *string `json:"capital"`
	Region     *string `json:"region"`
	Population int64   `json:"population"`

	// CurrencyCode is the first currency listed by the upstream country
	// directory, or nil when the country lists none.
	CurrencyCode *string `json:"currency_code"`

	// ExchangeRate is expressed as local currency units per 1 USD.
	// ExchangeRate and EstimatedGDP are both present or both absent, except
	// the no-currency case where EstimatedGDP is exactly 0.
	ExchangeRate *float64 `json:"exchange_rate"`
	EstimatedGDP *float64 `json:"estimated_gdp"`

	FlagURL *string `json:"flag_url"`

	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// CountryEntry is one raw entry from the upstream country directory
// (restcountries v2 shape).
type CountryEntry struct {
	Name       string  `json:"name"`
	Capital    string  `json:"capital"`
	Region     string  `json:"region"`
	Population int64   `json:"population"`
	Flag       string  `json:"flag"`
	Currencies []struct {
		Code   string `json:"code"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
}

// ListFilters are the query parameters accepted by the country listing
type ListFilters struct {
	Region   string
	Currency string
	Sort     string // "gdp_desc", "gdp_asc" or ""
}
