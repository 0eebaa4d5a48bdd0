package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	"github.com/olamide00/countryfx-backend/database"
	"github.com/olamide00/countryfx-backend/services"
	"github.com/olamide00/countryfx-backend/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp wires the full route table the way main.go does, against the
// given services.
func newTestApp(countryService *services.CountryService, refreshService *services.RefreshService, imageService *services.ImageService) *fiber.App {
	app := fiber.New()

	countryHandler := NewCountryHandler(countryService)
	refreshHandler := NewRefreshHandler(refreshService, imageService)
	statusHandler := NewStatusHandler(countryService)

	app.Get("/", statusHandler.Liveness)
	app.Get("/status", statusHandler.GetStatus)
	app.Post("/countries/refresh", refreshHandler.RefreshCountries)
	app.Get("/countries/image", refreshHandler.GetSummaryImage)
	app.Get("/countries", countryHandler.GetCountries)
	app.Get("/countries/:name", countryHandler.GetCountryByName)
	app.Delete("/countries/:name", countryHandler.DeleteCountryByName)

	return app
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost/countryfx_test?sslmode=disable"
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Skipf("Skipping handler database tests - database not available: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Skipping handler database tests - database ping failed: %v", err)
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

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestLiveness(t *testing.T) {
	app := newTestApp(services.NewCountryService(nil), nil, services.NewImageService("unused.png"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "ok", payload["status"])
}

func TestGetCountriesRejectsUnknownSort(t *testing.T) {
	// Sort validation happens before any storage access
	app := newTestApp(services.NewCountryService(nil), nil, services.NewImageService("unused.png"))

	req := httptest.NewRequest(http.MethodGet, "/countries?sort=alphabetical", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "Validation failed", payload["error"])
	details, ok := payload["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "sort")
}

func TestDecodeNameParam(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/countries/:name", func(c *fiber.Ctx) error {
		name, err := decodeNameParam(c)
		if err != nil {
			return c.SendStatus(http.StatusBadRequest)
		}
		got = name
		return c.SendString(name)
	})

	tests := []struct {
		name string
		path string
		want string
	}{
		{"percent-encoded space", "/countries/Sierra%20Leone", "Sierra Leone"},
		{"literal plus stays a plus", "/countries/Walvis+Bay", "Walvis+Bay"},
		{"encoded plus stays a plus", "/countries/Walvis%2BBay", "Walvis+Bay"},
		{"plain name", "/countries/Nigeria", "Nigeria"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSummaryImageBeforeFirstRefresh(t *testing.T) {
	imageService := services.NewImageService(filepath.Join(t.TempDir(), "summary.png"))
	app := newTestApp(services.NewCountryService(nil), nil, imageService)

	req := httptest.NewRequest(http.MethodGet, "/countries/image", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "Summary image not found", payload["error"])
}

func TestCountryRoutesAgainstStore(t *testing.T) {
	db := setupTestDB(t)
	countryService := services.NewCountryService(db)
	imageService := services.NewImageService(filepath.Join(t.TempDir(), "summary.png"))
	app := newTestApp(countryService, nil, imageService)

	seedViaRefresh(t, db, imageService, countryService)

	t.Run("list returns array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/countries", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var countries []map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &countries))
		assert.NotEmpty(t, countries)
	})

	t.Run("get by name is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/countries/NIGERIA", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		payload := decodeBody(t, resp)
		assert.Equal(t, "Nigeria", payload["name"])
	})

	t.Run("get unknown name returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/countries/Wakanda", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		payload := decodeBody(t, resp)
		assert.Equal(t, "Country not found", payload["error"])
	})

	t.Run("delete unknown name returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/countries/Atlantis", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		payload := decodeBody(t, resp)
		assert.Equal(t, "Country not found", payload["error"])
	})

	t.Run("delete then get returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/countries/nigeria", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		req = httptest.NewRequest(http.MethodGet, "/countries/Nigeria", nil)
		resp, err = app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("status reflects store", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		payload := decodeBody(t, resp)
		assert.Contains(t, payload, "total_countries")
		assert.Contains(t, payload, "last_refreshed_at")
	})
}

func TestRefreshEndpointUpstreamFailure(t *testing.T) {
	db := setupTestDB(t)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	factory := shared.NewHTTPClientFactory(2 * time.Second)
	fetcher := services.NewFetchService(down.URL, down.URL, factory, 2*time.Second)
	countryService := services.NewCountryService(db)
	imageService := services.NewImageService(filepath.Join(t.TempDir(), "summary.png"))
	refreshService := services.NewRefreshService(db, fetcher, countryService, imageService)

	app := newTestApp(countryService, refreshService, imageService)

	req := httptest.NewRequest(http.MethodPost, "/countries/refresh", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "External data source unavailable", payload["error"])
	assert.Contains(t, payload["details"], "countries API")
}

// seedViaRefresh runs a real refresh against fake upstreams so handler tests
// exercise data shaped exactly like production writes.
func seedViaRefresh(t *testing.T, db *sql.DB, imageService *services.ImageService, countryService *services.CountryService) {
	t.Helper()

	countriesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"Nigeria","capital":"Abuja","region":"Africa","population":206139589,
			 "flag":"https://flagcdn.com/ng.svg","currencies":[{"code":"NGN","name":"Nigerian naira","symbol":"₦"}]},
			{"name":"Ghana","capital":"Accra","region":"Africa","population":31072940,
			 "flag":"https://flagcdn.com/gh.svg","currencies":[{"code":"GHS","name":"Ghanaian cedi","symbol":"₵"}]}
		]`))
	}))
	t.Cleanup(countriesSrv.Close)

	ratesSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"NGN":1600.0,"GHS":15.4}}`))
	}))
	t.Cleanup(ratesSrv.Close)

	factory := shared.NewHTTPClientFactory(5 * time.Second)
	fetcher := services.NewFetchService(countriesSrv.URL, ratesSrv.URL, factory, 5*time.Second)
	refreshService := services.NewRefreshService(db, fetcher, countryService, imageService)

	_, err := refreshService.Refresh(context.Background())
	require.NoError(t, err)
}
