// Package weather adapts the OpenWeather current-conditions API behind a
// small time-boxed cache.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/elakbay/elakbay/internal/config"
	"go.uber.org/zap"
)

// ErrMissingAPIKey is returned when no OpenWeather API key is configured.
var ErrMissingAPIKey = errors.New("openweather api key is missing")

// ErrIncompleteData is returned when a response lacks a usable temperature.
var ErrIncompleteData = errors.New("weather data is incomplete")

// Current is the normalized current-conditions shape pages consume.
type Current struct {
	TempC        float64  `json:"temp_c"`
	Condition    string   `json:"condition"`
	Humidity     *int     `json:"humidity"`
	WindKph      *float64 `json:"wind_kph"`
	IconCode     *string  `json:"icon_code"`
	LocationName *string  `json:"location_name"`
}

// apiResponse is the subset of the OpenWeather payload the client reads.
type apiResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type cacheEntry struct {
	data    Current
	fetched time.Time
}

// Client fetches current weather with an instance-owned TTL memo, so
// repeated lookups for the same place inside the window cost nothing.
type Client struct {
	apiKey   string
	baseURL  string
	ttl      time.Duration
	province string
	country  string
	http     *http.Client
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a weather client from configuration.
func NewClient(cfg config.WeatherConfig, logger *zap.Logger) *Client {
	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		ttl:      cfg.CacheTTL.Duration,
		province: cfg.Province,
		country:  cfg.Country,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// CurrentByCoordinates returns current conditions at a lat/lon pair.
// Coordinates are rounded to 4 decimals for the cache key.
func (c *Client) CurrentByCoordinates(ctx context.Context, lat, lon float64) (*Current, error) {
	key := fmt.Sprintf("coords:%.4f,%.4f", lat, lon)
	if cached, ok := c.cached(key); ok {
		return cached, nil
	}

	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
		"lang":  {"en"},
	}

	return c.fetchAndCache(ctx, key, query)
}

// CurrentByMunicipality returns current conditions for a named place.
// Empty region/country fall back to the configured province and country.
func (c *Client) CurrentByMunicipality(ctx context.Context, municipality, region, country string) (*Current, error) {
	key := "municipality:" + municipality
	if cached, ok := c.cached(key); ok {
		return cached, nil
	}

	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if region == "" {
		region = c.province
	}
	if country == "" {
		country = c.country
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{municipality, region, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	query := url.Values{
		"q":     {strings.Join(parts, ",")},
		"appid": {c.apiKey},
		"units": {"metric"},
		"lang":  {"en"},
	}

	return c.fetchAndCache(ctx, key, query)
}

// Reset drops the memo; tests and long-lived processes use it.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

func (c *Client) cached(key string) (*Current, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetched) > c.ttl {
		delete(c.cache, key)
		return nil, false
	}

	data := entry.data
	return &data, true
}

func (c *Client) fetchAndCache(ctx context.Context, key string, query url.Values) (*Current, error) {
	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = cacheEntry{data: *result, fetched: c.now()}
	c.mu.Unlock()

	c.logger.Debug("Fetched current weather", zap.String("cache_key", key))
	return result, nil
}

func (c *Client) fetch(ctx context.Context, query url.Values) (*Current, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}

	var payload apiResponse
	// The error body is JSON too; decode before checking the status so
	// the upstream message survives.
	decodeErr := json.Unmarshal(raw, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && payload.Message != "" {
			return nil, fmt.Errorf("failed to fetch current weather: %s", payload.Message)
		}
		return nil, fmt.Errorf("failed to fetch current weather: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", decodeErr)
	}

	return mapCurrent(&payload)
}

// mapCurrent normalizes an OpenWeather payload: Celsius temperature is
// required; the rest is optional.
func mapCurrent(payload *apiResponse) (*Current, error) {
	if payload.Main == nil || payload.Main.Temp == nil {
		return nil, ErrIncompleteData
	}

	current := &Current{
		TempC:     *payload.Main.Temp,
		Condition: "Unknown",
		Humidity:  payload.Main.Humidity,
	}

	if len(payload.Weather) > 0 {
		w := payload.Weather[0]
		if w.Description != "" {
			current.Condition = toSentenceCase(w.Description)
		} else if w.Main != "" {
			current.Condition = toSentenceCase(w.Main)
		}
		if w.Icon != "" {
			icon := w.Icon
			current.IconCode = &icon
		}
	}

	if payload.Wind != nil && payload.Wind.Speed != nil {
		// OpenWeather reports metres per second.
		kph := *payload.Wind.Speed * 3.6
		current.WindKph = &kph
	}

	if payload.Name != "" {
		name := payload.Name
		current.LocationName = &name
	}

	return current, nil
}

func toSentenceCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
