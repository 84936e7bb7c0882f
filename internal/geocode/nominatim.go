// Package geocode converts between coordinates and addresses through the
// Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/models"
	"github.com/smatkovi/fnb/pkg/http/client"
)

const reverseCacheSize = 128

type Client struct {
	httpClient *client.Client
	// Reverse lookups are memoized by rounded coordinate: nearby spots
	// often share an address, and Nominatim asks clients to avoid
	// duplicate queries.
	reverseCache *lru.Cache[string, string]
}

func NewClient(httpClient *client.Client) (*Client, error) {
	cache, err := lru.New[string, string](reverseCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating reverse geocode cache: %w", err)
	}
	return &Client{httpClient: httpClient, reverseCache: cache}, nil
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search resolves a free-text address to a coordinate.
func (c *Client) Search(ctx context.Context, query string) (models.Coordinate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []searchResult
	if err := c.getJSON(ctx, "/search?"+params.Encode(), &results); err != nil {
		return models.Coordinate{}, err
	}
	if len(results) == 0 {
		return models.Coordinate{}, fmt.Errorf("no results for %q", query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("parsing latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("parsing longitude %q: %w", results[0].Lon, err)
	}
	return models.Coordinate{Lat: lat, Lon: lon}, nil
}

// Reverse resolves a coordinate to a display address.
func (c *Client) Reverse(ctx context.Context, coord models.Coordinate) (string, error) {
	key := models.KeyOf(coord).String()
	if addr, ok := c.reverseCache.Get(key); ok {
		log.Trace().Str("key", key).Msg("Reverse geocode cache hit")
		return addr, nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", coord.Lat))
	params.Set("lon", fmt.Sprintf("%f", coord.Lon))
	params.Set("format", "json")

	var result struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.getJSON(ctx, "/reverse?"+params.Encode(), &result); err != nil {
		return "", err
	}
	if result.DisplayName == "" {
		return "", fmt.Errorf("no address for (%v, %v)", coord.Lat, coord.Lon)
	}

	c.reverseCache.Add(key, result.DisplayName)
	return result.DisplayName, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("querying nominatim: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("querying nominatim: HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decoding nominatim response: %w", err)
	}
	return nil
}
