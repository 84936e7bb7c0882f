// Package citybikes resolves a city name against the CityBik.es network
// directory and fetches that network's stations.
package citybikes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/smatkovi/fnb/internal/models"
	"github.com/smatkovi/fnb/pkg/http/client"
)

type Client struct {
	httpClient *client.Client
}

func NewClient(httpClient *client.Client) *Client {
	return &Client{httpClient: httpClient}
}

// Network is one bike-share network from the directory.
type Network struct {
	ID   string
	City string
}

// ResolveNetwork matches query case-insensitively as a substring of each
// network's city and requires exactly one hit. Zero hits returns a
// CityMatchError listing every known city; more than one returns the
// ambiguous subset.
func (c *Client) ResolveNetwork(ctx context.Context, query string) (Network, error) {
	var dirResp struct {
		Networks []struct {
			ID       string `json:"id"`
			Location struct {
				City string `json:"city"`
			} `json:"location"`
		} `json:"networks"`
	}
	if err := c.getJSON(ctx, "/v2/networks", "network directory", &dirResp); err != nil {
		return Network{}, err
	}

	needle := strings.ToLower(query)
	var matches []Network
	var allCities []string
	for _, n := range dirResp.Networks {
		allCities = append(allCities, n.Location.City)
		if strings.Contains(strings.ToLower(n.Location.City), needle) {
			matches = append(matches, Network{ID: n.ID, City: n.Location.City})
		}
	}

	switch len(matches) {
	case 1:
		log.Debug().Str("network_id", matches[0].ID).Str("city", matches[0].City).Msg("Resolved city")
		return matches[0], nil
	case 0:
		sort.Strings(allCities)
		return Network{}, &CityMatchError{Query: query, Candidates: allCities}
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = fmt.Sprintf("%s (%s)", m.City, m.ID)
		}
		return Network{}, &CityMatchError{Query: query, Candidates: candidates, Ambiguous: true}
	}
}

// FetchStations retrieves one network's stations and normalizes the
// CityBik.es field names (free_bikes, latitude/longitude) into the canonical
// record. CityBik.es has no separate free-floating feed.
func (c *Client) FetchStations(ctx context.Context, networkID string) ([]models.Station, error) {
	var netResp struct {
		Network struct {
			Stations []struct {
				ID        string   `json:"id"`
				Name      string   `json:"name"`
				Latitude  *float64 `json:"latitude"`
				Longitude *float64 `json:"longitude"`
				FreeBikes int      `json:"free_bikes"`
			} `json:"stations"`
		} `json:"network"`
	}
	if err := c.getJSON(ctx, "/v2/networks/"+networkID, "network stations", &netResp); err != nil {
		return nil, err
	}

	stations := make([]models.Station, 0, len(netResp.Network.Stations))
	for _, s := range netResp.Network.Stations {
		name := s.Name
		if name == "" {
			name = "Unnamed"
		}
		stations = append(stations, models.Station{
			ID:    s.ID,
			Name:  name,
			Lat:   s.Latitude,
			Lon:   s.Longitude,
			Bikes: s.FreeBikes,
		})
	}

	log.Debug().Int("stations", len(stations)).Str("network_id", networkID).Msg("Fetched CityBik.es stations")
	return stations, nil
}

func (c *Client) getJSON(ctx context.Context, path, label string, out interface{}) error {
	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		return NewAPIError(fmt.Sprintf("fetching %s", label), err)
	}
	if resp.StatusCode != 200 {
		return NewAPIError(fmt.Sprintf("fetching %s: HTTP %d", label, resp.StatusCode), nil)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return NewAPIError(fmt.Sprintf("decoding %s", label), err)
	}
	return nil
}
