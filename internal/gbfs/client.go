// Package gbfs fetches a General Bikeshare Feed Specification system and
// normalizes it into the canonical station and free-bike records.
package gbfs

import (
	"context"
	"encoding/json"
	"fmt"

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

// FetchAll retrieves the three GBFS feeds and merges station metadata with
// live status by station id. A station present in the metadata but absent
// from the status feed counts as having zero bikes; status entries for
// unknown stations are dropped.
func (c *Client) FetchAll(ctx context.Context) ([]models.FreeBike, []models.Station, error) {
	var infoResp struct {
		Data struct {
			Stations []struct {
				StationID string   `json:"station_id"`
				Name      string   `json:"name"`
				Lat       *float64 `json:"lat"`
				Lon       *float64 `json:"lon"`
			} `json:"stations"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/station_information.json", "station information", &infoResp); err != nil {
		return nil, nil, err
	}

	var statusResp struct {
		Data struct {
			Stations []struct {
				StationID         string `json:"station_id"`
				NumBikesAvailable int    `json:"num_bikes_available"`
			} `json:"stations"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/station_status.json", "station status", &statusResp); err != nil {
		return nil, nil, err
	}

	var bikesResp struct {
		Data struct {
			Bikes []struct {
				BikeID string   `json:"bike_id"`
				Lat    *float64 `json:"lat"`
				Lon    *float64 `json:"lon"`
			} `json:"bikes"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/free_bike_status.json", "free bike status", &bikesResp); err != nil {
		return nil, nil, err
	}

	available := make(map[string]int, len(statusResp.Data.Stations))
	for _, s := range statusResp.Data.Stations {
		available[s.StationID] = s.NumBikesAvailable
	}

	stations := make([]models.Station, 0, len(infoResp.Data.Stations))
	for _, s := range infoResp.Data.Stations {
		name := s.Name
		if name == "" {
			name = "Unnamed"
		}
		stations = append(stations, models.Station{
			ID:    s.StationID,
			Name:  name,
			Lat:   s.Lat,
			Lon:   s.Lon,
			Bikes: available[s.StationID],
		})
	}

	bikes := make([]models.FreeBike, 0, len(bikesResp.Data.Bikes))
	for _, b := range bikesResp.Data.Bikes {
		bikes = append(bikes, models.FreeBike{
			ID:  b.BikeID,
			Lat: b.Lat,
			Lon: b.Lon,
		})
	}

	log.Debug().
		Int("stations", len(stations)).
		Int("free_bikes", len(bikes)).
		Msg("Fetched GBFS feeds")

	return bikes, stations, nil
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
