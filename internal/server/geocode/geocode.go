// Package geocode turns coordinates into a human place name. Lookups are
// best-effort: every failure is reported as "no name".
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/logging"
)

// Geocoder resolves a place name for a coordinate pair.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, bool)
}

// Nop never resolves anything.
type Nop struct{}

func (Nop) Reverse(context.Context, float64, float64) (string, bool) { return "", false }

// Nominatim queries an OpenStreetMap Nominatim /reverse endpoint.
type Nominatim struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	log       logging.Logger
}

func NewNominatim(baseURL, userAgent string, timeout time.Duration, log logging.Logger) *Nominatim {
	return &Nominatim{
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
		client:    &http.Client{},
		log:       log,
	}
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	Hamlet  string `json:"hamlet"`
	Suburb  string `json:"suburb"`
	County  string `json:"county"`
}

type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, bool) {
	name, err := n.lookup(ctx, lat, lon)
	if err != nil {
		n.log.Warn(ctx, "reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		return "", false
	}
	return name, name != ""
}

func (n *Nominatim) lookup(ctx context.Context, lat, lon float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("zoom", "14")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Error != "" {
		return "", fmt.Errorf("nominatim: %s", body.Error)
	}
	return body.placeName(), nil
}

// placeName prefers the settlement over the full display name.
func (r nominatimResponse) placeName() string {
	a := r.Address
	for _, s := range []string{a.City, a.Town, a.Village, a.Hamlet, a.Suburb, a.County} {
		if s != "" {
			return s
		}
	}
	return r.DisplayName
}
