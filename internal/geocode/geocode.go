// Package geocode resolves addresses to coordinates and back through a
// Nominatim-compatible API.
package geocode

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

	"github.com/sony/gobreaker/v2"

	"fieldbasket/internal/errs"
	"fieldbasket/internal/geo"
)

const (
	userAgent = "fieldbasket/1.0"
	// cells of about 38m x 19m share a reverse lookup
	reversePrecision = 8
)

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]

	mu      sync.RWMutex
	reverse map[string]string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cb:      CreateCircuitBreaker("geocoder", 30*time.Second),
		reverse: map[string]string{},
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Search returns the coordinates of the best match for address.
func (c *Client) Search(ctx context.Context, address string) (geo.Point, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", address)

	var places []place
	if err := c.get(ctx, "/search", q, &places); err != nil {
		return geo.Point{}, err
	}
	if len(places) == 0 {
		return geo.Point{}, errs.ErrAddressNotFound
	}
	lat, err1 := strconv.ParseFloat(places[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(places[0].Lon, 64)
	p := geo.Point{Lat: lat, Lng: lng}
	if err1 != nil || err2 != nil || !p.Valid() {
		return geo.Point{}, fmt.Errorf("%w: bad coordinates %q,%q", errs.ErrGeocoder, places[0].Lat, places[0].Lon)
	}
	return p, nil
}

// Reverse returns a display address for p. Results are cached per geohash
// cell.
func (c *Client) Reverse(ctx context.Context, p geo.Point) (string, error) {
	if !p.Valid() {
		return "", errs.ErrInvalidLocation
	}
	cell := geo.Geohash(p, reversePrecision)
	c.mu.RLock()
	addr, ok := c.reverse[cell]
	c.mu.RUnlock()
	if ok {
		return addr, nil
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', -1, 64))

	var res place
	if err := c.get(ctx, "/reverse", q, &res); err != nil {
		return "", err
	}
	if res.Error != "" || strings.TrimSpace(res.DisplayName) == "" {
		return "", errs.ErrNoAddress
	}

	c.mu.Lock()
	c.reverse[cell] = res.DisplayName
	c.mu.Unlock()
	return res.DisplayName, nil
}

// get runs one request through the breaker. Only transport failures and
// non-2xx answers count against it.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		b, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return nil, fmt.Errorf("geocoder %s: status %d", path, res.StatusCode)
		}
		return b, nil
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", errs.ErrGeocoderOffline, err)
	case errors.Is(err, context.Canceled):
		return err
	case err != nil:
		return fmt.Errorf("%w: %v", errs.ErrGeocoder, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", errs.ErrGeocoder, path, err)
	}
	return nil
}
