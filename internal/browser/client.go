package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fieldbasket/internal/domain"
)

// Fetcher loads one page of products.
type Fetcher interface {
	FetchProducts(ctx context.Context, key Key) (Page, error)
}

// Client fetches pages from a running Field Basket server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

func (c *Client) FetchProducts(ctx context.Context, key Key) (Page, error) {
	u := c.BaseURL + "/api/products?" + key.Values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, err
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Page{}, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Page{}, errors.New(errorText(body))
	}

	var payload domain.ProductPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return Page{}, fmt.Errorf("decode products: %w", err)
	}
	if payload.Products == nil {
		payload.Products = []domain.Product{}
	}
	return Page{Products: payload.Products, Total: payload.Total}, nil
}

// errorText surfaces the server's message as-is, preferring the "error" field
// of a JSON body.
func errorText(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "API error"
}
