// Package browser is the client side of the product catalog: it pages
// through /api/products, caches pages per query and drops stale responses.
package browser

import (
	"net/url"
	"strconv"
	"strings"

	"fieldbasket/internal/domain"
)

// Key identifies one page of one query.
type Key struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// Normalize trims the search, clamps the page and folds the category. The
// category is dropped while searching since the catalog ignores it then.
func (k Key) Normalize() Key {
	k.Search = strings.TrimSpace(k.Search)
	if k.Page < 1 {
		k.Page = 1
	}
	k.Category = domain.NormalizeType(k.Category)
	if k.Search != "" {
		k.Category = domain.TypeAll
	}
	return k
}

// String is the serialized cache key.
func (k Key) String() string {
	k = k.Normalize()
	return "page=" + strconv.Itoa(k.Page) +
		"&limit=" + strconv.Itoa(k.Limit) +
		"&search=" + url.QueryEscape(k.Search) +
		"&type=" + k.Category
}

// Values are the query parameters for /api/products.
func (k Key) Values() url.Values {
	k = k.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(k.Page))
	v.Set("limit", strconv.Itoa(k.Limit))
	if k.Search != "" {
		v.Set("search", k.Search)
	} else if k.Category != domain.TypeAll {
		v.Set("type", k.Category)
	}
	return v
}
