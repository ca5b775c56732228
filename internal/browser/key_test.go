package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldbasket/internal/browser"
	"fieldbasket/internal/domain"
)

func TestKeyString(t *testing.T) {
	k := browser.Key{Page: 2, Limit: 12, Search: "", Category: "fruits"}
	assert.Equal(t, "page=2&limit=12&search=&type=fruit", k.String())

	k = browser.Key{Page: 0, Limit: 12, Search: "  sweet lime ", Category: "vegetable"}
	assert.Equal(t, "page=1&limit=12&search=sweet+lime&type=all", k.String())
}

func TestKeyCategoryIgnoredDuringSearch(t *testing.T) {
	a := browser.Key{Page: 1, Limit: 12, Search: "tom", Category: "fruit"}
	b := browser.Key{Page: 1, Limit: 12, Search: "tom", Category: "vegetable"}
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, domain.TypeAll, a.Normalize().Category)
}

func TestCacheClear(t *testing.T) {
	c := browser.NewCache()
	k := browser.Key{Page: 1, Limit: 12}
	c.Set(k, browser.Page{Total: 3})
	c.Set(browser.Key{Page: 2, Limit: 12}, browser.Page{Total: 3})

	p, ok := c.Get(browser.Key{Page: 1, Limit: 12, Category: "all"})
	assert.True(t, ok)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	_, ok = c.Get(k)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}
