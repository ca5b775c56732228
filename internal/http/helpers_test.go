package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"fieldbasket/internal/config"
	"fieldbasket/internal/errs"
	"fieldbasket/internal/geo"
	"fieldbasket/internal/http/handlers"
	applog "fieldbasket/internal/log"
	"fieldbasket/internal/repos"
	"fieldbasket/internal/services"
)

var shop = geo.Point{Lat: 23.619488, Lng: 53.707794}

func testConfig() config.Config {
	return config.Config{
		DBDSN:            ":memory:",
		PageSize:         12,
		SearchDebounce:   500 * time.Millisecond,
		ShopLat:          shop.Lat,
		ShopLng:          shop.Lng,
		DeliveryCutoffKm: 15,
		FreeRadiusKm:     10,
		SurchargePerKm:   2,
		Currency:         "AED",
		WhatsAppPhone:    "+916282821603",
	}
}

type fakeGeocoder struct {
	mu     sync.Mutex
	places map[string]geo.Point
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{places: map[string]geo.Point{
		"Ring Road":   {Lat: shop.Lat + 0.1, Lng: shop.Lng},
		"Desert Camp": {Lat: shop.Lat + 0.3, Lng: shop.Lng},
	}}
}

func (g *fakeGeocoder) Search(_ context.Context, address string) (geo.Point, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.places[address]
	if !ok {
		return geo.Point{}, errs.ErrAddressNotFound
	}
	return p, nil
}

func (g *fakeGeocoder) Reverse(_ context.Context, p geo.Point) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for addr, q := range g.places {
		if q == p {
			return addr, nil
		}
	}
	return "", errs.ErrNoAddress
}

type appOpts struct {
	prods        services.ProductStore
	rateLimit    int
	geoRateLimit int
}

func newTestApp(t *testing.T, o appOpts) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if o.rateLimit == 0 {
		o.rateLimit = 1000
	}
	if o.geoRateLimit == 0 {
		o.geoRateLimit = 1000
	}
	engine := html.New("../../web/templates", ".html")
	deps := handlers.NewDeps(db, cfg, o.prods, newFakeGeocoder())
	app := handlers.NewApp(deps, handlers.AppConfig{
		Views:        engine,
		RateLimit:    o.rateLimit,
		GeoRateLimit: o.geoRateLimit,
	})
	return app, db
}

// client keeps cookies between requests and sends the CSRF header on
// unsafe methods.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	c := &client{t: t, app: app, cookies: map[string]string{}}
	res, _ := c.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, c.cookies["csrf_"], "csrf cookie missing")
	return c
}

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set("X-Csrf-Token", c.cookies["csrf_"])
	}
	res, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range res.Cookies() {
		c.cookies[ck.Name] = ck.Value
	}
	out, err := io.ReadAll(res.Body)
	require.NoError(c.t, err)
	return res, out
}

// decode unmarshals a JSON body into a generic map.
func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	ReqID  string         `json:"req_id"`
	Path   string         `json:"path"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuf) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

// captureLogs runs fn with the app logger redirected and returns the parsed
// JSON lines.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func findLog(entries []logEntry, level, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Level == level && e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
