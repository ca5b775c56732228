package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	applog "fieldbasket/internal/log"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	// Catalog storage: "sqlite" (default) or "mongo"
	CatalogBackend string
	MongoURI       string
	MongoDB        string

	PageSize       int
	SearchDebounce time.Duration

	// Delivery policy
	ShopLat          float64
	ShopLng          float64
	DeliveryCutoffKm float64
	FreeRadiusKm     float64
	SurchargePerKm   float64
	Currency         string
	WhatsAppPhone    string

	GeocoderURL     string
	GeocoderTimeout time.Duration

	// HTTP surface; empty AllowOrigins leaves CORS off
	AllowOrigins string
	RateLimit    int
	GeoRateLimit int
}

func Load() Config {
	// optional; real environment variables win
	_ = godotenv.Load(".env")

	cfg := Config{
		Port:    str("PORT", "8080"),
		DBDSN:   str("DB_DSN", "fieldbasket.db"), // sqlite file in project root
		LogFile: str("LOG_FILE", ""),

		CatalogBackend: strings.ToLower(str("CATALOG_BACKEND", "sqlite")),
		MongoURI:       str("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:        str("MONGODB_DB", "fieldbasket"),

		PageSize:       int(num("PAGE_SIZE", 12)),
		SearchDebounce: dur("SEARCH_DEBOUNCE", 500*time.Millisecond),

		ShopLat:          num("SHOP_LAT", 23.619488),
		ShopLng:          num("SHOP_LNG", 53.707794),
		DeliveryCutoffKm: num("DELIVERY_CUTOFF_KM", 15),
		FreeRadiusKm:     num("FREE_RADIUS_KM", 10),
		SurchargePerKm:   num("SURCHARGE_PER_KM", 2),
		Currency:         str("CURRENCY", "AED"),
		WhatsAppPhone:    str("WHATSAPP_PHONE", "+916282821603"),

		GeocoderURL:     str("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderTimeout: dur("GEOCODER_TIMEOUT", 5*time.Second),

		AllowOrigins: str("CORS_ORIGINS", ""),
		RateLimit:    int(num("RATE_LIMIT", 60)),
		GeoRateLimit: int(num("GEO_RATE_LIMIT", 15)),
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 12
	}

	applog.Info(nil, "config.load", map[string]any{
		"port": cfg.Port, "db_dsn": cfg.DBDSN, "catalog": cfg.CatalogBackend,
		"page_size": cfg.PageSize, "cutoff_km": cfg.DeliveryCutoffKm,
		"free_radius_km": cfg.FreeRadiusKm, "surcharge_per_km": cfg.SurchargePerKm,
	})
	return cfg
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func num(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		applog.Security(nil, "config.invalid", map[string]any{"key": key, "value": v})
		return def
	}
	return f
}

func dur(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare numbers are milliseconds
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	applog.Security(nil, "config.invalid", map[string]any{"key": key, "value": v})
	return def
}
