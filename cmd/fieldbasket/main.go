package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	html "github.com/gofiber/template/html/v2"

	"fieldbasket/internal/config"
	"fieldbasket/internal/geocode"
	"fieldbasket/internal/http/handlers"
	applog "fieldbasket/internal/log"
	"fieldbasket/internal/repos"
	"fieldbasket/internal/services"
)

func fatal(action string, err error) {
	applog.Error(nil, action, err, nil)
	os.Exit(1)
}

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Security(nil, "logfile.open.fail", map[string]any{"path": cfg.LogFile, "error": err.Error()})
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		fatal("db.open", err)
	}
	defer db.Close()

	// Catalog backend
	var prods services.ProductStore
	switch cfg.CatalogBackend {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mdb, err := repos.ConnectToMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			cancel()
			fatal("mongo.connect", err)
		}
		mrepo := repos.NewMongoProductRepo(mdb)
		if err := mrepo.SeedIfEmpty(ctx); err != nil {
			cancel()
			fatal("mongo.seed", err)
		}
		cancel()
		defer func() { _ = mdb.Client().Disconnect(context.Background()) }()
		prods = mrepo
	default:
		prods = repos.NewProductRepo(db)
	}

	geocoder := geocode.New(cfg.GeocoderURL, cfg.GeocoderTimeout)

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	deps := handlers.NewDeps(db, cfg, prods, geocoder)
	app := handlers.NewApp(deps, handlers.AppConfig{
		Views:        engine,
		StaticDir:    "./web/static",
		RateLimit:    cfg.RateLimit,
		GeoRateLimit: cfg.GeoRateLimit,
		AccessLog:    true,
		AllowOrigins: cfg.AllowOrigins,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		applog.Info(nil, "server.shutdown", nil)
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "catalog": cfg.CatalogBackend})
	if err := app.Listen(":" + cfg.Port); err != nil {
		fatal("server.listen", err)
	}
}
