package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/i474232898/weather-signage/internal/api/http"
	"github.com/i474232898/weather-signage/internal/config"
	"github.com/i474232898/weather-signage/internal/display"
	"github.com/i474232898/weather-signage/internal/scheduler"
	"github.com/i474232898/weather-signage/internal/settings"
	"github.com/i474232898/weather-signage/internal/weather"
	"github.com/i474232898/weather-signage/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Settings persistence: Postgres when configured, a JSON file otherwise.
	var (
		persister settings.Persister
		health    func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer pool.Close()

		pg := settings.NewPostgresPersister(pool, "default")
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare settings table: %v", err)
		}
		persister, health = pg, pg.Health
	} else {
		persister = settings.NewFilePersister(cfg.SettingsFile)
	}

	store := settings.NewMemoryStore(persister)
	fallback := settings.Defaults()
	fallback.Locations = cfg.SeedLocations
	if err := store.Init(ctx, fallback); err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Keep the live settings in step with edits made elsewhere.
	sched := scheduler.New(store, cfg.SettingsSyncInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Providers with resilience (backoff + circuit breaker + rate limit).
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	httpCfg := providers.DefaultHTTPConfig(httpClient)
	httpCfg.RequestsPerSecond = cfg.RequestsPerSecond
	httpCfg.Burst = cfg.Burst

	service := weather.NewService(buildProviders(cfg, httpCfg))

	ctrl := display.New(service, store, nil)
	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- ctrl.Run(ctx) }()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-signage",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	app.Get("/health", func(c *fiber.Ctx) error {
		_, loaded := store.Get()
		status := "ok"
		if health != nil {
			if err := health(c.UserContext()); err != nil {
				log.Printf("ERROR: health: settings database: %v", err)
				status = "degraded"
			}
		}
		return c.JSON(fiber.Map{
			"status":         status,
			"service":        "weather-signage",
			"settingsLoaded": loaded,
			"phase":          ctrl.Snapshot().Phase,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, ctrl, store)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	if err := <-ctrlDone; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("display controller stopped: %v", err)
	}
}

// buildProviders creates the configured providers in failover order.
func buildProviders(cfg *config.AppConfig, httpCfg providers.HTTPClientConfig) []weather.Provider {
	var device *providers.Place
	if cfg.Device != nil {
		device = &providers.Place{Name: "device", Latitude: cfg.Device.Latitude, Longitude: cfg.Device.Longitude}
	}

	var geo providers.Geocoder = providers.NewOpenMeteoGeocoder(httpCfg)
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}

	var provs []weather.Provider
	for _, name := range cfg.Providers {
		switch name {
		case "weatherapi":
			if cfg.WeatherAPIKey == "" {
				log.Println("INFO: WEATHERAPI_API_KEY not set; skipping weatherapi provider")
				continue
			}
			provs = append(provs, providers.NewWeatherAPIProvider(httpCfg, cfg.WeatherAPIKey))
		case "openweather":
			if cfg.OpenWeatherAPIKey == "" {
				log.Println("INFO: OPENWEATHER_API_KEY not set; skipping openweather provider")
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherAPIKey, device))
		case "openmeteo":
			provs = append(provs, providers.NewOpenMeteoProvider(httpCfg, geo, device))
		default:
			log.Printf("ERROR: unknown provider %q ignored", name)
		}
	}
	return provs
}
