package config

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/api"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/config"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/apikey"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/billing"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/cities"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/database"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/deliveryslips"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/events"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/middleware"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/parcels"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/scheduler"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/sms"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/stock"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/tracking"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/users"
	"github.com/Ouakat/SaaS-Delivery-sub001/pkg/builder"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App represents a delivery backend server instance.
type App struct {
	config  *config.Config
	app     *fiber.App
	redis   *redis.Client
	db      *database.DB
	events  *database.DB
	builder *builder.Builder
}

type appInfrastructure struct {
	redis  *redis.Client
	db     *database.DB
	events *database.DB
}

type appServices struct {
	retry  *scheduler.SmsRetry
	events *events.Service
}

// NewApp creates a new App instance with the given configuration.
// The cfg parameter is required and must not be nil.
// For full middleware control, use NewAppWithBuilder.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() or the builder to create config")
	}

	return &App{config: cfg}
}

// NewAppWithBuilder creates a new App instance from a configuration builder.
func NewAppWithBuilder(b *builder.Builder) *App {
	return &App{
		config:  b.Build(),
		builder: b,
	}
}

// Run starts the server and blocks until shutdown.
func (a *App) Run() error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(a.config)

	port := a.config.Server.Port
	if port == "" {
		port = "8080"
	}
	listenAddr := ":" + port

	a.app = createFiberApp(a.config)

	// === Infrastructure Setup ===
	infra, err := initializeInfrastructure(a.config)
	if err != nil {
		return err
	}
	a.redis = infra.redis
	a.db = infra.db
	a.events = infra.events

	if a.redis != nil {
		defer func() {
			if err := a.redis.Close(); err != nil {
				fiberlog.Errorf("Failed to close Redis client: %v", err)
			}
		}()
	}
	if a.db != nil {
		defer func() {
			if err := a.db.Close(); err != nil {
				fiberlog.Errorf("Failed to close database connection: %v", err)
			}
		}()
	}
	if a.events != nil {
		defer func() {
			if err := a.events.Close(); err != nil {
				fiberlog.Errorf("Failed to close event store connection: %v", err)
			}
		}()
	}

	// === Middleware Setup ===
	setupMiddleware(a.app, a.config, a)

	// === Routes Setup ===
	services, err := setupRoutes(a.app, a.config, a.redis, a.db, a.events)
	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}
	defer services.events.Close()

	a.app.Get("/", welcomeHandler())

	fmt.Printf("Delivery backend starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", a.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())
	fmt.Printf("   GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if services.retry != nil {
		go services.retry.Start(ctx)
		defer services.retry.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := a.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fiberlog.Info("Context cancelled, starting shutdown...")
	}

	fiberlog.Info("Server shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	shutdownErrChan := make(chan error, 1)
	go func() {
		shutdownErrChan <- a.app.ShutdownWithTimeout(30 * time.Second)
	}()

	select {
	case err := <-shutdownErrChan:
		if err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		fiberlog.Info("Server shutdown completed successfully")
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timeout exceeded")
	}

	return nil
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:              "Delivery Backend v1.0",
		EnablePrintRoutes:    !isProd,
		ReadTimeout:          2 * time.Minute,
		WriteTimeout:         2 * time.Minute,
		IdleTimeout:          5 * time.Minute,
		ReadBufferSize:       8192,
		WriteBufferSize:      8192,
		CompressedFileSuffix: ".gz",
		Prefork:              false,
		CaseSensitive:        true,
		StrictRouting:        false,
		Network:              "tcp",
		ServerHeader:         "DeliveryBackend",
	})
}

func setupMiddleware(app *fiber.App, cfg *config.Config, a *App) {
	isProd := cfg.IsProduction()
	allowedOrigins := cfg.Server.AllowedOrigins

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	// Rate limiter (builder override, otherwise defaults)
	if a.builder != nil && a.builder.GetRateLimitConfig() != nil {
		rlCfg := a.builder.GetRateLimitConfig()
		keyFunc := rlCfg.KeyFunc
		if keyFunc == nil {
			keyFunc = defaultRateLimitKey
		}
		app.Use(limiter.New(limiter.Config{
			Max:               rlCfg.Max,
			Expiration:        rlCfg.Expiration,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      keyFunc,
			LimitReached: func(c *fiber.Ctx) error {
				return fmt.Errorf("%d requests per %v", rlCfg.Max, rlCfg.Expiration)
			},
		}))
	} else {
		app.Use(limiter.New(limiter.Config{
			Max:               1000,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      defaultRateLimitKey,
			LimitReached: func(c *fiber.Ctx) error {
				return fmt.Errorf("1000 requests per minute")
			},
		}))
	}

	// Request timeout middleware (builder override, otherwise defaults)
	if a.builder != nil && a.builder.GetTimeoutConfig() != nil {
		timeoutDuration := a.builder.GetTimeoutConfig().Timeout
		app.Use(func(c *fiber.Ctx) error {
			handler := func(c *fiber.Ctx) error {
				return c.Next()
			}
			return timeout.NewWithContext(handler, timeoutDuration)(c)
		})
	} else {
		app.Use(func(c *fiber.Ctx) error {
			const (
				defaultTimeout = 30 * time.Second
				maxTimeout     = 2 * time.Minute
			)

			timeout := defaultTimeout
			if customTimeout := c.Get("X-Request-Timeout"); customTimeout != "" {
				if d, err := time.ParseDuration(customTimeout); err == nil && d > 0 {
					timeout = min(d, maxTimeout)
				}
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()
			c.SetUserContext(ctx)

			return c.Next()
		})
	}

	// Compression
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Logging
	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	// CORS
	allAllowedHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization", "User-Agent",
		cfg.Auth.APIKeys.HeaderName, "X-Request-Timeout", "Svix-Id",
		"Svix-Timestamp", "Svix-Signature", "Stripe-Signature",
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowHeaders:     strings.Join(allAllowedHeaders, ", "),
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Request-ID",
	}))

	// Custom middlewares from builder
	if a.builder != nil {
		for _, middleware := range a.builder.GetMiddlewares() {
			app.Use(middleware)
		}
	}

	// Profiler (dev only)
	if !isProd {
		app.Use(pprof.New())
	}
}

func defaultRateLimitKey(c *fiber.Ctx) string {
	if apiKey, ok := c.Locals("api_key_raw").(string); ok && apiKey != "" {
		return apiKey
	}
	return c.IP()
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	case "panic":
		fiberlog.SetLevel(fiberlog.LevelPanic)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}

	fiberlog.Infof("Log level set to: %s", logLevel)
}

func initializeInfrastructure(cfg *config.Config) (*appInfrastructure, error) {
	redisClient, err := createRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("redis initialization failed: %w", err)
	}

	db, err := database.New(*cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}
	if err := db.AutoMigrate(); err != nil {
		return nil, err
	}
	fiberlog.Infof("Database connected (%s)", db.DriverName())

	eventsDB, err := createEventStore(cfg)
	if err != nil {
		return nil, err
	}

	return &appInfrastructure{
		redis:  redisClient,
		db:     db,
		events: eventsDB,
	}, nil
}

// createEventStore opens the analytical ClickHouse connection. The event
// store is optional; without it parcel history degrades to "not available"
// rather than failing requests.
func createEventStore(cfg *config.Config) (*database.DB, error) {
	if cfg.EventStore == nil || !cfg.EventStore.Enabled {
		fiberlog.Info("Event store not configured - parcel history disabled")
		return nil, nil
	}

	eventsDB, err := database.New(models.DatabaseConfig{
		Type:     models.ClickHouse,
		DSN:      cfg.EventStore.DSN,
		Host:     cfg.EventStore.Host,
		Port:     cfg.EventStore.Port,
		Database: cfg.EventStore.Database,
		Username: cfg.EventStore.Username,
		Password: cfg.EventStore.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("event store initialization failed: %w", err)
	}

	if err := database.RunClickHouseMigrations(eventsDB.DB); err != nil {
		return nil, fmt.Errorf("event store migration failed: %w", err)
	}

	return eventsDB, nil
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisURL := cfg.Redis.URL
	if redisURL == "" {
		fiberlog.Info("Redis not configured - snapshot cache and SMS circuit breaker disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 50
	opt.MinIdleConns = 10
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ConnMaxLifetime = 30 * time.Minute
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3
	opt.MinRetryBackoff = 8 * time.Millisecond
	opt.MaxRetryBackoff = 512 * time.Millisecond

	fiberlog.Debugf("Redis client configuration: PoolSize=%d, MinIdle=%d, MaxRetries=%d",
		opt.PoolSize, opt.MinIdleConns, opt.MaxRetries)

	client := redis.NewClient(opt)

	return testRedisConnectionWithRetry(client)
}

func testRedisConnectionWithRetry(client *redis.Client) (*redis.Client, error) {
	const maxAttempts = 3
	const baseDelay = 1 * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()

		if err == nil {
			fiberlog.Infof("Redis connection established successfully (attempt %d/%d)", attempt, maxAttempts)
			return client, nil
		}

		fiberlog.Warnf("Redis connection failed (attempt %d/%d): %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			delay := time.Duration(attempt) * baseDelay
			fiberlog.Infof("Retrying Redis connection in %v...", delay)
			time.Sleep(delay)
		}
	}

	if err := client.Close(); err != nil {
		fiberlog.Errorf("Failed to close Redis client after connection failures: %v", err)
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", maxAttempts)
}

func setupRoutes(app *fiber.App, cfg *config.Config, redisClient *redis.Client, db *database.DB, eventsDB *database.DB) (*appServices, error) {
	// === Services ===
	snapshotTTL := 60 * time.Second
	if cfg.Auth.Guard.SnapshotTTLSec > 0 {
		snapshotTTL = time.Duration(cfg.Auth.Guard.SnapshotTTLSec) * time.Second
	}
	snapshots := auth.NewSnapshotService(db.DB, redisClient, snapshotTTL)

	userSvc := users.NewService(db.DB, snapshots)
	citySvc := cities.NewService(db.DB)

	var eventsGorm *gorm.DB
	if eventsDB != nil {
		eventsGorm = eventsDB.DB
	}
	var eventSvc *events.Service
	if cfg.EventStore != nil && cfg.EventStore.BatchSize > 1 {
		flushEach := time.Duration(cfg.EventStore.FlushInterval) * time.Second
		eventSvc = events.NewBatchingService(eventsGorm, cfg.EventStore.BatchSize, flushEach)
	} else {
		eventSvc = events.NewService(eventsGorm)
	}

	var gateway sms.Gateway
	if cfg.Sms.Enabled {
		gateway = sms.NewHTTPGateway(&cfg.Sms, redisClient)
	}
	smsSvc := sms.NewService(db.DB, gateway, cfg.Sms.Sender)

	stockSvc := stock.NewService(db.DB)
	parcelSvc := parcels.NewService(db.DB, citySvc, eventSvc, smsSvc, stockSvc)
	slipSvc := deliveryslips.NewService(db.DB, parcelSvc)
	trackSvc := tracking.NewService(parcelSvc, &cfg.Tracking)
	apiKeySvc := apikey.NewService(db.DB)
	billingSvc := billing.NewStripeService(cfg.Billing, db.DB, userSvc)

	retry := scheduler.NewSmsRetry(smsSvc, 0)

	// === Authentication ===
	verifier := auth.NewClerkAuthProvider(cfg.Auth.Clerk.SecretKey)
	authMw := middleware.NewAuthMiddleware(verifier, apiKeySvc, &middleware.AuthMiddlewareConfig{
		Enabled:     true,
		HeaderNames: []string{"Authorization"},
		SkipPaths: []string{
			"/health",
			"/webhooks",
			"/api/v1/tracking",
		},
		EnableAPIKeys: cfg.Auth.APIKeys.Enabled,
		APIKeyHeader:  cfg.Auth.APIKeys.HeaderName,
	})

	// === Route guard ===
	guard := middleware.NewGuard(snapshots,
		access.NewMemoizedEvaluator(access.NewEvaluator(guardPaths(cfg.Auth.Guard))),
		exemptRoutes(cfg.Auth.Guard))

	full := access.RequireLevel(access.AccessLevelFull)
	limited := access.RequireLevel(access.AccessLevelLimited)
	profileOnly := access.RequireLevel(access.AccessLevelProfileOnly)
	fullLevel := access.AccessLevelFull
	backOffice := access.Requirement{
		AccessLevel: &fullLevel,
		UserTypes:   []access.UserType{access.UserTypeAdmin, access.UserTypeManager},
	}
	validated := access.Requirement{
		AccessLevel:       &fullLevel,
		RequireValidation: true,
	}

	// === Handlers ===
	healthHandler := api.NewHealthHandler(db.DB, redisClient)
	userHandler := api.NewUserHandler(userSvc)
	parcelHandler := api.NewParcelHandler(parcelSvc, eventSvc)
	slipHandler := api.NewDeliverySlipHandler(slipSvc)
	cityHandler := api.NewCityHandler(citySvc)
	stockHandler := api.NewStockHandler(stockSvc)
	smsHandler := api.NewSmsHandler(smsSvc)
	trackingHandler := api.NewTrackingHandler(trackSvc, parcelSvc)
	apiKeyHandler := api.NewAPIKeyHandler(apiKeySvc)
	clerkHandler := api.NewClerkWebhookHandler(cfg.Auth.Clerk.WebhookSecret, userSvc)
	stripeHandler := api.NewStripeHandler(billingSvc)

	// === Public surface ===
	app.Get("/health", healthHandler.HealthCheck)
	app.Post("/webhooks/clerk", clerkHandler.HandleWebhook)
	app.Post("/webhooks/stripe", stripeHandler.HandleWebhook)

	v1 := app.Group("/api/v1", authMw.Authenticate())

	// Public parcel tracking; the token itself is the credential.
	v1.Get("/tracking/:token", trackingHandler.Track)

	// Users and account lifecycle
	usersGrp := v1.Group("/users")
	usersGrp.Get("/me", guard.Require(profileOnly), userHandler.Me)
	usersGrp.Post("/me/complete-profile", guard.Require(profileOnly), userHandler.CompleteProfile)
	usersGrp.Post("/", guard.Require(backOffice), userHandler.CreateUser)
	usersGrp.Get("/", guard.Require(backOffice), userHandler.ListUsers)
	usersGrp.Get("/:id", guard.Require(backOffice), userHandler.GetUser)
	usersGrp.Put("/:id", guard.Require(backOffice), userHandler.UpdateUser)
	usersGrp.Put("/:id/status", guard.Require(backOffice), userHandler.ChangeAccountStatus)
	usersGrp.Put("/:id/validation", guard.Require(backOffice), userHandler.ReviewValidation)
	usersGrp.Put("/:id/grants", guard.Require(backOffice), userHandler.UpdateGrants)

	// Parcels
	parcelsGrp := v1.Group("/parcels", guard.Require(full))
	parcelsGrp.Post("/", guard.Require(validated), parcelHandler.CreateParcel)
	parcelsGrp.Get("/", parcelHandler.ListParcels)
	parcelsGrp.Post("/bulk-status", parcelHandler.BulkChangeStatus)
	parcelsGrp.Get("/stats", parcelHandler.Stats)
	parcelsGrp.Get("/:id", parcelHandler.GetParcel)
	parcelsGrp.Put("/:id", parcelHandler.UpdateParcel)
	parcelsGrp.Put("/:id/status", parcelHandler.ChangeStatus)
	parcelsGrp.Get("/:id/history", parcelHandler.History)
	parcelsGrp.Post("/:id/tracking-token", trackingHandler.IssueToken)

	// Delivery slips
	slipsGrp := v1.Group("/delivery-slips", guard.Require(full))
	slipsGrp.Post("/", slipHandler.CreateSlip)
	slipsGrp.Get("/", slipHandler.ListSlips)
	slipsGrp.Get("/:id", slipHandler.GetSlip)
	slipsGrp.Post("/:id/scan", slipHandler.ScanParcel)
	slipsGrp.Delete("/:id/parcels/:parcelId", slipHandler.RemoveParcel)
	slipsGrp.Put("/:id/status", slipHandler.ChangeStatus)
	slipsGrp.Get("/:id/export", slipHandler.ExportCSV)

	// Cities and tariffs. Reads are available to any active account,
	// mutations stay with the back office.
	citiesGrp := v1.Group("/cities", guard.Require(limited))
	citiesGrp.Get("/", cityHandler.ListCities)
	citiesGrp.Post("/", guard.Require(backOffice), cityHandler.CreateCity)
	citiesGrp.Get("/:id", cityHandler.GetCity)
	citiesGrp.Put("/:id", guard.Require(backOffice), cityHandler.UpdateCity)
	citiesGrp.Get("/:id/quote", cityHandler.Quote)

	// Warehouse stock
	stockGrp := v1.Group("/stock", guard.Require(full))
	stockGrp.Post("/products", stockHandler.CreateProduct)
	stockGrp.Get("/products", stockHandler.ListProducts)
	stockGrp.Get("/products/:id", stockHandler.GetProduct)
	stockGrp.Put("/products/:id", stockHandler.UpdateProduct)
	stockGrp.Post("/products/:id/receive", stockHandler.Receive)
	stockGrp.Post("/products/:id/reserve", stockHandler.Reserve)
	stockGrp.Post("/products/:id/release", stockHandler.Release)
	stockGrp.Post("/products/:id/commit", stockHandler.Commit)
	stockGrp.Post("/products/:id/adjust", stockHandler.Adjust)
	stockGrp.Get("/products/:id/movements", stockHandler.ListMovements)

	// SMS settings and outbox
	smsGrp := v1.Group("/sms", guard.Require(full))
	smsGrp.Get("/settings", smsHandler.GetSettings)
	smsGrp.Put("/settings", smsHandler.UpdateSettings)
	smsGrp.Put("/templates", smsHandler.UpsertTemplate)
	smsGrp.Delete("/templates/:status", smsHandler.DeleteTemplate)
	smsGrp.Get("/messages", smsHandler.ListMessages)

	// Integration API keys
	keysGrp := v1.Group("/api-keys", guard.Require(full))
	keysGrp.Post("/", apiKeyHandler.CreateAPIKey)
	keysGrp.Get("/", apiKeyHandler.ListAPIKeys)
	keysGrp.Delete("/:id", apiKeyHandler.RevokeAPIKey)

	// Billing. Deliberately not behind the guard: a suspended seller must
	// still reach checkout to settle the subscription.
	v1.Post("/billing/checkout", stripeHandler.CreateCheckoutSession)

	return &appServices{retry: retry, events: eventSvc}, nil
}

func guardPaths(cfg models.GuardConfig) access.Paths {
	paths := access.DefaultPaths()
	if cfg.LoginPath != "" {
		paths.Login = cfg.LoginPath
	}
	if cfg.CompleteProfilePath != "" {
		paths.CompleteProfile = cfg.CompleteProfilePath
	}
	if cfg.LandingPath != "" {
		paths.Landing = cfg.LandingPath
	}
	if cfg.UnauthorizedPath != "" {
		paths.Unauthorized = cfg.UnauthorizedPath
	}
	return paths
}

// exemptRoutes defaults to the profile screens so an incomplete profile can
// always reach them.
func exemptRoutes(cfg models.GuardConfig) []string {
	if len(cfg.ExemptRoutes) > 0 {
		return cfg.ExemptRoutes
	}
	return []string{
		"/api/v1/users/me",
		"/api/v1/users/me/complete-profile",
	}
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "Delivery Backend",
			"version": "1.0",
			"status":  "running",
			"docs":    "/health",
		})
	}
}
