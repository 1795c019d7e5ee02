//	@title			SocialHub Platform API
//	@version		1.0
//	@description	Multi-account social media publishing hub

//	@contact.name	API Support
//	@contact.url	https://github.com/go-socialhub/socialhub

//	@license.name	MIT
//	@license.url	https://github.com/go-socialhub/socialhub/blob/main/LICENSE

//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-socialhub/socialhub/internal/adapters"
	"github.com/go-socialhub/socialhub/internal/cache"
	"github.com/go-socialhub/socialhub/internal/client"
	"github.com/go-socialhub/socialhub/internal/config"
	"github.com/go-socialhub/socialhub/internal/core"
	"github.com/go-socialhub/socialhub/internal/handlers"
	"github.com/go-socialhub/socialhub/internal/metrics"
	"github.com/go-socialhub/socialhub/internal/middleware"
	"github.com/go-socialhub/socialhub/internal/oauth"
	"github.com/go-socialhub/socialhub/internal/platform"
	"github.com/go-socialhub/socialhub/internal/services"
	"github.com/go-socialhub/socialhub/internal/store"
	"github.com/go-socialhub/socialhub/internal/util"
	"github.com/go-socialhub/socialhub/internal/version"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "server":
		runServer()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Multi-account social media publishing hub")
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the publishing hub server")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	// Load configuration
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize metrics
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}

	// OAuth state cache: redis when configured, otherwise in-memory
	// (single instance only).
	stateCache := newStateCache(cfg)
	states := oauth.NewStateStore(stateCache)

	// Shared HTTP client for all outbound provider calls
	providerClient := client.CreateProviderClient(
		cfg.ProviderTimeout,
		cfg.ProviderInsecureSkipVerify,
	)

	// Platform adapters, one per enabled platform
	enabled, appTokenCache := buildAdapters(cfg, providerClient)
	registry := adapters.NewRegistry(enabled...)
	logEnabledPlatforms(registry)

	// Initialize services
	accountService := services.NewAccountService(db, states, registry, recorder, cfg.TokenRefreshSkew)
	publishService := services.NewPublishService(db, accountService, registry, recorder)
	configService := services.NewConfigService(db)

	// Initialize handlers
	oauthHandler := handlers.NewOAuthHandler(accountService, cfg.SettingsRedirectPath)
	accountHandler := handlers.NewAccountHandler(accountService)
	publishHandler := handlers.NewPublishHandler(publishService)
	configHandler := handlers.NewConfigHandler(configService)
	platformHandler := handlers.NewPlatformHandler(registry)

	// Setup Gin
	setupGinMode(cfg)
	r := gin.New()
	// Setup Prometheus metrics middleware (must be before other routes)
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db, stateCache))

	// Prometheus metrics endpoint (with optional authentication)
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Swagger documentation (development only)
	if !cfg.Production {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Println("Swagger UI enabled at: http://localhost:8080/swagger/index.html")
	}

	apiLimiter, publishLimiter := setupRateLimiting(cfg)

	// OAuth connect flow (browser-facing)
	auth := r.Group("/auth")
	if apiLimiter != nil {
		auth.Use(apiLimiter)
	}
	{
		auth.GET("/:platform/connect", oauthHandler.ConnectWithPlatform)
		auth.GET("/:platform/callback", oauthHandler.Callback)
	}

	// JSON API
	api := r.Group("/api")
	if apiLimiter != nil {
		api.Use(apiLimiter)
	}
	{
		api.GET("/platforms", platformHandler.List)

		api.GET("/accounts", accountHandler.List)
		api.POST("/accounts/:id/disconnect", accountHandler.Disconnect)
		api.POST("/accounts/:id/refresh", accountHandler.Refresh)

		if publishLimiter != nil {
			api.POST("/publish", publishLimiter, publishHandler.Publish)
		} else {
			api.POST("/publish", publishHandler.Publish)
		}
		api.GET("/content/:id/publications", publishHandler.History)

		api.GET("/configs", configHandler.List)
		api.POST("/configs", configHandler.Create)
		api.GET("/configs/:id", configHandler.Get)
		api.PUT("/configs/:id", configHandler.Update)
		api.DELETE("/configs/:id", configHandler.Delete)
	}

	log.Printf("SocialHub server starting on %s", cfg.ServerAddr)
	log.Printf("OAuth callback base: %s", cfg.BaseURL)

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Create graceful manager
	m := graceful.NewManager()

	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})

	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})

	m.AddShutdownJob(func() error {
		if err := stateCache.Close(); err != nil {
			log.Printf("Error closing state cache: %v", err)
			return err
		}
		return nil
	})

	if appTokenCache != nil {
		m.AddShutdownJob(func() error {
			return appTokenCache.Close()
		})
	}

	// Periodic gauge updates from the database
	if cfg.MetricsEnabled {
		m.AddRunningJob(func(ctx context.Context) error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()

			updateGaugeMetrics(db, recorder)
			for {
				select {
				case <-ticker.C:
					updateGaugeMetrics(db, recorder)
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	// Wait for graceful shutdown
	<-m.Done()
}

// newStateCache picks the backend for the OAuth CSRF state store.
func newStateCache(cfg *config.Config) core.Cache[oauth.StateRecord] {
	if cfg.RedisAddr == "" {
		log.Println("OAuth state store: memory (single instance only)")
		return cache.NewMemoryCache[oauth.StateRecord]()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cache.NewRueidisCache[oauth.StateRecord](
		ctx,
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		"oauth:",
	)
	if err != nil {
		log.Fatalf("Failed to initialize redis state cache: %v", err)
	}
	log.Printf("OAuth state store: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return c
}

// buildAdapters constructs one adapter per enabled platform. The wechat
// adapter additionally needs a cache for its app-wide server token; the
// cache is returned so shutdown can close it.
func buildAdapters(
	cfg *config.Config,
	providerClient *http.Client,
) ([]adapters.Adapter, core.Cache[adapters.AppToken]) {
	var list []adapters.Adapter
	var appTokenCache core.Cache[adapters.AppToken]

	if cfg.WechatEnabled {
		appTokenCache = newAppTokenCache(cfg)
		source := adapters.NewAppTokenSource(
			cfg.WechatAppID,
			cfg.WechatAppSecret,
			"",
			appTokenCache,
			providerClient,
		)
		list = append(list, adapters.NewWechatAdapter(adapters.WechatConfig{
			AppID:       cfg.WechatAppID,
			AppSecret:   cfg.WechatAppSecret,
			RedirectURL: cfg.RedirectURL(platform.Wechat.String()),
		}, providerClient, source))
	}
	if cfg.WeiboEnabled {
		list = append(list, adapters.NewWeiboAdapter(adapters.WeiboConfig{
			ClientID:     cfg.WeiboClientID,
			ClientSecret: cfg.WeiboClientSecret,
			RedirectURL:  cfg.RedirectURL(platform.Weibo.String()),
		}, providerClient))
	}
	if cfg.DouyinEnabled {
		list = append(list, adapters.NewDouyinAdapter(adapters.DouyinConfig{
			ClientKey:    cfg.DouyinClientKey,
			ClientSecret: cfg.DouyinClientSecret,
			RedirectURL:  cfg.RedirectURL(platform.Douyin.String()),
		}, providerClient))
	}
	if cfg.XiaohongshuEnabled {
		list = append(list, adapters.NewXiaohongshuAdapter(adapters.XiaohongshuConfig{
			ClientID:     cfg.XiaohongshuClientID,
			ClientSecret: cfg.XiaohongshuClientSecret,
			RedirectURL:  cfg.RedirectURL(platform.Xiaohongshu.String()),
			APIBase:      cfg.XiaohongshuAPIBase,
		}, providerClient))
	}

	return list, appTokenCache
}

func newAppTokenCache(cfg *config.Config) core.Cache[adapters.AppToken] {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache[adapters.AppToken]()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cache.NewRueidisCache[adapters.AppToken](
		ctx,
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		"wechat:",
	)
	if err != nil {
		log.Fatalf("Failed to initialize redis app token cache: %v", err)
	}
	return c
}

func logEnabledPlatforms(registry *adapters.Registry) {
	platforms := registry.Platforms()
	if len(platforms) == 0 {
		log.Println("WARNING: no platforms enabled, connect and publish will be unavailable")
		return
	}
	log.Printf("Platforms enabled: %v", platforms)
}

// setupRateLimiting builds the general API limiter and the tighter publish
// limiter. Both come back nil when rate limiting is disabled.
func setupRateLimiting(cfg *config.Config) (apiLimiter, publishLimiter gin.HandlerFunc) {
	if !cfg.RateLimitEnabled {
		log.Println("Rate limiting disabled")
		return nil, nil
	}

	createLimiter := func(perMinute int, name string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: perMinute,
			CleanupInterval:   5 * time.Minute,
			StoreType:         middleware.RateLimitStoreType(cfg.RateLimitStore),
			RedisAddr:         cfg.RedisAddr,
			RedisPassword:     cfg.RedisPassword,
			RedisDB:           cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("Failed to create %s rate limiter: %v", name, err)
		}
		return limiter
	}

	log.Printf("Rate limiting enabled: %d req/min API, %d req/min publish (store=%s)",
		cfg.RateLimitPerMinute, cfg.PublishRatePerMin, cfg.RateLimitStore)
	return createLimiter(cfg.RateLimitPerMinute, "api"),
		createLimiter(cfg.PublishRatePerMin, "publish")
}

// createHealthCheckHandler creates health check endpoint handler
// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Check server, database and state cache health
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	object{status=string,database=string,cache=string}	"Service is healthy"
//	@Failure		503	{object}	object{status=string,database=string,cache=string}	"Service is unhealthy"
//	@Router			/health [get]
func createHealthCheckHandler(
	db *store.Store,
	stateCache core.Cache[oauth.StateRecord],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbState := "connected"
		if err := db.Health(); err != nil {
			dbState = "disconnected"
		}
		cacheState := "connected"
		if err := stateCache.Health(c.Request.Context()); err != nil {
			cacheState = "disconnected"
		}

		if dbState == "connected" && cacheState == "connected" {
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": dbState,
				"cache":    cacheState,
			})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": dbState,
			"cache":    cacheState,
		})
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
		log.Printf("Gin mode: Release (production)")
		return
	}
	gin.SetMode(gin.DebugMode)
	log.Printf("Gin mode: Debug (development)")
}

func updateGaugeMetrics(db core.MetricsStore, recorder core.Recorder) {
	counts, err := db.CountConnectedAccountsByPlatform()
	if err != nil {
		recorder.RecordDatabaseQueryError("count_connected_accounts")
	} else {
		for _, p := range platform.All {
			recorder.SetConnectedAccountsCount(p.String(), int(counts[p.String()]))
		}
	}

	pending, err := db.CountPendingPublications()
	if err != nil {
		recorder.RecordDatabaseQueryError("count_pending_publications")
		return
	}
	recorder.SetPendingPublicationsCount(int(pending))
}
