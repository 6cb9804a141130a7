package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/stowagehq/stowage/internal/auth"
	"github.com/stowagehq/stowage/internal/handlers"
	"github.com/stowagehq/stowage/internal/middleware"
	"github.com/stowagehq/stowage/internal/realtime"
	"github.com/stowagehq/stowage/internal/services"
)

// Services bundles the constructed service layer for route registration.
type Services struct {
	Storages *services.StorageService
	Folders  *services.FolderService
	Products *services.ProductService
	Stats    *services.StatsService
	Settings *services.SettingsService
	Exchange *services.ExchangeService
}

// NewServices wires the service layer against the given database handle. The
// notifier may be nil when no change feed is wanted (tests).
func NewServices(db *gorm.DB, notifier services.ChangeNotifier) (*Services, error) {
	storages, err := services.NewStorageService(db, notifier)
	if err != nil {
		return nil, err
	}
	folders, err := services.NewFolderService(db, notifier)
	if err != nil {
		return nil, err
	}
	products, err := services.NewProductService(db, notifier)
	if err != nil {
		return nil, err
	}
	stats, err := services.NewStatsService(db)
	if err != nil {
		return nil, err
	}
	settings, err := services.NewSettingsService(db)
	if err != nil {
		return nil, err
	}
	exchange, err := services.NewExchangeService(db, notifier)
	if err != nil {
		return nil, err
	}

	return &Services{
		Storages: storages,
		Folders:  folders,
		Products: products,
		Stats:    stats,
		Settings: settings,
		Exchange: exchange,
	}, nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, svcs *Services, tokens *auth.TokenService, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if svcs == nil {
		return nil, fmt.Errorf("services must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	securityHandler := handlers.NewSecurityHandler(svcs.Settings, tokens)

	// Public unlock routes
	r.GET("/api/lock", securityHandler.Status)
	r.POST("/api/unlock", securityHandler.Unlock)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.AccessLock(tokens, svcs.Settings))

	registerStorageRoutes(api, handlers.NewStorageHandler(svcs.Storages, svcs.Folders))
	registerFolderRoutes(api, handlers.NewFolderHandler(svcs.Folders))
	registerProductRoutes(api, handlers.NewProductHandler(svcs.Products))
	registerExchangeRoutes(api, handlers.NewExchangeHandler(svcs.Exchange))
	registerSettingsRoutes(api, handlers.NewSettingsHandler(svcs.Settings), securityHandler)

	api.GET("/stats", handlers.NewStatsHandler(svcs.Stats).Overview)

	if hub != nil {
		api.GET("/events", handlers.Events(hub))
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
