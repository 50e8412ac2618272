package routes

import (
	"property-backoffice/internal/cache"
	"property-backoffice/internal/cleanup"
	"property-backoffice/internal/config"
	"property-backoffice/internal/database"
	"property-backoffice/internal/geocode"
	"property-backoffice/internal/handlers"
	"property-backoffice/internal/search"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the API is built from. Search, Cache and Geocoder are
// optional.
type Deps struct {
	DB       *database.GormDB
	Search   search.Engine
	Cache    cache.Cache
	Geocoder *geocode.Service
	Server   config.ServerConfig
	Cleanup  config.CleanupConfig
	Logging  config.LoggingConfig
}

// New builds the gin engine with every route registered
func New(deps Deps) *gin.Engine {
	if deps.Search == nil {
		deps.Search = search.Noop{}
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestID())
	if deps.Logging.LogRequests {
		r.Use(gin.Logger())
	}

	origins := deps.Server.AllowOrigins
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	r.Use(cors.New(corsConfig))

	properties := handlers.NewPropertyHandler(deps.DB, deps.Search, deps.Cache)
	if deps.Geocoder != nil && deps.Geocoder.OnUpdated == nil {
		deps.Geocoder.OnUpdated = properties.InvalidateMarkers
	}
	finance := handlers.NewFinanceHandler(deps.DB)
	ledgers := handlers.NewLedgerHandler(deps.DB)
	directory := handlers.NewDirectoryHandler(deps.DB, deps.Search)
	admin := handlers.NewAdminHandler(deps.DB, deps.Geocoder, deps.Search).
		WithCleanup(cleanup.NewService(deps.DB.DB()), deps.Cleanup)
	searchHandler := handlers.NewSearchHandler(deps.Search)
	reportHandler := handlers.NewReportHandler(deps.DB)

	r.GET("/health", handlers.Health(deps.DB))

	api := r.Group("/api")
	{
		api.GET("/properties", properties.List)
		api.POST("/properties", properties.Create)
		api.GET("/properties/:id", properties.Get)
		api.PATCH("/properties/:id", properties.Update)
		api.DELETE("/properties/:id", properties.Delete)
		api.GET("/property_markers", properties.Markers)

		api.GET("/purchase_details", finance.GetPurchase)
		api.POST("/purchase_details", finance.CreatePurchase)
		api.PATCH("/purchase_details/:id", finance.UpdatePurchase)
		api.GET("/loan_details", finance.GetLoan)
		api.POST("/loan_details", finance.CreateLoan)
		api.PATCH("/loan_details/:id", finance.UpdateLoan)

		// rentroll is the older name of the same resource
		for _, path := range []string{"/rentlog", "/rentroll"} {
			api.GET(path, ledgers.ListRentLogs)
			api.POST(path, ledgers.UpsertRentLog)
		}
		api.GET("/paymentlog", ledgers.ListPaymentLogs)
		api.POST("/paymentlog", ledgers.UpsertPaymentLog)
		api.GET("/transactions", ledgers.ListTransactions)
		api.POST("/transactions", ledgers.CreateTransaction)
		api.DELETE("/transactions/:id", ledgers.DeleteTransaction)

		api.GET("/contacts", directory.ListContacts)
		api.POST("/contacts", directory.CreateContact)
		api.GET("/contacts/:id", directory.GetContact)
		api.PATCH("/contacts/:id", directory.UpdateContact)
		api.DELETE("/contacts/:id", directory.DeleteContact)

		api.GET("/tenant", directory.ListTenants)
		api.POST("/tenant", directory.CreateTenant)
		api.GET("/tenant/:id", directory.GetTenant)
		api.PATCH("/tenant/:id", directory.UpdateTenant)
		api.DELETE("/tenant/:id", directory.DeleteTenant)

		api.GET("/search", searchHandler.Search)
		api.GET("/reports", reportHandler.Get)
	}

	adminGroup := api.Group("/admin")
	{
		adminGroup.POST("/geocode-missing", admin.GeocodeMissing)
		adminGroup.GET("/stats", admin.GetStats)
		adminGroup.GET("/delete-logs", admin.GetDeleteLogs)
		adminGroup.POST("/delete-logs/cleanup", admin.CleanupDeleteLogs)
		adminGroup.POST("/reindex", admin.Reindex)
	}

	return r
}
