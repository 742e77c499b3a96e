// Package api serves the vault view over HTTP.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/vault-browser/internal/api/handlers"
	"github.com/rovshanmuradov/vault-browser/internal/icon"
	"github.com/rovshanmuradov/vault-browser/internal/vault"
)

// Options wires the router's collaborators.
type Options struct {
	Catalog     *vault.Catalog
	Refresher   handlers.Refresher
	Resolver    *icon.Resolver
	CORSOrigins []string
	Logger      *zap.Logger
}

func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(opts.Logger.Named("http")))
	router.Use(metricsMiddleware())

	config := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 || (len(opts.CORSOrigins) == 1 && opts.CORSOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.CORSOrigins
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(config))

	vaultHandler := handlers.NewVaultHandler(opts.Catalog, opts.Refresher, opts.Resolver, opts.Logger)

	api := router.Group("/api")
	{
		vaults := api.Group("/vaults")
		{
			vaults.GET("", vaultHandler.ListVaults)
			vaults.GET("/:id", vaultHandler.GetVault)
		}
		api.GET("/chains", vaultHandler.ListChains)
		api.GET("/categories", vaultHandler.ListCategories)
		api.POST("/refresh", vaultHandler.Refresh)
	}

	router.GET("/health", func(c *gin.Context) {
		snap := opts.Catalog.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"vaults":     len(snap.Vaults),
			"fetched_at": snap.FetchedAt,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
