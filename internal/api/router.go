// Package api wires the HTTP handlers into a gin router.
package api

import (
	"net/http"
	"os"
	"strings"

	"pv-sizing/internal/api/handlers"
	"pv-sizing/internal/api/middleware"
	"pv-sizing/internal/data"
	"pv-sizing/internal/log"
	"pv-sizing/internal/store"

	"github.com/gin-gonic/gin"
)

// Options configures the router. Store and PVGIS may be nil.
type Options struct {
	Store       *store.Store
	PVGIS       *data.PVGISClient
	DataDir     string
	PanelDir    string
	StaticDir   string
	CORSOrigins []string
}

// NewRouter builds the API router with its middleware and routes.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.CORS(opts.CORSOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	projectionHandler := handlers.NewProjectionHandler(opts.Store, opts.PVGIS, opts.DataDir, opts.PanelDir)
	batteryHandler := handlers.NewBatteryHandler()
	panelHandler := handlers.NewPanelHandler(opts.PanelDir)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"store":  opts.Store != nil,
			"pvgis":  opts.PVGIS != nil,
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/projections", projectionHandler.CreateProjection)
		api.GET("/projections", projectionHandler.ListProjections)
		api.POST("/projections/compare", projectionHandler.CompareProjections)
		api.POST("/projections/sweep", projectionHandler.SweepProjections)
		api.GET("/projections/:id", projectionHandler.GetProjection)
		api.DELETE("/projections/:id", projectionHandler.DeleteProjection)
		api.GET("/projections/:id/cashflow", projectionHandler.GetCashflow)
		api.GET("/projections/:id/chart", projectionHandler.GetChart)

		api.POST("/battery/sizing", batteryHandler.SizeBattery)
		api.GET("/panels", panelHandler.ListPanels)
	}

	serveStatic(router, opts.StaticDir)
	return router
}

// serveStatic serves a built single-page app, falling back to index.html
// for non-API paths.
func serveStatic(router *gin.Engine, staticDir string) {
	if staticDir == "" {
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		log.Infof("Static directory %s not found, skipping static file serving", staticDir)
		return
	}
	router.Static("/assets", staticDir+"/assets")
	router.StaticFile("/favicon.ico", staticDir+"/favicon.ico")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.File(staticDir + "/index.html")
	})
	log.Infof("Serving static files from %s", staticDir)
}
