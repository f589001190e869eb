// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/uniform-ledger/backend-go/internal/api/handlers"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/api/middleware"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/metrics"
	"github.com/andresuchdata/uniform-ledger/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	InventoryService *service.InventoryService
	Metrics          *metrics.Metrics
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	var m *metrics.Metrics
	if services != nil {
		m = services.Metrics
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(m))
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services != nil && services.InventoryService != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("/report", inventoryHandler.GetReport)
			inventoryGroup.GET("/rows", inventoryHandler.ListRows)
			inventoryGroup.GET("/sizes", inventoryHandler.ListSizes)
			inventoryGroup.GET("/education-levels", inventoryHandler.EducationLevels)
			inventoryGroup.POST("/items/:id/stock", inventoryHandler.AddStock)
			inventoryGroup.POST("/items/:id/reset-beginning", inventoryHandler.ResetBeginningInventory)
			inventoryGroup.GET("/variants/:id/periods", inventoryHandler.PeriodHistory)
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		return cfg
	}

	normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
	if allowAll {
		cfg.AllowOrigins = nil
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else if len(normalized) > 0 {
		cfg.AllowOrigins = normalized
	}
	return cfg
}

// normalizeAllowedOrigins flattens comma-separated entries; "*" allows any origin.
func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			switch trimmed {
			case "":
				continue
			case "*":
				allowAll = true
			default:
				parsed = append(parsed, trimmed)
			}
		}
	}
	return parsed, allowAll
}
