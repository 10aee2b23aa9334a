package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lacarta/pkg/logger"
	"lacarta/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin
// Витрина публичная; все мутации спрятаны за JWT и ролью admin
func SetupRoutes(catalogHandler *CatalogHandler, promotionHandler *PromotionHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичная витрина - без аутентификации
	router.GET("/menu", catalogHandler.GetMenu)
	router.GET("/menu/:id", catalogHandler.GetProduct)
	router.GET("/promotions/current", promotionHandler.GetCurrentPromotions)

	// Управление каталогом - только для администраторов
	products := router.Group("/products")
	products.Use(authMiddleware.Authenticate())
	products.Use(authMiddleware.RequireRole("admin"))
	{
		products.GET("", catalogHandler.GetProducts)
		products.POST("", catalogHandler.CreateProduct)
		products.PUT("/:id", catalogHandler.UpdateProduct)
		products.DELETE("/:id", catalogHandler.DeleteProduct)
		products.PATCH("/:id/status", catalogHandler.SetProductStatus)
	}

	// Словари - для авторизованных пользователей (автодополнение в админке)
	vocabulary := router.Group("")
	vocabulary.Use(authMiddleware.Authenticate())
	{
		vocabulary.GET("/ingredients", catalogHandler.GetIngredients)
		vocabulary.GET("/categories", catalogHandler.GetCategories)
	}

	// Управление акциями - только для администраторов
	promotions := router.Group("/promotions")
	promotions.Use(authMiddleware.Authenticate())
	promotions.Use(authMiddleware.RequireRole("admin"))
	{
		promotions.GET("", promotionHandler.GetPromotions)
		promotions.GET("/:id", promotionHandler.GetPromotion)
		promotions.POST("", promotionHandler.CreatePromotion)
		promotions.PUT("/:id", promotionHandler.UpdatePromotion)
		promotions.DELETE("/:id", promotionHandler.DeletePromotion)
	}

	return router
}
