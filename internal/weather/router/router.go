// Package router provides weather service routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kart-io/sentinel-weather/api/swagger/weather" // swagger docs
	"github.com/kart-io/sentinel-weather/internal/weather/handler"
)

// SwaggerInstance 文档实例名，与 swag init --instanceName 一致。
const SwaggerInstance = "weather"

// Register registers the weather service routes.
func Register(r *gin.Engine, h *handler.WeatherHandler) {
	logger.Info("Registering weather routes...")

	r.NoRoute(h.NotFound)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", h.Metrics)

	// Swagger UI: /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(SwaggerInstance)))

	v1 := r.Group("/v1")
	{
		weather := v1.Group("/weather")
		{
			weather.GET("/current", h.Current)
			weather.GET("/history", h.History)
			weather.GET("/forecast", h.Forecast)
		}

		advisory := v1.Group("/advisory")
		{
			advisory.POST("", h.Advise)
			advisory.POST("/prediction", h.Prediction)
			advisory.POST("/travel", h.Travel)
			advisory.POST("/probability", h.Probability)
		}

		v1.GET("/stats", h.Stats)
	}

	logger.Info("HTTP routes registered")
}
