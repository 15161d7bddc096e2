package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"funeral-backend/controllers"
	"funeral-backend/middleware"
)

func parseCorsOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, part := range raw {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter wires the controllers onto a gin engine.
func SetupRouter(
	log *zap.Logger,
	corsOrigins []string,
	ac *controllers.AvailabilityController,
	bc *controllers.BookingController,
) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(middleware.Logger(log), gin.Recovery())

	origins := parseCorsOrigins(corsOrigins)
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.CallerHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.CallerIdentity())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/checkAvailability", ac.CheckAvailability)

	api := r.Group("/api")
	{
		api.POST("/checkAvailability", ac.CheckAvailability)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bc.Create)
			// must stay ahead of /:id
			bookings.POST("/validate", bc.Validate)

			bookings.GET("/:id", bc.Get)
			bookings.POST("/:id/confirm", bc.Confirm)
			bookings.POST("/:id/cancel", bc.Cancel)
			bookings.PATCH("/:id/status", bc.UpdateStatus)
		}
	}

	return r
}
