package routes

import (
	"time"

	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterBookingRoutes registers the booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(false))
		api.POST("", hb.Booking.CreateBooking)
		api.GET("/:id", hb.Booking.GetBooking)
		api.DELETE("/:id", hb.Booking.CancelBooking)
		api.PATCH("/:id/status",
			middleware.RequireRoles(models.RoleServiceProvider, models.RoleAdmin, models.RoleSuperAdmin),
			hb.Booking.UpdateBookingStatus)
		api.POST("/:id/payment-session", hb.Payment.CreatePaymentSession)
	}
}

// RegisterProviderRoutes registers the public provider endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.GET("/:id/availability", hb.Booking.GetProviderAvailability)
	}
}

// RegisterUserRoutes registers endpoints about the calling user.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.Use(middleware.JWTAuthMiddleware(false))
		api.PUT("/me/fcm-token", hb.Device.RegisterFCMToken)
	}
}

// RegisterWebhookRoutes registers unauthenticated, signature-verified callbacks.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/stripe", hb.Payment.StripeWebhook)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(false), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
		adminGroup.POST("/availability/reconcile", hb.Booking.ReconcileAvailability)
	}
}

// RegisterSocketRoute registers the notification socket.
func RegisterSocketRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Socket == nil {
		return
	}
	r.GET("/ws", middleware.JWTAuthMiddleware(true), hb.Socket.Connect)
}

// RegisterHealthRoute registers the health-check and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterSocketRoute(r, hb)
}
