package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dialoguecafe/handlers"
)

// RegisterConfirmationRoutes registers the booking confirmation flow.
func RegisterConfirmationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/confirmation")
	{
		api.POST("/session", hb.Confirmation.StartSession)
		api.GET("/session/:sessionID", hb.Confirmation.GetSession)
		api.PUT("/session/:sessionID/field", hb.Confirmation.UpdateField)
		api.POST("/session/:sessionID/dictate", hb.Confirmation.Dictate)
		api.POST("/session/:sessionID/dictate/stop", hb.Confirmation.StopDictation)
		api.POST("/session/:sessionID/submit", hb.Confirmation.Submit)
		api.POST("/session/:sessionID/cancel", hb.Confirmation.Cancel)
	}
}

// RegisterBookingRoutes registers the booking API the confirmation flow
// submits to.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("/create-booking", hb.Booking.CreateBooking)
		api.GET("/id/:id", hb.Booking.GetBooking)
	}
}

// RegisterAIRoutes registers the cafe assistant endpoint.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ai")
	{
		api.POST("/chat", hb.Assistant.Chat)
	}
}

// RegisterPrefsRoutes registers accessibility preference endpoints.
func RegisterPrefsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/prefs")
	{
		api.GET("/:deviceID", hb.Prefs.GetPrefs)
		api.PUT("/:deviceID", hb.Prefs.UpdatePrefs)
	}
}

// RegisterMenuRoutes registers the menu endpoint.
func RegisterMenuRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/menu", hb.Menu.ListMenu)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/healthz", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterConfirmationRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAIRoutes(r, hb)
	RegisterPrefsRoutes(r, hb)
	RegisterMenuRoutes(r, hb)
	RegisterHealthRoute(r)
}
