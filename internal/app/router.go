package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/handler"
	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler        *handler.UserHandler
	WalletHandler      *handler.WalletHandler
	ReservationHandler *handler.ReservationHandler
	TripHandler        *handler.TripHandler
	ReceiptHandler     *handler.ReceiptHandler
	VehicleHandler     *handler.VehicleHandler
	RedisClient        *redis.Client
	NewRelicApp        *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", deps.UserHandler.RegisterUser)
			users.GET("", deps.UserHandler.ListUsers)
			users.GET("/:id", deps.UserHandler.GetUser)
			users.GET("/:id/wallet", deps.WalletHandler.GetBalance)
			users.POST("/:id/wallet/topup", deps.WalletHandler.TopUp)
			users.GET("/:id/wallet/transactions", deps.WalletHandler.ListTransactions)
			users.GET("/:id/reservations", deps.ReservationHandler.ListUserReservations)
			users.GET("/:id/reservations/active", deps.ReservationHandler.GetActiveReservation)
			users.GET("/:id/trips", deps.TripHandler.ListUserTrips)
			users.GET("/:id/trips/active", deps.TripHandler.GetActiveTrip)
			users.GET("/:id/receipts", deps.ReceiptHandler.ListUserReceipts)
		}

		reservations := v1.Group("/reservations")
		{
			reservations.POST("", deps.ReservationHandler.CreateReservation)
			reservations.GET("/:id", deps.ReservationHandler.GetReservation)
			reservations.POST("/:id/cancel", deps.ReservationHandler.CancelReservation)
			reservations.POST("/:id/convert", deps.ReservationHandler.ConvertReservation)
		}

		trips := v1.Group("/trips")
		{
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.GET("/:id/status", deps.TripHandler.GetTripStatus)
			trips.POST("/:id/end", deps.TripHandler.EndTrip)
			trips.POST("/:id/rating", deps.TripHandler.RateTrip)
			trips.GET("/:id/receipt", deps.ReceiptHandler.GetTripReceipt)
		}

		receipts := v1.Group("/receipts")
		{
			receipts.GET("/:id", deps.ReceiptHandler.GetReceipt)
		}

		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("/nearby", deps.VehicleHandler.FindNearby)
			vehicles.GET("/:id", deps.VehicleHandler.GetVehicle)
			vehicles.POST("/:id/telemetry", deps.VehicleHandler.UpdateTelemetry)
			vehicles.DELETE("/:id/telemetry", deps.VehicleHandler.RemoveTelemetry)
		}
	}

	return router
}
