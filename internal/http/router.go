package api

import (
	"log"
	stdhttp "net/http"

	intconfig "backend/internal/config"
	h "backend/internal/http/handlers"
	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	ledger := services.LedgerService{HoldTTL: env.HoldTTL}
	handler := h.Handler{
		Ledger: ledger,
		Payments: services.PaymentService{
			Ledger: ledger,
		},
		Buses:     repositories.BusRepository{},
		Agents:    repositories.AgentRepository{},
		JWTSecret: []byte(env.JWTSecret),
	}

	api := r.Group("/api")
	api.Use(middleware.AgentAuth([]byte(env.JWTSecret)))
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/agent-login", handler.AgentLogin)

		// Buses & seat maps
		buses := api.Group("/buses")
		buses.GET("", handler.GetBuses)
		buses.GET("/:id/seats", handler.GetBusSeatMap)
		buses.GET("/:id/occupied", handler.GetOccupiedSeats)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("/hold", handler.CreateHold)
		bookings.GET("/:id", handler.GetBooking)
		bookings.POST("/:id/confirm-payment", handler.ConfirmBookingPayment)
		bookings.POST("/:id/cancel", handler.CancelBooking)

		// Payment gateway callback
		payments := api.Group("/payments")
		payments.POST("/notify", handler.NotifyPayment)
	}

	h.SetRouter(r)
	return r
}
