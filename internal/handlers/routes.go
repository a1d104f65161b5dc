package handlers

import "github.com/gin-gonic/gin"

// Routes навешивает маршруты /api на r.
// authn выставляет user_id, admin пропускает только администраторов.
func (h *Handlers) Routes(r gin.IRouter, authn, admin gin.HandlerFunc) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", authn, h.Me)
		authGroup.POST("/logout", authn, h.Logout)
		authGroup.PUT("/card", authn, h.UpdateCard)
	}

	flights := api.Group("/flights")
	{
		flights.GET("", h.SearchFlights)
		flights.GET("/:id", h.GetFlight)
		flights.GET("/:id/availability", h.FlightAvailability)
		flights.GET("/:id/seats", h.FlightSeatMap)
		flights.POST("", authn, admin, h.CreateFlight)
		flights.PATCH("/:id/status", authn, admin, h.UpdateFlightStatus)
		flights.PATCH("/:id/deactivate", authn, admin, h.DeactivateFlight)
	}

	airlines := api.Group("/airlines")
	{
		airlines.GET("", h.ListAirlines)
		airlines.GET("/:id", h.GetAirline)
		airlines.POST("", authn, admin, h.CreateAirline)
	}

	airports := api.Group("/airports")
	{
		airports.GET("", h.ListAirports)
		airports.GET("/:id", h.GetAirport)
		airports.POST("", authn, admin, h.CreateAirport)
	}

	aircraft := api.Group("/aircraft")
	{
		aircraft.GET("", h.ListAircraft)
		aircraft.GET("/:id", h.GetAircraft)
		aircraft.POST("", authn, admin, h.CreateAircraft)
		aircraft.PATCH("/:id/deactivate", authn, admin, h.DeactivateAircraft)
	}

	reservations := api.Group("/reservations", authn)
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.PATCH("/:id", h.UpdateReservation)
		reservations.PATCH("/:id/confirm", h.ConfirmReservation)
		reservations.PATCH("/:id/pay", h.PayReservation)
		reservations.PATCH("/:id/cancel", h.CancelReservation)
		reservations.POST("/:id/purchase", h.PurchaseTickets)
	}

	tickets := api.Group("/tickets", authn)
	{
		tickets.GET("", h.ListTickets)
		tickets.GET("/:id", h.GetTicket)
		tickets.POST("/:id/check-in", h.CheckIn)
		tickets.PATCH("/:id/cancel", h.CancelTicket)
		tickets.PATCH("/:id/board", admin, h.BoardTicket)
	}

	adminGroup := api.Group("/admin", authn, admin)
	{
		adminGroup.GET("/reservations", h.ListAllReservations)
		adminGroup.GET("/tickets", h.ListAllTickets)
	}
}
