package routers

import (
	"praxis-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachCalendarRoutes(router chi.Router, calendarController *controllers.CalendarController) {
	router.Get("/auth/{doctorID}", calendarController.GetAuthURL)
	router.Get("/callback", calendarController.HandleCallback)
	router.Get("/status/{doctorID}", calendarController.GetConnectionStatus)
	router.Post("/refresh/{doctorID}", calendarController.RefreshToken)
	router.Delete("/disconnect/{doctorID}", calendarController.Disconnect)
	router.Post("/sync/{doctorID}", calendarController.SyncAppointments)
}
