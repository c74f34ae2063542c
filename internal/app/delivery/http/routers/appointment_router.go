package routers

import (
	"praxis-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachAppointmentRoutes(router chi.Router, appointmentController *controllers.AppointmentController) {
	router.Post("/", appointmentController.CreateAppointment)
	router.Patch("/{appointmentID}", appointmentController.UpdateAppointment)
	router.Post("/{appointmentID}/cancel", appointmentController.CancelAppointment)
	router.Get("/doctor/{doctorID}", appointmentController.ListByDoctor)
}
