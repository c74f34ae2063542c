package routers

import (
	"praxis-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachAvailabilityRoutes(router chi.Router, availabilityController *controllers.AvailabilityController) {
	router.Post("/check", availabilityController.CheckAvailability)
	router.Get("/doctor/{doctorID}", availabilityController.GetDoctorAvailability)
}
