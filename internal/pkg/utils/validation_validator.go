package utils

import (
	"praxis-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("appointment_type", validateAppointmentType)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAppointmentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == constvars.AppointmentTypeConsultation ||
		value == constvars.AppointmentTypeFollowUp ||
		value == constvars.AppointmentTypeProcedure
}
