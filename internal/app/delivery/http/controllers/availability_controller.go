package controllers

import (
	"context"
	"net/http"
	"time"

	"praxis-service/internal/app/contracts"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/dto/requests"
	"praxis-service/internal/pkg/dto/responses"
	"praxis-service/internal/pkg/exceptions"
	"praxis-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type AvailabilityController struct {
	Log                 *zap.Logger
	AvailabilityUsecase contracts.AvailabilityUsecase
}

func NewAvailabilityController(logger *zap.Logger, availabilityUsecase contracts.AvailabilityUsecase) *AvailabilityController {
	return &AvailabilityController{
		Log:                 logger,
		AvailabilityUsecase: availabilityUsecase,
	}
}

func (ctrl *AvailabilityController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AvailabilityController.CheckAvailability requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("AvailabilityController.CheckAvailability called",
		zap.String(constvars.LoggingRequestIDKey, requestID))

	request := new(requests.CheckAvailabilityRequest)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		ctrl.Log.Error("AvailabilityController.CheckAvailability failed to decode JSON request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseRequestBody(err))
		return
	}

	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("AvailabilityController.CheckAvailability validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	available, err := ctrl.AvailabilityUsecase.IsAvailable(ctx, request.DoctorID, request.StartTime, request.DurationMinutes)
	if err != nil {
		ctrl.Log.Error("AvailabilityController.CheckAvailability AvailabilityUsecase.IsAvailable error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("AvailabilityController.CheckAvailability succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Bool(constvars.LoggingSuccessKey, available))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AvailabilityCheckSuccess, responses.AvailabilityResult{Available: available})
}

func (ctrl *AvailabilityController) GetDoctorAvailability(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("AvailabilityController.GetDoctorAvailability requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")
	ctrl.Log.Info("AvailabilityController.GetDoctorAvailability called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID))

	from, to, err := parseRangeQuery(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.AvailabilityUsecase.GetDoctorAvailability(ctx, doctorID, from, to)
	if err != nil {
		ctrl.Log.Error("AvailabilityController.GetDoctorAvailability AvailabilityUsecase.GetDoctorAvailability error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AvailabilityCheckSuccess, response)
}
