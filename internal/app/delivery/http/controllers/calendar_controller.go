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
	"go.uber.org/zap"
)

type CalendarController struct {
	Log          *zap.Logger
	OAuthUsecase contracts.CalendarOAuthUsecase
	SyncUsecase  contracts.CalendarSyncUsecase
}

func NewCalendarController(logger *zap.Logger, oauthUsecase contracts.CalendarOAuthUsecase, syncUsecase contracts.CalendarSyncUsecase) *CalendarController {
	return &CalendarController{
		Log:          logger,
		OAuthUsecase: oauthUsecase,
		SyncUsecase:  syncUsecase,
	}
}

func (ctrl *CalendarController) GetAuthURL(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("CalendarController.GetAuthURL requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")
	ctrl.Log.Info("CalendarController.GetAuthURL called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	url, err := ctrl.OAuthUsecase.GenerateAuthURL(ctx, doctorID)
	if err != nil {
		ctrl.Log.Error("CalendarController.GetAuthURL OAuthUsecase.GenerateAuthURL error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AuthURLGeneratedSuccess, responses.AuthURL{URL: url})
}

// HandleCallback finalizes the OAuth flow. The doctor identity travels inside
// the signed state parameter, never as a separate query value.
func (ctrl *CalendarController) HandleCallback(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("CalendarController.HandleCallback requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	request := &requests.ExchangeCodeRequest{
		Code:  r.URL.Query().Get("code"),
		State: r.URL.Query().Get("state"),
	}
	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("CalendarController.HandleCallback validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	doctorID, credential, err := ctrl.OAuthUsecase.ExchangeCode(ctx, request.Code, request.State)
	if err != nil {
		ctrl.Log.Error("CalendarController.HandleCallback OAuthUsecase.ExchangeCode error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("CalendarController.HandleCallback succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.String(constvars.LoggingCalendarIDKey, credential.CalendarID))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CalendarConnectedSuccess, responses.ConnectionStatus{
		IsConnected:  true,
		CalendarName: credential.CalendarName,
	})
}

func (ctrl *CalendarController) GetConnectionStatus(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("CalendarController.GetConnectionStatus requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, err := ctrl.OAuthUsecase.GetConnectionStatus(ctx, doctorID)
	if err != nil {
		ctrl.Log.Error("CalendarController.GetConnectionStatus OAuthUsecase.GetConnectionStatus error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ConnectionStatusSuccess, status)
}

// RefreshToken forces the access token fresh ahead of its expiry. The token
// itself never leaves the server; only the connection state is returned.
func (ctrl *CalendarController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("CalendarController.RefreshToken requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")
	ctrl.Log.Info("CalendarController.RefreshToken called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID))

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	credential, err := ctrl.OAuthUsecase.EnsureFreshToken(ctx, doctorID)
	if err != nil {
		ctrl.Log.Error("CalendarController.RefreshToken OAuthUsecase.EnsureFreshToken error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("CalendarController.RefreshToken succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.Time(constvars.LoggingTokenExpiryKey, credential.ExpiryDate))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.TokenRefreshedSuccess, responses.ConnectionStatus{
		IsConnected:  true,
		CalendarName: credential.CalendarName,
		LastSyncAt:   credential.LastSyncAt,
		NextSyncAt:   credential.NextSyncAt,
	})
}

func (ctrl *CalendarController) Disconnect(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("CalendarController.Disconnect requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")
	ctrl.Log.Info("CalendarController.Disconnect called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID))

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := ctrl.OAuthUsecase.Disconnect(ctx, doctorID); err != nil {
		ctrl.Log.Error("CalendarController.Disconnect OAuthUsecase.Disconnect error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CalendarDisconnectedSuccess, nil)
}

func (ctrl *CalendarController) SyncAppointments(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok {
		ctrl.Log.Error("CalendarController.SyncAppointments requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	doctorID := chi.URLParam(r, "doctorID")
	ctrl.Log.Info("CalendarController.SyncAppointments called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID))

	// Sync runs can touch a large window; allow a longer deadline.
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	report, err := ctrl.SyncUsecase.SyncAppointments(ctx, doctorID)
	if err != nil {
		ctrl.Log.Error("CalendarController.SyncAppointments SyncUsecase.SyncAppointments error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err))
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("CalendarController.SyncAppointments succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingTotalEventsKey, report.TotalEvents),
		zap.Int(constvars.LoggingErrorCountKey, len(report.Errors)))
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CalendarSyncCompletedSuccess, report)
}
