package googlecalendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/contracts"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/dto/responses"
	"praxis-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var (
	oauthUsecaseInstance contracts.CalendarOAuthUsecase
	onceOAuthUsecase     sync.Once
)

type oauthUsecase struct {
	CredentialRepository contracts.CredentialRepository
	LockService          contracts.LockerService
	AuditService         contracts.AuditService
	RedisRepository      contracts.RedisRepository
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger

	oauthConfig *oauth2.Config
	state       *stateCodec
	cipher      *tokenCipher
}

func NewCalendarOAuthUsecase(
	credentialRepository contracts.CredentialRepository,
	lockService contracts.LockerService,
	auditService contracts.AuditService,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) (contracts.CalendarOAuthUsecase, error) {
	var buildErr error
	onceOAuthUsecase.Do(func() {
		cipher, err := newTokenCipher(internalConfig.GoogleCalendar.TokenCipherKey)
		if err != nil {
			buildErr = err
			return
		}
		instance := &oauthUsecase{
			CredentialRepository: credentialRepository,
			LockService:          lockService,
			AuditService:         auditService,
			RedisRepository:      redisRepository,
			InternalConfig:       internalConfig,
			Log:                  logger,
			oauthConfig: &oauth2.Config{
				ClientID:     internalConfig.GoogleCalendar.ClientID,
				ClientSecret: internalConfig.GoogleCalendar.ClientSecret,
				RedirectURL:  internalConfig.GoogleCalendar.RedirectURL,
				Scopes:       internalConfig.GoogleCalendar.Scopes,
				Endpoint:     google.Endpoint,
			},
			state: newStateCodec(
				internalConfig.GoogleCalendar.StateSecret,
				time.Duration(internalConfig.GoogleCalendar.StateTTLMinutes)*time.Minute,
			),
			cipher: cipher,
		}
		oauthUsecaseInstance = instance
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return oauthUsecaseInstance, nil
}

// GenerateAuthURL builds the consent URL. Offline access plus forced
// re-consent guarantees a refresh token is issued even when the doctor has
// authorized before.
func (uc *oauthUsecase) GenerateAuthURL(ctx context.Context, doctorID string) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	state, err := uc.state.Encode(doctorID)
	if err != nil {
		uc.Log.Error("oauthUsecase.GenerateAuthURL error signing state",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	url := uc.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	uc.Log.Info("oauthUsecase.GenerateAuthURL succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
	)
	return url, nil
}

func (uc *oauthUsecase) ExchangeCode(ctx context.Context, code, state string) (string, *models.CalendarCredential, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	doctorID, err := uc.state.Decode(state)
	if err != nil {
		uc.Log.Error("oauthUsecase.ExchangeCode state rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return "", nil, err
	}

	token, err := uc.oauthConfig.Exchange(ctx, code)
	if err != nil {
		uc.Log.Error("oauthUsecase.ExchangeCode code exchange failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		uc.AuditService.Record(ctx, models.AuditRecord{
			Actor:      doctorID,
			Action:     constvars.AuditActionCalendarConnect,
			Resource:   "calendar_credential",
			ResourceID: doctorID,
			Outcome:    constvars.AuditOutcomeFailure,
			Detail:     err.Error(),
		})
		return "", nil, exceptions.ErrOAuthExchange(err)
	}

	encryptedRefresh := ""
	if token.RefreshToken != "" {
		encryptedRefresh, err = uc.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return "", nil, err
		}
	}

	// Re-authorization must keep the stored document's identity: Upsert
	// replaces by doctor_id and mongo rejects a replacement that alters _id.
	now := time.Now()
	credentialID := uuid.NewString()
	createdAt := now
	if existing, err := uc.CredentialRepository.FindByDoctor(ctx, doctorID); err != nil {
		return "", nil, err
	} else if existing != nil {
		credentialID = existing.ID
		createdAt = existing.CreatedAt
	}

	credential := &models.CalendarCredential{
		ID:           credentialID,
		DoctorID:     doctorID,
		AccessToken:  token.AccessToken,
		RefreshToken: encryptedRefresh,
		TokenType:    token.TokenType,
		ExpiryDate:   token.Expiry,
		Scope:        strings.Join(uc.oauthConfig.Scopes, " "),
		CalendarID:   constvars.GoogleCalendarPrimary,
		CalendarName: uc.lookupCalendarName(ctx, token),
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    now,
	}

	if err := uc.CredentialRepository.Upsert(ctx, credential); err != nil {
		uc.Log.Error("oauthUsecase.ExchangeCode error persisting credential",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
		return "", nil, err
	}
	uc.invalidateStatusCache(ctx, doctorID)

	uc.AuditService.Record(ctx, models.AuditRecord{
		Actor:      doctorID,
		Action:     constvars.AuditActionCalendarConnect,
		Resource:   "calendar_credential",
		ResourceID: credential.ID,
		Outcome:    constvars.AuditOutcomeSuccess,
	})

	uc.Log.Info("oauthUsecase.ExchangeCode succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.Time(constvars.LoggingTokenExpiryKey, credential.ExpiryDate),
	)
	return doctorID, credential, nil
}

// lookupCalendarName fetches the primary calendar's display name. Failure is
// tolerated: the connection works without the cosmetic name.
func (uc *oauthUsecase) lookupCalendarName(ctx context.Context, token *oauth2.Token) string {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return ""
	}
	entry, err := svc.CalendarList.Get(constvars.GoogleCalendarPrimary).Context(ctx).Do()
	if err != nil {
		return ""
	}
	return entry.Summary
}

func (uc *oauthUsecase) EnsureFreshToken(ctx context.Context, doctorID string) (*models.CalendarCredential, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	credential, err := uc.CredentialRepository.FindActiveByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, exceptions.ErrCredentialNotFound(nil)
	}

	skew := time.Duration(uc.InternalConfig.GoogleCalendar.TokenExpirySkewSec) * time.Second
	if !credential.IsExpired(time.Now(), skew) {
		return credential, nil
	}

	// Single-flight the refresh per doctor: two concurrent requests racing a
	// refresh can leave a transient invalid-token window on the remote side.
	lockKey := fmt.Sprintf(constvars.RedisKeyRefreshLockFormat, doctorID)
	lockTTL := time.Duration(uc.InternalConfig.Scheduling.RefreshLockTTLSec) * time.Second
	acquired, lockValue, lockErr := uc.LockService.TryLock(ctx, lockKey, lockTTL)
	if lockErr == nil && !acquired {
		// Another request is refreshing; wait for it to land and re-read.
		// Losing all the retries must not bypass the single-flight by
		// refreshing unlocked.
		for i := 0; i < 3; i++ {
			select {
			case <-ctx.Done():
				return nil, exceptions.ErrServerDeadlineExceeded(ctx.Err())
			case <-time.After(200 * time.Millisecond):
			}
			refreshed, err := uc.CredentialRepository.FindActiveByDoctor(ctx, doctorID)
			if err != nil {
				return nil, err
			}
			if refreshed == nil {
				return nil, exceptions.ErrCalendarAuthRevoked(nil)
			}
			if !refreshed.IsExpired(time.Now(), skew) {
				return refreshed, nil
			}
		}
		return nil, exceptions.ErrCalendarAuthExpired(fmt.Errorf("token refresh still in flight for doctor %s", doctorID))
	}
	if acquired {
		defer uc.LockService.Unlock(ctx, lockKey, lockValue)

		// Re-read after acquiring; the previous holder may have refreshed.
		current, err := uc.CredentialRepository.FindActiveByDoctor(ctx, doctorID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, exceptions.ErrCalendarAuthRevoked(nil)
		}
		if !current.IsExpired(time.Now(), skew) {
			return current, nil
		}
		credential = current
	}

	uc.Log.Info("oauthUsecase.EnsureFreshToken refreshing expired token",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
		zap.Time(constvars.LoggingTokenExpiryKey, credential.ExpiryDate),
	)
	return uc.refreshCredential(ctx, credential)
}

func (uc *oauthUsecase) refreshCredential(ctx context.Context, credential *models.CalendarCredential) (*models.CalendarCredential, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	refreshToken, err := uc.cipher.Decrypt(credential.RefreshToken)
	if err != nil {
		return nil, err
	}

	source := uc.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		// Revoked consent or an invalid grant: downgrade the connection so
		// unrelated callers see a disconnected calendar instead of errors.
		uc.Log.Error("oauthUsecase.refreshCredential refresh failed, deactivating credential",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, credential.DoctorID),
			zap.Error(err),
		)
		credential.IsActive = false
		credential.UpdatedAt = time.Now()
		if persistErr := uc.CredentialRepository.Upsert(ctx, credential); persistErr != nil {
			uc.Log.Error("oauthUsecase.refreshCredential error deactivating credential",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(persistErr),
			)
		}
		uc.invalidateStatusCache(ctx, credential.DoctorID)
		uc.AuditService.Record(ctx, models.AuditRecord{
			Actor:      credential.DoctorID,
			Action:     constvars.AuditActionTokenRefresh,
			Resource:   "calendar_credential",
			ResourceID: credential.ID,
			Outcome:    constvars.AuditOutcomeFailure,
			Detail:     err.Error(),
		})
		return nil, exceptions.ErrCalendarAuthRevoked(err)
	}

	credential.AccessToken = token.AccessToken
	credential.ExpiryDate = token.Expiry
	if token.TokenType != "" {
		credential.TokenType = token.TokenType
	}
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		encrypted, err := uc.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, err
		}
		credential.RefreshToken = encrypted
	}
	credential.UpdatedAt = time.Now()

	if err := uc.CredentialRepository.Upsert(ctx, credential); err != nil {
		return nil, err
	}
	uc.invalidateStatusCache(ctx, credential.DoctorID)

	uc.AuditService.Record(ctx, models.AuditRecord{
		Actor:      credential.DoctorID,
		Action:     constvars.AuditActionTokenRefresh,
		Resource:   "calendar_credential",
		ResourceID: credential.ID,
		Outcome:    constvars.AuditOutcomeSuccess,
	})

	uc.Log.Info("oauthUsecase.refreshCredential succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, credential.DoctorID),
		zap.Time(constvars.LoggingTokenExpiryKey, credential.ExpiryDate),
	)
	return credential, nil
}

func (uc *oauthUsecase) Disconnect(ctx context.Context, doctorID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	credential, err := uc.CredentialRepository.FindByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	if credential == nil {
		return exceptions.ErrCredentialNotFound(nil)
	}

	// Soft-invalidate: token material is cleared but the record survives for
	// audit history.
	credential.AccessToken = ""
	credential.RefreshToken = ""
	credential.IsActive = false
	credential.UpdatedAt = time.Now()

	if err := uc.CredentialRepository.Upsert(ctx, credential); err != nil {
		return err
	}
	uc.invalidateStatusCache(ctx, doctorID)

	uc.AuditService.Record(ctx, models.AuditRecord{
		Actor:      doctorID,
		Action:     constvars.AuditActionCalendarDisconnect,
		Resource:   "calendar_credential",
		ResourceID: credential.ID,
		Outcome:    constvars.AuditOutcomeSuccess,
	})

	uc.Log.Info("oauthUsecase.Disconnect succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, doctorID),
	)
	return nil
}

// GetConnectionStatus reads through a short-lived redis cache. Cache failures
// are tolerated; the source of truth stays in mongo.
func (uc *oauthUsecase) GetConnectionStatus(ctx context.Context, doctorID string) (*responses.ConnectionStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	cacheKey := fmt.Sprintf(constvars.RedisKeyConnStatusFormat, doctorID)
	if cached, err := uc.RedisRepository.Get(ctx, cacheKey); err == nil && cached != "" {
		status := new(responses.ConnectionStatus)
		if err := json.Unmarshal([]byte(cached), status); err == nil {
			return status, nil
		}
	}

	credential, err := uc.CredentialRepository.FindByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	status := &responses.ConnectionStatus{IsConnected: false}
	if credential != nil && credential.IsActive {
		status = &responses.ConnectionStatus{
			IsConnected:  true,
			CalendarName: credential.CalendarName,
			LastSyncAt:   credential.LastSyncAt,
			NextSyncAt:   credential.NextSyncAt,
		}
	}

	expiry := time.Duration(constvars.RedisConnStatusCacheExpiry) * time.Second
	if err := uc.RedisRepository.Set(ctx, cacheKey, status, expiry); err != nil {
		uc.Log.Warn("oauthUsecase.GetConnectionStatus error caching status",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
	}
	return status, nil
}

// invalidateStatusCache drops the cached connection status after any
// credential mutation.
func (uc *oauthUsecase) invalidateStatusCache(ctx context.Context, doctorID string) {
	cacheKey := fmt.Sprintf(constvars.RedisKeyConnStatusFormat, doctorID)
	if err := uc.RedisRepository.Delete(ctx, cacheKey); err != nil {
		uc.Log.Warn("oauthUsecase.invalidateStatusCache error deleting key",
			zap.String(constvars.LoggingDoctorIDKey, doctorID),
			zap.Error(err),
		)
	}
}
