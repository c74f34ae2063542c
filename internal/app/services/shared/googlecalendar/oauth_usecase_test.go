package googlecalendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/models"
	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type memoryCredentialRepository struct {
	byDoctor map[string]*models.CalendarCredential
}

func newMemoryCredentialRepository() *memoryCredentialRepository {
	return &memoryCredentialRepository{byDoctor: map[string]*models.CalendarCredential{}}
}

func (r *memoryCredentialRepository) Upsert(ctx context.Context, credential *models.CalendarCredential) error {
	copied := *credential
	r.byDoctor[credential.DoctorID] = &copied
	return nil
}

func (r *memoryCredentialRepository) FindActiveByDoctor(ctx context.Context, doctorID string) (*models.CalendarCredential, error) {
	credential, ok := r.byDoctor[doctorID]
	if !ok || !credential.IsActive {
		return nil, nil
	}
	copied := *credential
	return &copied, nil
}

func (r *memoryCredentialRepository) FindByDoctor(ctx context.Context, doctorID string) (*models.CalendarCredential, error) {
	credential, ok := r.byDoctor[doctorID]
	if !ok {
		return nil, nil
	}
	copied := *credential
	return &copied, nil
}

func (r *memoryCredentialRepository) FindAllActive(ctx context.Context) ([]models.CalendarCredential, error) {
	var out []models.CalendarCredential
	for _, credential := range r.byDoctor {
		if credential.IsActive {
			out = append(out, *credential)
		}
	}
	return out, nil
}

type alwaysLocker struct{}

func (alwaysLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	return true, "lock-value", nil
}

func (alwaysLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return nil
}

func (alwaysLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return nil
}

type deniedLocker struct{}

func (deniedLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	return false, "", nil
}

func (deniedLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return nil
}

func (deniedLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return nil
}

type silentAudit struct{}

func (silentAudit) Record(ctx context.Context, record models.AuditRecord) {}

type memoryRedis struct {
	values map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}}
}

func (r *memoryRedis) Delete(ctx context.Context, key string) error {
	delete(r.values, key)
	return nil
}

func (r *memoryRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.values[key] = string(encoded)
	return nil
}

func (r *memoryRedis) Get(ctx context.Context, key string) (string, error) {
	return r.values[key], nil
}

func (r *memoryRedis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	if _, ok := r.values[key]; ok {
		return false, nil
	}
	if err := r.Set(ctx, key, value, exp); err != nil {
		return false, err
	}
	return true, nil
}

func (r *memoryRedis) Expire(ctx context.Context, key string, exp time.Duration) error {
	return nil
}

func newOAuthFixture(t *testing.T) (*oauthUsecase, *memoryCredentialRepository) {
	t.Helper()
	repo := newMemoryCredentialRepository()
	cfg := &config.InternalConfig{
		GoogleCalendar: config.GoogleCalendar{
			ClientID:           "client-id",
			ClientSecret:       "client-secret",
			RedirectURL:        "https://example.com/callback",
			Scopes:             []string{"https://www.googleapis.com/auth/calendar"},
			StateSecret:        "state-secret",
			StateTTLMinutes:    10,
			TokenExpirySkewSec: 120,
		},
		Scheduling: config.Scheduling{RefreshLockTTLSec: 30},
	}
	cipher, err := newTokenCipher("cipher-key")
	require.NoError(t, err)

	return &oauthUsecase{
		CredentialRepository: repo,
		LockService:          alwaysLocker{},
		AuditService:         silentAudit{},
		RedisRepository:      newMemoryRedis(),
		InternalConfig:       cfg,
		Log:                  zap.NewNop(),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleCalendar.ClientID,
			ClientSecret: cfg.GoogleCalendar.ClientSecret,
			RedirectURL:  cfg.GoogleCalendar.RedirectURL,
			Scopes:       cfg.GoogleCalendar.Scopes,
			Endpoint:     google.Endpoint,
		},
		state:  newStateCodec(cfg.GoogleCalendar.StateSecret, 10*time.Minute),
		cipher: cipher,
	}, repo
}

func connectedCredential(expiry time.Time) *models.CalendarCredential {
	return &models.CalendarCredential{
		ID:           "cred-1",
		DoctorID:     "doc-1",
		AccessToken:  "access-token",
		RefreshToken: "encrypted-refresh",
		TokenType:    "Bearer",
		ExpiryDate:   expiry,
		CalendarID:   constvars.GoogleCalendarPrimary,
		CalendarName: "Dr. Example",
		IsActive:     true,
	}
}

func TestGenerateAuthURLCarriesSignedState(t *testing.T) {
	uc, _ := newOAuthFixture(t)

	url, err := uc.GenerateAuthURL(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "state=")
	assert.Contains(t, url, "access_type=offline")
}

func TestEnsureFreshTokenReturnsUnexpiredCredential(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(time.Hour))

	credential, err := uc.EnsureFreshToken(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "access-token", credential.AccessToken)
}

func TestEnsureFreshTokenWithoutConnection(t *testing.T) {
	uc, _ := newOAuthFixture(t)

	_, err := uc.EnsureFreshToken(context.Background(), "doc-1")
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}

func TestEnsureFreshTokenLostSingleFlightNeverRefreshesUnlocked(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	uc.LockService = deniedLocker{}
	// The competing holder never lands a fresh token, so every re-read
	// still sees an expired credential.
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(-time.Hour))

	_, err := uc.EnsureFreshToken(context.Background(), "doc-1")
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusUnauthorized, customErr.StatusCode)

	// The stale token material was never touched.
	assert.Equal(t, "access-token", repo.byDoctor["doc-1"].AccessToken)
}

func TestEnsureFreshTokenWaitHonorsContextCancellation(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	uc.LockService = deniedLocker{}
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.EnsureFreshToken(ctx, "doc-1")
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusGatewayTimeout, customErr.StatusCode)
}

func TestDisconnectKeepsRecordClearsTokens(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(time.Hour))

	err := uc.Disconnect(context.Background(), "doc-1")
	require.NoError(t, err)

	stored := repo.byDoctor["doc-1"]
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)
	assert.Empty(t, stored.AccessToken)
	assert.Empty(t, stored.RefreshToken)

	status, err := uc.GetConnectionStatus(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, status.IsConnected)
}

func TestDisconnectWithoutConnection(t *testing.T) {
	uc, _ := newOAuthFixture(t)

	err := uc.Disconnect(context.Background(), "doc-1")
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}

func TestGetConnectionStatusConnected(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(time.Hour))

	status, err := uc.GetConnectionStatus(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, status.IsConnected)
	assert.Equal(t, "Dr. Example", status.CalendarName)
}

func TestGetConnectionStatusServedFromCache(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(time.Hour))

	first, err := uc.GetConnectionStatus(context.Background(), "doc-1")
	require.NoError(t, err)
	require.True(t, first.IsConnected)

	// Mutating the store directly leaves the cache intact, so the stale
	// cached view is returned until it expires or a usecase mutation
	// invalidates it.
	repo.byDoctor["doc-1"].IsActive = false

	second, err := uc.GetConnectionStatus(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, second.IsConnected)

	require.NoError(t, uc.Disconnect(context.Background(), "doc-1"))
	third, err := uc.GetConnectionStatus(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.False(t, third.IsConnected)
}

func TestGetConnectionStatusNeverReturnsTokenErrors(t *testing.T) {
	uc, repo := newOAuthFixture(t)
	// Expired credential: status stays a cheap metadata read, no refresh.
	repo.byDoctor["doc-1"] = connectedCredential(time.Now().Add(-time.Hour))

	status, err := uc.GetConnectionStatus(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, status.IsConnected)
}

func TestExchangeCodeKeepsExistingCredentialIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-access","token_type":"Bearer","refresh_token":"new-refresh","expires_in":3600}`))
	}))
	defer srv.Close()

	uc, repo := newOAuthFixture(t)
	uc.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}

	// A prior connect (even a disconnected one) leaves a document behind;
	// re-authorization must keep its _id or the doctor-keyed replace is
	// rejected by the server.
	before := connectedCredential(time.Now().Add(-time.Hour))
	before.CreatedAt = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	before.IsActive = false
	repo.byDoctor["doc-1"] = before

	state, err := uc.state.Encode("doc-1")
	require.NoError(t, err)

	doctorID, credential, err := uc.ExchangeCode(context.Background(), "auth-code", state)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doctorID)
	assert.Equal(t, before.ID, credential.ID)
	assert.Equal(t, before.CreatedAt, credential.CreatedAt)

	stored := repo.byDoctor["doc-1"]
	require.NotNil(t, stored)
	assert.Equal(t, before.ID, stored.ID)
	assert.Equal(t, "new-access", stored.AccessToken)
	assert.True(t, stored.IsActive)
}

func TestExchangeCodeRejectsInvalidState(t *testing.T) {
	uc, _ := newOAuthFixture(t)

	_, _, err := uc.ExchangeCode(context.Background(), "auth-code", "forged-state")
	require.Error(t, err)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusBadRequest, customErr.StatusCode)
}
