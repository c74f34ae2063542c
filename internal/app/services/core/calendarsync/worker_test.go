package calendarsync

import (
	"context"
	"testing"
	"time"

	"praxis-service/internal/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// neverLocker denies leadership so a scheduled run can never touch the
// fixture stores.
type neverLocker struct{}

func (neverLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	return false, "", nil
}

func (neverLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return nil
}

func (neverLocker) Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error {
	return nil
}

func newTestWorker(cronSpec string) *Worker {
	gateway := &stubGateway{}
	uc, _, creds := newSyncFixture(gateway)
	cfg := &config.InternalConfig{
		Scheduling: config.Scheduling{SyncWorkerCronSpec: cronSpec},
	}
	return NewWorker(zap.NewNop(), cfg, neverLocker{}, creds, uc)
}

func TestWorkerSchedulesConfiguredSpec(t *testing.T) {
	w := newTestWorker("@every 1h")
	w.Start(context.Background())
	defer w.Stop()

	require.NotNil(t, w.cron)
	assert.Len(t, w.cron.Entries(), 1)
}

func TestWorkerFallsBackToDefaultCadenceOnBadSpec(t *testing.T) {
	w := newTestWorker("not a cron spec")
	w.Start(context.Background())
	defer w.Stop()

	require.NotNil(t, w.cron)
	assert.Len(t, w.cron.Entries(), 1)
}
