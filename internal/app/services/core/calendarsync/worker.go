package calendarsync

import (
	"context"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/contracts"
	"praxis-service/internal/pkg/constvars"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker periodically reconciles all connected calendars.
type Worker struct {
	log         *zap.Logger
	cfg         *config.InternalConfig
	locker      contracts.LockerService
	credentials contracts.CredentialRepository
	syncUsecase contracts.CalendarSyncUsecase
	cron        *cron.Cron
	runCtx      context.Context
	cancel      context.CancelFunc
}

func NewWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	credentialRepository contracts.CredentialRepository,
	syncUsecase contracts.CalendarSyncUsecase,
) *Worker {
	return &Worker{
		log:         log,
		cfg:         cfg,
		locker:      lockerSvc,
		credentials: credentialRepository,
		syncUsecase: syncUsecase,
	}
}

// Start begins the periodic loop.
func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Scheduling.SyncWorkerCronSpec
	_, err := c.AddFunc(spec, func() { w.runOnce(w.runCtx) })
	if err != nil {
		w.log.Warn("calendarsync.worker: failed to schedule with provided cron spec, falling back to default cadence",
			zap.String(constvars.LoggingCronSpecKey, constvars.DefaultSyncCronSpec),
			zap.Error(err),
		)
		c = cron.New()
		_, _ = c.AddFunc(constvars.DefaultSyncCronSpec, func() { w.runOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels in-flight runs and waits for the cron scheduler to drain.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
}

// runOnce syncs every connected doctor under a leader lock so only one
// instance walks the credential list per cadence.
func (w *Worker) runOnce(ctx context.Context) {
	ttl := 2 * time.Minute
	acquired, token, err := w.locker.TryLock(ctx, constvars.RedisKeySyncLeaderLock, ttl)
	if err != nil {
		w.log.Warn("calendarsync.worker: leader lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Info("calendarsync.worker: leader lock not acquired; another instance is running")
		return
	}
	defer w.locker.Unlock(ctx, constvars.RedisKeySyncLeaderLock, token)

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go func() {
		tick := time.NewTicker(ttl / 2)
		defer tick.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-tick.C:
				if err := w.locker.Refresh(ctx, constvars.RedisKeySyncLeaderLock, token, ttl); err != nil {
					w.log.Warn("calendarsync.worker: failed to refresh leader lock TTL", zap.Error(err))
				}
			}
		}
	}()

	credentials, err := w.credentials.FindAllActive(ctx)
	if err != nil {
		w.log.Warn("calendarsync.worker: listing connected doctors failed", zap.Error(err))
		return
	}
	w.log.Info("calendarsync.worker: starting sync pass",
		zap.Int(constvars.LoggingConnectedDoctorsKey, len(credentials)),
	)

	for i := range credentials {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := w.syncUsecase.SyncAppointments(ctx, credentials[i].DoctorID); err != nil {
			w.log.Warn("calendarsync.worker: sync failed for doctor",
				zap.String(constvars.LoggingDoctorIDKey, credentials[i].DoctorID),
				zap.Error(err),
			)
		}
	}
}
