package config

import (
	"strings"

	"praxis-service/internal/pkg/constvars"
	"praxis-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "praxis"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:             utils.GetEnvString("APP_ENV", "development"),
			Port:            utils.GetEnvString("APP_PORT", ":8080"),
			Version:         utils.GetEnvString("APP_VERSION", "v1"),
			EndpointPrefix:  utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			Timezone:        utils.GetEnvString("APP_TIMEZONE", "UTC"),
			ShutdownTimeout: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 15),
			MaxRequests:     utils.GetEnvInt("APP_MAX_REQUESTS_PER_SECOND", 50),
		},
		GoogleCalendar: GoogleCalendar{
			ClientID:     utils.GetEnvString("GOOGLE_CALENDAR_CLIENT_ID", ""),
			ClientSecret: utils.GetEnvString("GOOGLE_CALENDAR_CLIENT_SECRET", ""),
			RedirectURL:  utils.GetEnvString("GOOGLE_CALENDAR_REDIRECT_URL", "http://localhost:8080/api/v1/calendar/callback"),
			Scopes: strings.Split(utils.GetEnvString(
				"GOOGLE_CALENDAR_SCOPES",
				"https://www.googleapis.com/auth/calendar.events https://www.googleapis.com/auth/calendar.readonly",
			), " "),
			StateSecret:        utils.GetEnvString("GOOGLE_CALENDAR_STATE_SECRET", "defaultStateSecret"),
			StateTTLMinutes:    utils.GetEnvInt("GOOGLE_CALENDAR_STATE_TTL_MINUTES", 10),
			TokenCipherKey:     utils.GetEnvString("GOOGLE_CALENDAR_TOKEN_CIPHER_KEY", ""),
			TokenExpirySkewSec: utils.GetEnvInt("GOOGLE_CALENDAR_TOKEN_EXPIRY_SKEW_SECONDS", 60),
			CallTimeoutSec:     utils.GetEnvInt("GOOGLE_CALENDAR_CALL_TIMEOUT_SECONDS", 10),
		},
		Scheduling: Scheduling{
			SlotSizeMinutes:      utils.GetEnvInt("SCHEDULING_SLOT_SIZE_MINUTES", 30),
			SyncWindowPastDays:   utils.GetEnvInt("SCHEDULING_SYNC_WINDOW_PAST_DAYS", 30),
			SyncWindowFutureDays: utils.GetEnvInt("SCHEDULING_SYNC_WINDOW_FUTURE_DAYS", 90),
			SyncWorkerCronSpec:   utils.GetEnvString("SCHEDULING_SYNC_WORKER_CRON_SPEC", constvars.DefaultSyncCronSpec),
			SyncIntervalMinutes:  utils.GetEnvInt("SCHEDULING_SYNC_INTERVAL_MINUTES", 30),
			BookingLockTTLSec:    utils.GetEnvInt("SCHEDULING_BOOKING_LOCK_TTL_SECONDS", 10),
			RefreshLockTTLSec:    utils.GetEnvInt("SCHEDULING_REFRESH_LOCK_TTL_SECONDS", 15),
		},
	}
}
