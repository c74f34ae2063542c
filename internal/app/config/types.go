package config

type (
	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		Logger   Logger
		RabbitMQ RabbitMQ
	}
	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}
)

type (
	InternalConfig struct {
		App            App
		GoogleCalendar GoogleCalendar
		Scheduling     Scheduling
	}
	App struct {
		Env             string
		Port            string
		Version         string
		EndpointPrefix  string
		Timezone        string
		ShutdownTimeout int
		MaxRequests     int
	}
	GoogleCalendar struct {
		ClientID           string
		ClientSecret       string
		RedirectURL        string
		Scopes             []string
		StateSecret        string
		StateTTLMinutes    int
		TokenCipherKey     string
		TokenExpirySkewSec int
		CallTimeoutSec     int
	}
	Scheduling struct {
		SlotSizeMinutes      int
		SyncWindowPastDays   int
		SyncWindowFutureDays int
		SyncWorkerCronSpec   string
		SyncIntervalMinutes  int
		BookingLockTTLSec    int
		RefreshLockTTLSec    int
	}
)
