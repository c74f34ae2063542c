package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"praxis-service/internal/app/config"
	"praxis-service/internal/app/delivery/http/controllers"
	"praxis-service/internal/app/delivery/http/middlewares"
	"praxis-service/internal/app/delivery/http/routers"
	"praxis-service/internal/app/drivers/database"
	"praxis-service/internal/app/drivers/logger"
	"praxis-service/internal/app/drivers/messaging"
	"praxis-service/internal/app/services/core/appointments"
	"praxis-service/internal/app/services/core/availability"
	"praxis-service/internal/app/services/core/calendarsync"
	"praxis-service/internal/app/services/shared/audit"
	"praxis-service/internal/app/services/shared/googlecalendar"
	"praxis-service/internal/app/services/shared/locker"
	"praxis-service/internal/app/services/shared/profiles"
	sharedredis "praxis-service/internal/app/services/shared/redis"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	logger.InitLogger(internalConfig)
	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		zapLogger.Fatal("invalid timezone", zap.Error(err))
	}
	time.Local = location

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQ := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Logger:         zapLogger,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	bootstrapingTheApp(bootstrap)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}
	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) {
	// Redis
	redisRepository := sharedredis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, bootstrap.Logger)

	// Audit sink
	auditService, err := audit.NewService(bootstrap.RabbitMQ, bootstrap.Logger)
	if err != nil {
		bootstrap.Logger.Fatal("failed to initialize audit sink", zap.Error(err))
	}

	// External collaborators
	doctorProfileService := profiles.NewDoctorProfileMongoService(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
	patientService := profiles.NewPatientMongoService(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)

	// Google Calendar
	credentialRepository := googlecalendar.NewCredentialMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)
	oauthUsecase, err := googlecalendar.NewCalendarOAuthUsecase(
		credentialRepository,
		lockerService,
		auditService,
		redisRepository,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)
	if err != nil {
		bootstrap.Logger.Fatal("failed to initialize calendar oauth usecase", zap.Error(err))
	}
	calendarGateway := googlecalendar.NewCalendarGateway(oauthUsecase, auditService, bootstrap.InternalConfig, bootstrap.Logger)

	// Appointments
	appointmentRepository := appointments.NewAppointmentMongoRepository(bootstrap.MongoDB, bootstrap.DriverConfig.MongoDB.DbName)

	// Availability
	availabilityUsecase := availability.NewAvailabilityUsecase(
		doctorProfileService,
		appointmentRepository,
		calendarGateway,
		auditService,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	appointmentUsecase := appointments.NewAppointmentUsecase(
		appointmentRepository,
		availabilityUsecase,
		patientService,
		calendarGateway,
		lockerService,
		auditService,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)

	// Calendar sync
	syncUsecase := calendarsync.NewCalendarSyncUsecase(
		appointmentRepository,
		credentialRepository,
		calendarGateway,
		auditService,
		redisRepository,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)
	syncWorker := calendarsync.NewWorker(bootstrap.Logger, bootstrap.InternalConfig, lockerService, credentialRepository, syncUsecase)
	syncWorker.Start(context.Background())
	bootstrap.SyncWorkerStop = syncWorker.Stop

	// Controllers
	appointmentController := controllers.NewAppointmentController(bootstrap.Logger, appointmentUsecase)
	availabilityController := controllers.NewAvailabilityController(bootstrap.Logger, availabilityUsecase)
	calendarController := controllers.NewCalendarController(bootstrap.Logger, oauthUsecase, syncUsecase)

	// Middlewares
	middlewares := &middlewares.Middlewares{
		Log:            bootstrap.Logger,
		InternalConfig: bootstrap.InternalConfig,
	}

	routers.SetupRoutes(
		bootstrap.Router,
		bootstrap.InternalConfig,
		middlewares,
		appointmentController,
		availabilityController,
		calendarController,
	)
}
