package routes

import (
	"context"
	"net/http"
	"sort"
	"time"

	"TeleClinic/cache"
	"TeleClinic/config"
	"TeleClinic/controllers"
	"TeleClinic/handlers"
	"TeleClinic/middlewares"
	"TeleClinic/payments"
	"TeleClinic/repositories"
	"TeleClinic/schedule"
	"TeleClinic/services"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the long-lived clients built by the serve command.
type Dependencies struct {
	Config   *config.AppConfig
	DB       *gorm.DB
	Cache    *cache.Cache
	Log      *zap.Logger
	Notifier services.Notifier
	Tokens   *utils.TokenMaker
	Gateways map[string]payments.Gateway
}

// Generator builds the slot grid from the working-hours settings.
func Generator(cfg *config.AppConfig) schedule.Generator {
	return schedule.Generator{
		StartHour: cfg.DayStartHour,
		EndHour:   cfg.DayEndHour,
		Step:      time.Duration(cfg.SlotStepMinutes) * time.Minute,
		Days:      cfg.BookingWindowDays,
	}
}

// Estimator builds the queue estimator from the consultation settings.
func Estimator(cfg *config.AppConfig) schedule.Estimator {
	return schedule.Estimator{
		AverageConsultation: time.Duration(cfg.AvgConsultationMinutes) * time.Minute,
		DelayThreshold:      time.Duration(cfg.DelayThresholdMinutes) * time.Minute,
	}
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(deps Dependencies) http.Handler {
	cfg, log := deps.Config, deps.Log
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middlewares.RecoveryMiddleware(log))
	router.Use(middlewares.LoggingMiddleware(log))
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.CORSOrigins)))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	loc := cfg.Location()
	generator := Generator(cfg)

	doctorRepo := repositories.NewDoctorRepository(deps.DB, deps.Cache, log)
	appointmentRepo := repositories.NewAppointmentRepository(deps.DB, deps.Cache, log)
	patientRepo := repositories.NewPatientRepository(deps.DB, deps.Cache, log)
	paymentRepo := repositories.NewPaymentRepository(deps.DB)

	doctorService := services.NewDoctorService(doctorRepo, generator, loc)
	confirmationService := services.NewConfirmationService(deps.Tokens, appointmentRepo, cfg.FrontendURL)
	bookingService := services.NewBookingService(
		doctorRepo, appointmentRepo, patientRepo, confirmationService, deps.Notifier, generator, loc, log,
	)
	queueService := services.NewQueueService(doctorRepo, appointmentRepo, Estimator(cfg), loc)
	patientService := services.NewPatientService(patientRepo)
	paymentService := services.NewPaymentService(
		appointmentRepo, paymentRepo, doctorRepo, deps.Gateways, deps.Cache, cfg.Currency, cfg.FrontendURL, log,
	)

	h := controllers.Handlers{
		Doctors:      handlers.NewDoctorHandler(doctorService, log),
		Appointments: handlers.NewAppointmentHandler(bookingService, doctorService, confirmationService, log),
		Queue:        handlers.NewQueueHandler(queueService, log),
		Patients:     handlers.NewPatientHandler(patientService, log),
		Payments:     handlers.NewPaymentHandler(paymentService, log),
		Session:      handlers.NewSessionHandler(log),
	}

	controllers.SetupPublicRoutes(router, h)
	controllers.SetupPatientRoutes(router, deps.Tokens, h)
	controllers.SetupDoctorRoutes(router, deps.Tokens, h)
	controllers.SetupAdminRoutes(router, cfg.GetBearerToken(), h)
	controllers.SetupWebhookRoutes(router, providerNames(deps.Gateways), h)

	controllers.SetupRootRoute(router, log,
		controllers.HealthCheck{Name: "postgres", Ping: func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		controllers.HealthCheck{Name: "redis", Ping: deps.Cache.Ping},
	)

	return router
}

func providerNames(gateways map[string]payments.Gateway) []string {
	names := make([]string, 0, len(gateways))
	for name := range gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
