// Package main is the entrypoint for the LifeGuard API server.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	// Registers the "postgres" driver behind the reminder queue.
	_ "github.com/lib/pq"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/cache"
	"github.com/evansachie/lifeguard/internal/config"
	"github.com/evansachie/lifeguard/internal/handler"
	"github.com/evansachie/lifeguard/internal/healthtips"
	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/middleware"
	"github.com/evansachie/lifeguard/internal/notify"
	"github.com/evansachie/lifeguard/internal/repository"
	"github.com/evansachie/lifeguard/internal/server"
	"github.com/evansachie/lifeguard/internal/service"
	"github.com/evansachie/lifeguard/internal/voice"
)

func main() {
	ctx := context.Background()

	// Values already in the environment win. A missing file is ignored.
	_ = config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			logger.Error("sentry_init_failed", "error", err)
		}
	}
	defer sentry.Flush(2 * time.Second)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	queueDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open reminder queue",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()

	// Outbound channels
	var mailer notify.Mailer
	if cfg.EmailConfigured() {
		mailer = notify.NewSendGridMailer(cfg.SendGridAPIKey, notify.Sender{
			Email: cfg.EmailFrom,
			Name:  cfg.EmailFromName,
		})
	} else {
		logger.Warn("sendgrid_not_configured", "detail", "emails are logged, not sent")
		mailer = notify.NewLogMailer(logger)
	}
	sms := notify.NewLogSMSSender(logger)
	renderer := notify.MustNewRenderer()

	// Reminder pipeline
	queue := notify.NewQueue(queueDB)
	scheduler := notify.NewScheduler(queue, cacheClient, cfg.ReminderCron, logger, recorder)
	worker := notify.NewWorker(queue, mailer, renderer, logger, recorder)
	worker.SetBatchSize(cfg.ReminderBatchSize)
	worker.SetPollInterval(cfg.ReminderPollInterval)

	// Services
	users := service.NewUserService(repo, logger)
	memoService := service.NewMemoService(repo, logger)
	settingsService := service.NewSettingsService(repo)
	calorieService := service.NewCalorieService(service.NewCalorieStore(repo), logger)
	contactService := service.NewContactService(
		repo,
		mailer,
		sms,
		renderer,
		auth.NewLinkSigner(cfg.AlertSecret()),
		service.ContactOptions{
			FrontendURL:     cfg.FrontendURL,
			AmbulanceNumber: cfg.AmbulanceServiceNumber,
		},
		logger,
		recorder,
	)
	preferenceService := service.NewPreferenceService(repo, mailer, renderer, logger)
	soundService := service.NewSoundService(repo)
	exerciseService := service.NewExerciseService(service.NewExerciseStore(repo), logger)
	healthService := service.NewHealthService(repo, logger)
	medicationService := service.NewMedicationService(service.NewMedicationStore(repo), scheduler, logger)
	voiceService := service.NewVoiceService(
		voice.NewParser(),
		contactService,
		repo,
		healthService,
		medicationService,
		logger,
		recorder,
	)
	tips := healthtips.NewAggregator(
		healthtips.NewClient(cfg.MyHealthfinderBaseURL, cfg.MyHealthfinderRPS, healthtips.NewHTTPClient(), recorder),
		cacheClient,
		cfg.HealthTipsCacheTTL,
		logger,
		recorder,
	)

	// Handlers
	v := handler.NewValidator()
	handlers := routeHandlers{
		root:        handler.New(),
		health:      handler.NewHealthHandler(repo, cacheClient),
		metrics:     handler.NewMetricsHandler(recorder),
		memos:       handler.NewMemoHandler(memoService, v, logger),
		calories:    handler.NewCalorieHandler(calorieService, v, logger),
		settings:    handler.NewSettingsHandler(settingsService, v, logger),
		contacts:    handler.NewContactHandler(contactService, v, logger),
		preferences: handler.NewPreferenceHandler(preferenceService, cfg.EmailConfigured(), v, logger),
		sounds:      handler.NewSoundHandler(soundService, v, logger),
		exercise:    handler.NewExerciseHandler(exerciseService, v, logger),
		healthData:  handler.NewHealthDataHandler(healthService, v, logger),
		medications: handler.NewMedicationHandler(medicationService, v, logger),
		tips:        handler.NewHealthTipsHandler(tips, logger),
		voice:       handler.NewVoiceHandler(voiceService, logger),
	}

	r := setupRouter(handlers, auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience), users, cacheClient, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Hooks run LIFO: background jobs stop before the stores they use.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("reminder_queue", func(context.Context) error {
		return queueDB.Close()
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("reminder_scheduler_start_failed", "error", err)
		os.Exit(1)
	}
	srv.OnShutdown("reminder_scheduler", scheduler.Stop)

	if cfg.ReminderWorkerEnabled {
		workerCtx, stopWorker := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("reminder_worker_failed", "error", err)
			}
		}()
		srv.OnShutdown("reminder_worker", func(ctx context.Context) error {
			stopWorker()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"email_configured", cfg.EmailConfigured(),
		"reminder_worker", cfg.ReminderWorkerEnabled,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routeHandlers struct {
	root        *handler.Handler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	memos       *handler.MemoHandler
	calories    *handler.CalorieHandler
	settings    *handler.SettingsHandler
	contacts    *handler.ContactHandler
	preferences *handler.PreferenceHandler
	sounds      *handler.SoundHandler
	exercise    *handler.ExerciseHandler
	healthData  *handler.HealthDataHandler
	medications *handler.MedicationHandler
	tips        *handler.HealthTipsHandler
	voice       *handler.VoiceHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routeHandlers,
	verifier middleware.TokenVerifier,
	users middleware.UserSyncer,
	limiter middleware.RateLimiter,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Operational endpoints
	r.Get("/", h.root.Root)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:   logger,
		Verifier: verifier,
		Users:    users,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:        logger,
		Limiter:       limiter,
		Enabled:       cfg.RateLimitEnabled,
		UserPerMinute: cfg.RateLimitUserPerMinute,
		UserBurst:     cfg.RateLimitUserBurst,
		IPRPS:         cfg.RateLimitIPRPS,
		IPBurst:       cfg.RateLimitIPBurst,
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))

			r.Get("/health-tips", h.tips.Tips)
			r.Get("/health-tips/topics", h.tips.Topics)
			r.Get("/health-tips/topic/{id}", h.tips.Topic)
			r.Get("/voice-commands/commands", h.voice.Commands)
			r.Get("/emergency-contacts/verify", h.contacts.Verify)
			r.Get("/emergency-contacts/alerts/{id}/acknowledge", h.contacts.Acknowledge)
			r.Get("/notifications/health", h.preferences.NotificationsHealth)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Route("/memos", func(r chi.Router) {
				r.Get("/", h.memos.List)
				r.Get("/undone/count", h.memos.CountUndone)
				r.Post("/", h.memos.Create)
				r.Put("/{id}", h.memos.Update)
				r.Put("/{id}/done", h.memos.SetDone)
				r.Delete("/{id}", h.memos.Delete)
			})

			r.Post("/bmr-calculator/calculate", h.calories.Calculate)
			r.Get("/bmr-calculator/history", h.calories.History)
			r.Post("/calories/calculate", h.calories.Calculate)

			r.Get("/settings", h.settings.Get)
			r.Put("/settings", h.settings.Update)

			// Flat so the public verify and acknowledge routes share the tree.
			r.Get("/emergency-contacts", h.contacts.List)
			r.Post("/emergency-contacts", h.contacts.Create)
			r.Put("/emergency-contacts/{id}", h.contacts.Update)
			r.Delete("/emergency-contacts/{id}", h.contacts.Delete)
			r.Post("/emergency-contacts/alert", h.contacts.RaiseAlert)
			r.Post("/emergency-contacts/test-alert/{id}", h.contacts.SendTestAlert)
			r.Get("/emergency-contacts/alerts", h.contacts.Alerts)
			r.Put("/emergency-contacts/alerts/{id}/resolve", h.contacts.ResolveAlert)

			r.Get("/emergency-preferences", h.preferences.Emergency)
			r.Put("/emergency-preferences", h.preferences.UpdateEmergency)

			r.Route("/user-preferences/notifications", func(r chi.Router) {
				r.Get("/", h.preferences.Notifications)
				r.Put("/", h.preferences.UpdateNotifications)
				r.Post("/test", h.preferences.SendTestNotification)
			})

			r.Route("/favorite-sounds", func(r chi.Router) {
				r.Post("/", h.sounds.Add)
				r.With(middleware.RequireOwner("userId")).Get("/{userId}", h.sounds.List)
				r.With(middleware.RequireOwner("userId")).Delete("/{userId}/{soundId}", h.sounds.Remove)
			})

			r.Route("/exercise", func(r chi.Router) {
				r.Get("/stats", h.exercise.Stats)
				r.Post("/complete", h.exercise.Complete)
				r.Post("/goals", h.exercise.SetGoal)
				r.Get("/calories-history", h.exercise.CaloriesHistory)
				r.Get("/workout-history", h.exercise.WorkoutHistory)
				r.Get("/streak-history", h.exercise.StreakHistory)
			})

			r.Get("/health-metrics/latest", h.healthData.LatestMetrics)
			r.Post("/health-metrics/save", h.healthData.SaveMetrics)
			r.Get("/health-metrics/history", h.healthData.MetricsHistory)
			r.Post("/sensor-data", h.healthData.RecordReading)
			r.Get("/sensor-data/latest", h.healthData.LatestReading)

			r.Route("/medications", func(r chi.Router) {
				r.Get("/", h.medications.List)
				r.Post("/add", h.medications.Add)
				r.Post("/track", h.medications.Track)
				r.Get("/compliance", h.medications.Compliance)
				r.Put("/{id}", h.medications.Update)
				r.Delete("/{id}", h.medications.Delete)
			})

			r.Post("/voice-commands/process", h.voice.Process)
			r.Post("/voice-commands/emergency", h.voice.Emergency)
		})
	})

	r.NotFound(h.root.NotFound)
	r.MethodNotAllowed(h.root.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
