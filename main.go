package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"dialoguecafe/config"
	"dialoguecafe/cron"
	"dialoguecafe/database"
	bookingRepoPkg "dialoguecafe/database/repository/booking"
	menuRepoPkg "dialoguecafe/database/repository/menu"
	"dialoguecafe/handlers"
	"dialoguecafe/middleware"
	"dialoguecafe/routes"
	"dialoguecafe/services/assistant"
	bookingsvc "dialoguecafe/services/booking"
	"dialoguecafe/services/confirmation"
	"dialoguecafe/services/dictation"
	"dialoguecafe/services/notification"
	"dialoguecafe/services/prefs"
	"dialoguecafe/services/tasks"
	"dialoguecafe/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	menuRepo := menuRepoPkg.NewMongoMenuRepo()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := bookingRepo.EnsureIndexes(ctx); err != nil {
			logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
		}
		cancel()
	}

	// Email delivery: SendGrid when configured, logging otherwise.
	var sender notification.EmailSender
	if sg := notification.NewSendGridSender(
		config.AppConfig.SendGridAPIKey,
		config.AppConfig.EmailFrom,
		config.AppConfig.EmailFromName,
		logger,
	); sg != nil {
		sender = sg
	} else {
		sender = &notification.LogSender{Logger: logger}
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	notifier := tasks.NewNotifier(redisOpt, logger)
	defer notifier.Close()

	emailWorker := cron.InitEmailWorker(redisOpt, sender, bookingRepo, logger)

	// Services.
	bookingService := &bookingsvc.DefaultBookingService{
		Repo:        bookingRepo,
		CacheClient: utils.GetCacheClient(),
		Notifier:    notifier,
		Logger:      logger,
	}

	ctxStore := assistant.NewRedisContextStore(utils.GetAssistantCacheClient(), 30*time.Minute)
	assistantService := &assistant.DefaultAssistantService{
		CtxStore:   ctxStore,
		BookingSvc: bookingService,
		Logger:     logger,
	}
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gemini, err := assistant.NewGeminiClient(key)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
		}
		assistantService.Gemini = gemini
	}

	prefsStore := prefs.NewRedisStore(utils.GetPrefsClient())

	// The confirmation flow submits through the booking API like any other
	// client, so the flow exercises the same validation and idempotency path.
	submitTimeout := time.Duration(config.AppConfig.SubmitTimeoutSeconds) * time.Second
	submitter := confirmation.NewHTTPSubmitter(config.AppConfig.BookingAPIURL, submitTimeout, logger)

	var speechProvider dictation.Provider = dictation.Unavailable{}
	if config.AppConfig.GoogleServiceAccountFile != "" {
		speechProvider = &dictation.GoogleProvider{
			CredentialsFile: config.AppConfig.GoogleServiceAccountFile,
		}
	}

	registry := confirmation.NewRegistry(30*time.Minute, logger)
	defer registry.Shutdown()

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Confirmation: handlers.NewConfirmationHandler(registry, speechProvider, config.AppConfig.DefaultLocale, submitter, logger),
		Booking:      handlers.NewBookingHandler(bookingService, logger),
		Assistant:    handlers.NewAssistantHandler(assistantService, logger),
		Prefs:        handlers.NewPrefsHandler(prefsStore, logger),
		Menu:         handlers.NewMenuHandler(menuRepo, logger),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	emailWorker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
