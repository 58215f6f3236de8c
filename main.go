// File: slotbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotbook/config"
	"slotbook/cron"
	"slotbook/database"
	availabilityRepo "slotbook/database/repository/availability"
	bookingRepo "slotbook/database/repository/booking"
	catalogRepo "slotbook/database/repository/catalog"
	userRepoPkg "slotbook/database/repository/user"
	"slotbook/handlers"
	"slotbook/middleware"
	"slotbook/routes"
	"slotbook/services/booking"
	"slotbook/services/geocoding"
	"slotbook/services/notification"
	"slotbook/services/payment"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if err := utils.RegisterValidators(); err != nil {
		logger.Sugar().Fatalf("main: failed to register validators: %v", err)
	}

	database.InitDB()
	utils.InitCache()
	utils.InitPubSub()
	stripe.Key = config.AppConfig.StripeKey

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	fcmClient, err := utils.FirebaseInit(rootCtx)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// repositories.
	db := database.DB()
	availRepo := availabilityRepo.NewMongoAvailabilityRepo(db)
	bookRepo := bookingRepo.NewMongoBookingRepo(db)
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	catRepo := catalogRepo.NewMongoCatalogRepo(db)

	indexCtx, cancelIndexes := context.WithTimeout(rootCtx, 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"availability": availRepo.EnsureIndexes,
		"bookings":     bookRepo.EnsureIndexes,
		"users":        userRepo.EnsureIndexes,
		"services":     catRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			logger.Sugar().Fatalf("main: failed to create %s indexes: %v", name, err)
		}
	}
	cancelIndexes()

	metrics := utils.NewMetrics(prometheus.DefaultRegisterer)
	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.CacheClient, utils.PubSubClient}, database.MongoClient)

	// notifications.
	hub := notification.NewHub(utils.PubSubClient, logger.Named("hub"))
	go hub.Run()
	publishers := notification.MultiPublisher{hub}
	if fcmClient != nil {
		publishers = append(publishers, notification.NewFCMPublisher(fcmClient, userRepo))
	}
	emitter := notification.NewEmitter(publishers, logger.Named("notify"), metrics)

	// services.
	stripeService := payment.NewStripeService(config.AppConfig.StripeWebhookSecret)
	bookingService := &booking.DefaultBookingService{
		Bookings:           bookRepo,
		Availability:       availRepo,
		Users:              userRepo,
		Catalog:            catRepo,
		Transactions:       database.NewMongoTransactor(database.MongoClient),
		Notifier:           emitter,
		Checkout:           stripeService,
		Cache:              booking.NewRedisAvailabilityCache(utils.CacheClient, time.Duration(config.AppConfig.AvailabilityTTL)*time.Second, logger),
		Metrics:            metrics,
		Logger:             logger.Named("booking"),
		CheckoutSuccessURL: config.AppConfig.StripeSuccessURL,
		CheckoutCancelURL:  config.AppConfig.StripeCancelURL,
		CheckoutCurrency:   config.AppConfig.StripeCurrency,
	}
	if config.AppConfig.GoogleAPIKey != "" {
		bookingService.Geocoder = geocoding.NewGoogleGeocoder(config.AppConfig.GoogleAPIKey)
	} else {
		logger.Warn("main: GOOGLE_API_KEY not set, booking locations will not be geocoded")
	}

	// background reconciliation.
	queueOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
	queueClient := asynq.NewClient(queueOpt)
	defer queueClient.Close()
	stopWorker, err := cron.InitReconcileWorker(queueOpt, &cron.ReconcileWorker{
		Service:       bookingService,
		Claimed:       availRepo,
		Booked:        bookRepo,
		Enqueuer:      queueClient,
		LookaheadDays: config.AppConfig.ReconcileLookaheadDays,
		Logger:        logger.Named("reconcile"),
	}, config.AppConfig.ReconcileCron)
	if err != nil {
		logger.Error("main: reconciliation disabled", zap.Error(err))
		stopWorker = func() {}
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService),
		Payment: handlers.NewPaymentHandler(bookingService, stripeService),
		Socket:  handlers.NewSocketHandler(hub, nil),
		Device:  handlers.NewDeviceHandler(userRepo),
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stopWorker()
	hub.Shutdown()
	stopBackground()
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
