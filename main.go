package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"fixit/config"
	"fixit/cron"
	"fixit/database"
	bookingRepo "fixit/database/repository/booking"
	conversationRepo "fixit/database/repository/conversation"
	userRepoPkg "fixit/database/repository/user"
	"fixit/handlers"
	"fixit/middleware"
	"fixit/models"
	"fixit/routes"
	"fixit/services/booking"
	"fixit/services/chat"
	"fixit/services/mirror"
	"fixit/services/notification"
	"fixit/services/payment"
	"fixit/services/storage"
	"fixit/services/user"
	"fixit/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	var (
		users         userRepoPkg.UserRepository
		bookings      bookingRepo.BookingRepository
		conversations conversationRepo.ConversationRepository
		mongoClient   *mongo.Client
	)
	if config.UsesMemoryStore() {
		logger.Warn("main: using the in-process store, data is lost on restart")
		users = userRepoPkg.NewMemoryUserRepo()
		bookings = bookingRepo.NewMemoryBookingRepo()
		conversations = conversationRepo.NewMemoryConversationRepo()
	} else {
		database.InitDB()
		mongoClient = database.MongoClient
		db := database.Database()
		users = userRepoPkg.NewMongoUserRepo(db)
		bookings = bookingRepo.NewMongoBookingRepo(db)
		conversations = conversationRepo.NewMongoConversationRepo(db)
	}

	// redis-backed stores, or in-process ones when no redis is configured.
	var sessions user.SessionStore = user.NewMemorySessionStore()
	var idempotency booking.IdempotencyStore = booking.NewMemoryIdempotencyStore()
	redisClients := map[string]*redis.Client{}
	useRedis := config.AppConfig.RedisAddr != "" && !config.UsesMemoryStore()
	if useRedis {
		utils.InitRedis()
		sessions = &user.RedisSessionStore{Client: utils.GetAuthCacheClient()}
		idempotency = &booking.RedisIdempotencyStore{Client: utils.GetCacheClient()}
		redisClients["cache"] = utils.GetCacheClient()
		redisClients["auth"] = utils.GetAuthCacheClient()
	}

	// mirrors.
	retryDelay := config.AppConfig.SyncRetryDelay
	bookingMirror := mirror.New[models.Booking]("bookings", bookings, retryDelay, logger)
	conversationMirror := mirror.New[models.Conversation]("conversations", conversations, retryDelay, logger)
	bookingMirror.Start(rootCtx)
	conversationMirror.Start(rootCtx)

	// payments.
	var gateway payment.Gateway
	if config.AppConfig.PaymentGateway == "stripe" {
		gateway = payment.NewStripeGateway(config.AppConfig.StripeKey, config.AppConfig.PaymentCurrency)
	} else {
		logger.Info("main: using the simulated payment gateway")
		gateway = payment.NewSimulatedGateway()
	}

	// push notifications.
	var dispatcher notification.Dispatcher = &notification.LogDispatcher{Logger: logger}
	var (
		pushWorker  *asynq.Server
		queueClient *asynq.Client
	)
	if fcm, err := utils.FirebaseInit(rootCtx); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else {
		notifSvc := &notification.DefaultNotificationService{Users: users, Client: fcm}
		if useRedis {
			queueClient = asynq.NewClient(cron.QueueRedisOpt())
			dispatcher = &notification.QueueDispatcher{Client: queueClient, Logger: logger}
			pushWorker = cron.InitPushWorker(rootCtx, notifSvc)
		} else {
			dispatcher = &notification.InlineDispatcher{Service: notifSvc, Logger: logger}
		}
	}

	// media.
	var avatars storage.StorageService = storage.DisabledStorage{}
	if cld, err := storage.NewCloudinaryStorage(config.AppConfig.CloudinaryURL); err != nil {
		logger.Warn("main: avatar uploads disabled", zap.Error(err))
	} else {
		avatars = cld
	}

	// services.
	userService := &user.DefaultUserService{
		Repo:     users,
		Sessions: sessions,
		Hub:      user.NewSessionHub(),
		TokenTTL: config.AppConfig.TokenTTL,
	}
	bookingService := &booking.DefaultBookingService{
		Repo:        bookings,
		Users:       users,
		Payments:    gateway,
		Mirror:      bookingMirror,
		Notifier:    dispatcher,
		Idempotency: idempotency,
		Location:    config.Location(),
		Logger:      logger.With(zap.String("service", "booking")),
	}
	chatService := &chat.DefaultChatService{
		Repo:     conversations,
		Users:    users,
		Mirror:   conversationMirror,
		Notifier: dispatcher,
		Logger:   logger.With(zap.String("service", "chat")),
	}

	utils.StartHealthMonitor(rootCtx, redisClients, mongoClient)

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	storageHandler := handlers.NewStorageHandler(avatars, userService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	chatHandler := handlers.NewChatHandler(chatService)
	streamHandler := handlers.NewStreamHandler(userService, bookingService, chatService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AuthMiddleware: middleware.JWTAuthMiddleware(userService),
		HealthHandler:  handlers.HealthHandler,

		SignUpHandler:  authHandler.SignUpHandler,
		SignInHandler:  authHandler.SignInHandler,
		SignOutHandler: authHandler.SignOutHandler,

		GetMeHandler:         userHandler.GetMeHandler,
		UpdateMeHandler:      userHandler.UpdateMeHandler,
		UploadAvatarHandler:  storageHandler.UploadAvatarHandler,
		ListProvidersHandler: userHandler.ListProvidersHandler,
		GetProviderHandler:   userHandler.GetProviderHandler,

		ListSlotsHandler:        bookingHandler.ListSlotsHandler,
		CreateBookingHandler:    bookingHandler.CreateBookingHandler,
		ListBookingsHandler:     bookingHandler.ListBookingsHandler,
		UpdateStatusHandler:     bookingHandler.UpdateStatusHandler,
		ProviderEarningsHandler: bookingHandler.ProviderEarningsHandler,

		StartConversationHandler: chatHandler.StartConversationHandler,
		ListConversationsHandler: chatHandler.ListConversationsHandler,
		GetConversationHandler:   chatHandler.GetConversationHandler,
		SendMessageHandler:       chatHandler.SendMessageHandler,
		MarkReadHandler:          chatHandler.MarkReadHandler,

		StreamHandler: streamHandler.StreamHandler,
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
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
	stop()

	if pushWorker != nil {
		pushWorker.Shutdown()
	}
	if queueClient != nil {
		_ = queueClient.Close()
	}
	if mongoClient != nil {
		if err := database.Close(ctx); err != nil {
			logger.Warn("main: failed to close mongo client", zap.Error(err))
		}
	}
	_ = logger.Sync()
	logger.Sugar().Info("main: server stopped gracefully")
}
