package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medbook/config"
	"medbook/cron"
	"medbook/database"
	bookingRepo "medbook/database/repository/booking"
	catalogRepo "medbook/database/repository/catalog"
	contactRepo "medbook/database/repository/contact"
	"medbook/database/repository/memory"
	scheduleRepo "medbook/database/repository/schedule"
	userRepoPkg "medbook/database/repository/user"
	"medbook/handlers"
	"medbook/middleware"
	"medbook/routes"
	"medbook/services/admin"
	"medbook/services/booking"
	"medbook/services/catalog"
	"medbook/services/contact"
	"medbook/services/notification"
	"medbook/services/payment"
	"medbook/services/schedule"
	"medbook/services/storage"
	"medbook/services/tasks"
	"medbook/services/user"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// repositories is the storage the services run on.
type repositories struct {
	users       userRepoPkg.UserRepository
	specialties catalogRepo.SpecialtyRepository
	clinics     catalogRepo.ClinicRepository
	doctors     catalogRepo.DoctorRepository
	schedules   scheduleRepo.ScheduleRepository
	bookings    bookingRepo.BookingRepository
	contacts    contactRepo.ContactRepository
}

func openRepositories(logger *zap.Logger) (repositories, utils.Pinger) {
	if config.AppConfig.StorageDriver == "memory" {
		logger.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:       store.Users(),
			specialties: store.Specialties(),
			clinics:     store.Clinics(),
			doctors:     store.Doctors(),
			schedules:   store.Schedules(),
			bookings:    store.Bookings(),
			contacts:    store.Contacts(),
		}, nil
	}

	db, err := database.InitDB(logger)
	if err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	ping := utils.PingFunc(func(ctx context.Context) error {
		return db.Client().Ping(ctx, nil)
	})
	return repositories{
		users:       userRepoPkg.NewMongoUserRepo(db, logger),
		specialties: catalogRepo.NewMongoSpecialtyRepo(db, logger),
		clinics:     catalogRepo.NewMongoClinicRepo(db, logger),
		doctors:     catalogRepo.NewMongoDoctorRepo(db, logger),
		schedules:   scheduleRepo.NewMongoScheduleRepo(db, logger),
		bookings:    bookingRepo.NewMongoBookingRepo(db, logger),
		contacts:    contactRepo.NewMongoContactRepo(db),
	}, ping
}

// openCache returns a Redis-backed cache on db, or a process-local one when
// Redis is unreachable.
func openCache(logger *zap.Logger, db int, prefix string) (utils.Cache, utils.Pinger) {
	client, err := utils.NewRedisClient(db)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process cache", zap.Int("db", db), zap.Error(err))
		return utils.NewMemoryCache(), nil
	}
	ping := utils.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return utils.NewRedisCache(client, prefix), ping
}

func newNotifier(ctx context.Context, logger *zap.Logger, users userRepoPkg.UserRepository) notification.Notifier {
	if config.AppConfig.FirebaseCredentials == "" {
		logger.Info("Firebase credentials not set, push notifications are logged only")
		return notification.LogNotifier{}
	}
	client, err := utils.FirebaseMessaging(ctx, config.AppConfig.FirebaseCredentials)
	if err != nil {
		logger.Error("main: failed to initialize firebase, push notifications are logged only", zap.Error(err))
		return notification.LogNotifier{}
	}
	return notification.NewFCMNotifier(users, client)
}

func newStorage(logger *zap.Logger) storage.StorageService {
	if config.AppConfig.CloudinaryURL == "" {
		logger.Info("Cloudinary not configured, image uploads are disabled")
		return storage.NewStorageService(nil)
	}
	cld, err := utils.Cloudinary(config.AppConfig.CloudinaryURL)
	if err != nil {
		logger.Error("main: failed to initialize cloudinary storage service", zap.Error(err))
		return storage.NewStorageService(nil)
	}
	return storage.NewStorageService(cld)
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	secret := config.AppConfig.JWTSecret
	if secret == "" {
		if config.IsProduction() {
			logger.Fatal("main: JWT_SECRET must be set in production")
		}
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	stripe.Key = config.AppConfig.StripeKey

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// repositories.
	repos, dbPing := openRepositories(logger)
	cache, cachePing := openCache(logger, config.AppConfig.RedisCacheDB, "cache:")
	authCache, _ := openCache(logger, config.AppConfig.RedisAuthDB, "auth:")

	tokens := utils.NewTokenIssuer(secret, config.AppConfig.JWTTTL)
	denyList := utils.NewTokenDenyList(authCache)
	loc := config.Location()

	// services.
	catalogService := &catalog.DefaultCatalogService{
		Specialties: repos.specialties,
		Clinics:     repos.clinics,
		Doctors:     repos.doctors,
		Users:       repos.users,
		Schedules:   repos.schedules,
		Cache:       cache,
	}
	userService := &user.DefaultUserService{
		Repo:     repos.users,
		Doctors:  catalogService,
		Tokens:   tokens,
		DenyList: denyList,
	}
	if err := userService.SeedAdmin(rootCtx, config.AppConfig.AdminPhone, config.AppConfig.AdminPassword); err != nil {
		logger.Error("main: failed to seed admin account", zap.Error(err))
	}
	scheduleService := schedule.NewScheduleService(repos.schedules, repos.doctors, loc)

	// Delayed jobs go through asynq when the queue database is reachable.
	var (
		jobs        tasks.Scheduler = tasks.NoopScheduler{}
		asynqClient *asynq.Client
	)
	if queueClient, err := utils.NewRedisClient(config.AppConfig.RedisQueueDB); err != nil {
		logger.Warn("Job queue unavailable, pending bookings expire through the sweep only", zap.Error(err))
	} else {
		queueClient.Close()
		asynqClient = asynq.NewClient(cron.QueueRedisOpt())
		jobs = &tasks.AsynqScheduler{Client: asynqClient}
	}

	bookingService := booking.NewBookingService(
		repos.bookings,
		repos.schedules,
		repos.doctors,
		repos.users,
		catalogService,
		newNotifier(rootCtx, logger, repos.users),
		jobs,
		booking.Config{
			PendingTTL:         config.AppConfig.BookingPendingTTL,
			MaxScheduleChanges: config.AppConfig.MaxScheduleChanges,
			Location:           loc,
		},
	)

	paymentService := payment.NewPaymentService(
		bookingService,
		payment.NewVNPaySigner(payment.VNPayConfig{
			TmnCode:     config.AppConfig.VNPayTmnCode,
			HashSecret:  config.AppConfig.VNPayHashSecret,
			PayURL:      config.AppConfig.VNPayURL,
			ReturnURL:   config.AppConfig.VNPayReturnURL,
			ExpireAfter: config.AppConfig.BookingPendingTTL,
		}),
		payment.NewStripeGateway(payment.StripeConfig{
			WebhookSecret: config.AppConfig.StripeWebhookSecret,
			SuccessURL:    config.AppConfig.StripeSuccessURL,
			CancelURL:     config.AppConfig.StripeCancelURL,
		}, nil),
	)

	contactService := &contact.DefaultContactService{Repo: repos.contacts}
	adminService := &admin.DefaultAdminService{
		Users:       repos.users,
		Doctors:     repos.doctors,
		Specialties: repos.specialties,
		Clinics:     repos.clinics,
		Schedules:   repos.schedules,
		Bookings:    repos.bookings,
	}

	// background work.
	stopWorker := func() {}
	if asynqClient != nil {
		stopWorker = cron.InitBookingWorker(bookingService)
	}
	go cron.StartExpirySweep(rootCtx, bookingService, time.Minute)

	targets := map[string]utils.Pinger{}
	if dbPing != nil {
		targets["mongodb"] = dbPing
	}
	if cachePing != nil {
		targets["redis"] = cachePing
	}
	health := utils.NewHealthMonitor(targets)
	health.Start(rootCtx, 30*time.Second)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(utils.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		Tokens:    tokens,
		DenyList:  denyList,
		Health:    health,
		Users:     handlers.NewUserHandler(userService),
		Catalog:   handlers.NewCatalogHandler(catalogService),
		Schedules: handlers.NewScheduleHandler(scheduleService),
		Bookings:  handlers.NewBookingHandler(bookingService),
		Payments:  handlers.NewPaymentHandler(paymentService),
		Storage:   handlers.NewStorageHandler(newStorage(logger), catalogService),
		Contacts:  handlers.NewContactHandler(contactService),
		Admin:     handlers.NewAdminHandler(adminService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "6868"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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
	stopBackground()
	stopWorker()
	if asynqClient != nil {
		asynqClient.Close()
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect from MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
