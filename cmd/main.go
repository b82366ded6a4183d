package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	calculatePriceHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/calculate_price"
	cancelBookingHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/create_booking"
	createVoucherHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/create_voucher"
	createWalkHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/create_walk"
	expireVoucherHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/expire_voucher"
	getBookingHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/get_booking"
	getVoucherHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/get_voucher"
	getWalkHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/get_walk"
	getWalkBookingsHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/get_walk_bookings"
	listVouchersHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/list_vouchers"
	listWalksHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/list_walks"
	resizeWalkHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/resize_walk"
	updateWalkStatusHandler "github.com/m04kA/SMC-WalkBookingService/internal/api/handlers/update_walk_status"
	"github.com/m04kA/SMC-WalkBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-WalkBookingService/internal/config"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/locker"
	"github.com/m04kA/SMC-WalkBookingService/internal/infra/queue"
	bookingRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/booking"
	clientRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/client"
	paymentRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/payment"
	routeRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/route"
	voucherRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/voucher"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
	"github.com/m04kA/SMC-WalkBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-WalkBookingService/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-WalkBookingService/internal/service/bookings"
	capacityService "github.com/m04kA/SMC-WalkBookingService/internal/service/capacity"
	discountService "github.com/m04kA/SMC-WalkBookingService/internal/service/discount"
	vouchersService "github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers"
	walksService "github.com/m04kA/SMC-WalkBookingService/internal/service/walks"
	calculatePriceUC "github.com/m04kA/SMC-WalkBookingService/internal/usecase/calculate_price"
	createBookingUC "github.com/m04kA/SMC-WalkBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-WalkBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/logger"
	"github.com/m04kA/SMC-WalkBookingService/pkg/metrics"
	"github.com/m04kA/SMC-WalkBookingService/pkg/txmanager"
)

// eventPublisher издатель событий с закрытием соединения при остановке
type eventPublisher interface {
	Publish(ctx context.Context, event queue.Event) error
	Close() error
}

// keyLocker блокировка ваучеров
type keyLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WalkBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики; при выключенных метриках nil-коллектор ничего не пишет
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}
	stopMetricsCh := make(chan struct{})

	// Подключаемся к базе данных
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	// Настраиваем connection pool
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.Seconds(cfg.Database.ConnMaxLifetime))

	if err := sqlDB.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	db := dbmetrics.Wrap(sqlDB, metricsCollector)
	if cfg.Metrics.Enabled {
		db.StartPoolCollector(metricsCollector, config.Seconds(cfg.Metrics.PoolStatsInterval), stopMetricsCh)
		log.Info("Database pool metrics collection started")
	}
	txMgr := txmanager.NewTransactionManager(db)

	// Блокировки ваучеров
	var voucherLocker keyLocker = locker.NewLocalLocker()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}

		voucherLocker = locker.NewRedisLocker(
			redisClient,
			cfg.Redis.LockPrefix,
			config.Seconds(cfg.Redis.LockTTL),
			time.Duration(cfg.Redis.LockRetryDelayMs)*time.Millisecond,
			log,
		)
		log.Info("Redis voucher locks enabled (addr=%s)", cfg.Redis.Addr)
	} else {
		log.Warn("Redis disabled, voucher locks are local to this process")
	}

	// Публикация событий бронирований
	var publisher eventPublisher = queue.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		publisher = queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, config.Seconds(cfg.RabbitMQ.PublishTimeout), log)
		log.Info("Booking events are published to queue %s", cfg.RabbitMQ.Queue)
	}
	defer publisher.Close()

	// Платёжная система
	gateway := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL:   cfg.PaymentGateway.BaseURL,
		ShopID:    cfg.PaymentGateway.ShopID,
		SecretKey: cfg.PaymentGateway.SecretKey,
		Currency:  cfg.PaymentGateway.Currency,
		ReturnURL: cfg.PaymentGateway.ReturnURL,
		Timeout:   config.Seconds(cfg.PaymentGateway.Timeout),
	}, log)
	log.Info("Payment gateway client initialized (url=%s, timeout=%ds)",
		cfg.PaymentGateway.BaseURL, cfg.PaymentGateway.Timeout)

	// Репозитории
	walkRepository := walkRepo.NewRepository(db)
	routeRepository := routeRepo.NewRepository(db)
	clientRepository := clientRepo.NewRepository(db)
	bookingRepository := bookingRepo.NewRepository(db)
	paymentRepository := paymentRepo.NewRepository(db)
	voucherRepository := voucherRepo.NewRepository(db)

	// Сервисы
	capacitySvc := capacityService.NewService(walkRepository, metricsCollector, log, cfg.Booking.CapacityMaxRetries)

	discountSvc := discountService.NewManager(
		voucherRepository,
		bookingRepository,
		voucherLocker,
		discountService.Settings{
			GroupEnabled:     cfg.Discounts.GroupEnabled,
			GroupMinPlaces:   cfg.Discounts.GroupMinPlaces,
			GroupPercent:     cfg.Discounts.GroupPercent,
			GroupAbsolute:    cfg.Discounts.GroupAbsolute,
			RepeatedEnabled:  cfg.Discounts.RepeatedEnabled,
			RepeatedPercent:  cfg.Discounts.RepeatedPercent,
			RepeatedAbsolute: cfg.Discounts.RepeatedAbsolute,
		},
		metricsCollector,
		log,
	).WithLockWait(config.Seconds(cfg.Booking.VoucherLockWait))

	walkSvc := walksService.NewService(walkRepository, routeRepository, capacitySvc, log)
	voucherSvc := vouchersService.NewService(voucherRepository, log)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		paymentRepository,
		capacitySvc,
		publisher,
		metricsCollector,
		txMgr,
		log,
	)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(createBookingUC.Dependencies{
		WalkRepo:    walkRepository,
		RouteRepo:   routeRepository,
		ClientRepo:  clientRepository,
		BookingRepo: bookingRepository,
		PaymentRepo: paymentRepository,
		Capacity:    capacitySvc,
		Discounts:   discountSvc,
		Gateway:     gateway,
		Publisher:   publisher,
		Metrics:     metricsCollector,
		TxManager:   txMgr,
		Logger:      log,
	}, time.Duration(cfg.Booking.LifetimeMinutes)*time.Minute)

	calculatePriceUseCase := calculatePriceUC.NewUseCase(walkRepository, discountSvc, log)

	// Фоновые задачи сверки
	jobs := scheduler.New(
		scheduler.Config{
			ExpiryEnabled:       cfg.Scheduler.ExpiryEnabled,
			ExpiryInterval:      config.Seconds(cfg.Scheduler.ExpiryInterval),
			PaymentPollEnabled:  cfg.Scheduler.PaymentPollEnabled,
			PaymentPollInterval: config.Seconds(cfg.Scheduler.PaymentPollInterval),
			CompletionEnabled:   cfg.Scheduler.CompletionEnabled,
			CompletionInterval:  config.Seconds(cfg.Scheduler.CompletionInterval),
		},
		bookingRepository,
		paymentRepository,
		bookingSvc,
		gateway,
		metricsCollector,
		log,
	)

	// Handlers
	createWalk := createWalkHandler.NewHandler(walkSvc, log)
	listWalks := listWalksHandler.NewHandler(walkSvc, log)
	getWalk := getWalkHandler.NewHandler(walkSvc, log)
	updateWalkStatus := updateWalkStatusHandler.NewHandler(walkSvc, log)
	resizeWalk := resizeWalkHandler.NewHandler(walkSvc, log)
	getWalkBookings := getWalkBookingsHandler.NewHandler(bookingSvc, log)

	createVoucher := createVoucherHandler.NewHandler(voucherSvc, log)
	listVouchers := listVouchersHandler.NewHandler(voucherSvc, log)
	getVoucher := getVoucherHandler.NewHandler(voucherSvc, log)
	expireVoucher := expireVoucherHandler.NewHandler(voucherSvc, log)

	calculatePrice := calculatePriceHandler.NewHandler(calculatePriceUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Прогулки ---
	api.HandleFunc("/walks", createWalk.Handle).Methods(http.MethodPost)
	api.HandleFunc("/walks", listWalks.Handle).Methods(http.MethodGet)
	api.HandleFunc("/walks/{walkId}", getWalk.Handle).Methods(http.MethodGet)
	api.HandleFunc("/walks/{walkId}/status", updateWalkStatus.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/walks/{walkId}/capacity", resizeWalk.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/walks/{walkId}/bookings", getWalkBookings.Handle).Methods(http.MethodGet)

	// --- Ваучеры ---
	api.HandleFunc("/vouchers", createVoucher.Handle).Methods(http.MethodPost)
	api.HandleFunc("/vouchers", listVouchers.Handle).Methods(http.MethodGet)
	api.HandleFunc("/vouchers/{code}", getVoucher.Handle).Methods(http.MethodGet)
	api.HandleFunc("/vouchers/{code}/expire", expireVoucher.Handle).Methods(http.MethodPatch)

	// --- Бронирования ---
	api.HandleFunc("/prices/calculate", calculatePrice.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.Server.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.Server.IdleTimeout),
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	jobs.Start(jobsCtx)
	log.Info("Scheduler started")

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Фоновые задачи останавливаем после HTTP сервера
	stopJobs()
	jobs.Stop()
	log.Info("Scheduler stopped")

	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
