package scheduler

import (
	"context"
	"sync"
	"time"
)

// Результаты прогона для метрик
const (
	resultOK      = "ok"
	resultPartial = "partial"
	resultError   = "error"
)

// Config интервалы и флаги фоновых задач
type Config struct {
	ExpiryEnabled       bool
	ExpiryInterval      time.Duration
	PaymentPollEnabled  bool
	PaymentPollInterval time.Duration
	CompletionEnabled   bool
	CompletionInterval  time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		ExpiryEnabled:       true,
		ExpiryInterval:      5 * time.Second,
		PaymentPollEnabled:  true,
		PaymentPollInterval: 10 * time.Second,
		CompletionEnabled:   true,
		CompletionInterval:  time.Minute,
	}
}

// Scheduler фоновые задачи сверки бронирований
// Каждая задача работает в своей горутине по своему тикеру и не пересекается сама с собой
type Scheduler struct {
	cfg          Config
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	bookings     BookingService
	gateway      PaymentGateway
	metrics      MetricsCollector
	timeProvider TimeProvider
	logger       Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New создает новый планировщик
func New(
	cfg Config,
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	bookings BookingService,
	gateway PaymentGateway,
	metrics MetricsCollector,
	logger Logger,
) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		bookings:     bookings,
		gateway:      gateway,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// WithTimeProvider подменяет источник времени (используется в тестах)
func (s *Scheduler) WithTimeProvider(tp TimeProvider) *Scheduler {
	s.timeProvider = tp
	return s
}

// Start запускает включённые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.startJob(ctx, JobExpiry, s.cfg.ExpiryEnabled, s.cfg.ExpiryInterval, s.SweepExpired)
	s.startJob(ctx, JobPaymentPoll, s.cfg.PaymentPollEnabled, s.cfg.PaymentPollInterval, s.PollPayments)
	s.startJob(ctx, JobCompletion, s.cfg.CompletionEnabled, s.cfg.CompletionInterval, s.CompleteFinished)
}

// Stop останавливает задачи и ждёт завершения текущих прогонов
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.logger.Info("Scheduler: stopped")
}

func (s *Scheduler) startJob(ctx context.Context, name string, enabled bool, interval time.Duration, job func(ctx context.Context) (Report, error)) {
	if !enabled {
		s.logger.Info("Scheduler: job %s disabled", name)
		return
	}
	if interval <= 0 {
		s.logger.Warn("Scheduler: job %s has non-positive interval %s, not started", name, interval)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("Scheduler: job %s started with %s interval", name, interval)

		for {
			select {
			case <-ticker.C:
				s.run(ctx, name, job)
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// run выполняет один прогон задачи, паника в задаче не останавливает планировщик
func (s *Scheduler) run(ctx context.Context, name string, job func(ctx context.Context) (Report, error)) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncSchedulerRun(name, resultError)
			s.logger.Error("Scheduler: job %s panicked: %v", name, r)
		}
	}()

	started := time.Now()
	report, err := job(ctx)
	if err != nil {
		s.metrics.IncSchedulerRun(name, resultError)
		s.logger.Error("Scheduler: job %s failed after %d items: %v", name, report.Processed, err)
		return
	}

	result := resultOK
	if report.Failed > 0 {
		result = resultPartial
	}
	s.metrics.IncSchedulerRun(name, result)

	if report.Transitioned > 0 || report.Failed > 0 {
		s.logger.Info("Scheduler: job %s processed=%d transitioned=%d failed=%d in %s",
			name, report.Processed, report.Transitioned, report.Failed, time.Since(started))
	}
}
