package capacity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
)

const (
	// DefaultMaxRetries количество попыток сохранить изменение при конфликте
	DefaultMaxRetries = 10

	// retryBaseDelay базовая пауза между попытками изменить вместимость
	retryBaseDelay = 5 * time.Millisecond
)

// Service учёт мест прогулки
// Резерв и возврат мест выполняются одним условным UPDATE, вместимость меняется через проверку версии
type Service struct {
	walkRepo   WalkRepository
	metrics    MetricsCollector
	logger     Logger
	maxRetries int
	retryDelay time.Duration
}

// NewService создает новый экземпляр сервиса учёта мест
func NewService(walkRepo WalkRepository, metrics MetricsCollector, logger Logger, maxRetries int) *Service {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Service{
		walkRepo:   walkRepo,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: retryBaseDelay,
	}
}

// Reserve резервирует count мест на прогулке
// Статус прогулки и остаток мест проверяются в том же UPDATE, который их меняет
func (s *Service) Reserve(ctx context.Context, walkID int64, count int) (*domain.Walk, error) {
	walk, err := s.shift(ctx, "Reserve", walkID, count, s.walkRepo.ReservePlaces, func(w *domain.Walk) error {
		return w.Reserve(count)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reserve: walk id=%d reserved=%d, available=%d/%d",
		walkID, count, walk.AvailablePlaces, walk.MaxPlaces)
	return walk, nil
}

// Release возвращает count мест на прогулку
func (s *Service) Release(ctx context.Context, walkID int64, count int) (*domain.Walk, error) {
	walk, err := s.shift(ctx, "Release", walkID, count, s.walkRepo.ReleasePlaces, func(w *domain.Walk) error {
		return w.Release(count)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Release: walk id=%d released=%d, available=%d/%d",
		walkID, count, walk.AvailablePlaces, walk.MaxPlaces)
	return walk, nil
}

// Resize меняет максимальное количество мест прогулки
// Между попытками при конфликте версий выдерживается растущая пауза со случайной добавкой
func (s *Service) Resize(ctx context.Context, walkID int64, newMax int) (*domain.Walk, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		walk, err := s.get(ctx, "Resize", walkID)
		if err != nil {
			return nil, err
		}

		if err := walk.Resize(newMax); err != nil {
			return nil, s.mapDomainError("Resize", walkID, err)
		}

		err = s.walkRepo.UpdateCapacity(ctx, walk)
		if err == nil {
			s.logger.Info("Resize: walk id=%d max=%d, available=%d", walkID, walk.MaxPlaces, walk.AvailablePlaces)
			return walk, nil
		}
		if !errors.Is(err, walkRepo.ErrVersionConflict) {
			s.logger.Error("Resize: failed to update walk id=%d: %v", walkID, err)
			return nil, fmt.Errorf("%w: Resize - update walk: %v", ErrInternal, err)
		}

		s.metrics.IncCapacityConflict()
		s.logger.Warn("Resize: version conflict on walk id=%d, attempt %d/%d", walkID, attempt, s.maxRetries)

		if err := s.pause(ctx, attempt); err != nil {
			return nil, fmt.Errorf("%w: Resize - %v", ErrInternal, err)
		}
	}

	s.logger.Error("Resize: gave up on walk id=%d after %d attempts", walkID, s.maxRetries)
	return nil, fmt.Errorf("%w: walk id=%d", ErrConcurrentUpdate, walkID)
}

// shift выполняет условное изменение мест
// Если условие не выполнилось, причина определяется по текущему состоянию прогулки.
// Повтор нужен только когда места освободились между UPDATE и чтением
func (s *Service) shift(
	ctx context.Context,
	op string,
	walkID int64,
	count int,
	update func(ctx context.Context, id int64, count int) (*domain.Walk, error),
	check func(w *domain.Walk) error,
) (*domain.Walk, error) {
	if count <= 0 {
		return nil, ErrInvalidPlaces
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		walk, err := update(ctx, walkID, count)
		if err == nil {
			return walk, nil
		}
		if !errors.Is(err, walkRepo.ErrConditionNotMet) {
			s.logger.Error("%s: failed to update walk id=%d: %v", op, walkID, err)
			return nil, fmt.Errorf("%w: %s - update walk: %v", ErrInternal, op, err)
		}

		current, err := s.get(ctx, op, walkID)
		if err != nil {
			return nil, err
		}
		if err := check(current); err != nil {
			return nil, s.mapDomainError(op, walkID, err)
		}

		s.metrics.IncCapacityConflict()
		s.logger.Warn("%s: walk id=%d changed concurrently, attempt %d/%d", op, walkID, attempt, s.maxRetries)
	}

	s.logger.Error("%s: gave up on walk id=%d after %d attempts", op, walkID, s.maxRetries)
	return nil, fmt.Errorf("%w: walk id=%d", ErrConcurrentUpdate, walkID)
}

func (s *Service) get(ctx context.Context, op string, walkID int64) (*domain.Walk, error) {
	walk, err := s.walkRepo.GetByID(ctx, walkID)
	if err != nil {
		if errors.Is(err, walkRepo.ErrWalkNotFound) {
			s.logger.Warn("%s: walk id=%d not found", op, walkID)
			return nil, ErrWalkNotFound
		}
		s.logger.Error("%s: failed to get walk id=%d: %v", op, walkID, err)
		return nil, fmt.Errorf("%w: %s - get walk: %v", ErrInternal, op, err)
	}
	return walk, nil
}

func (s *Service) pause(ctx context.Context, attempt int) error {
	delay := s.retryDelay*time.Duration(attempt) + time.Duration(rand.Int64N(int64(s.retryDelay)+1))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) mapDomainError(op string, walkID int64, err error) error {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		s.logger.Warn("%s: walk id=%d: %v", op, walkID, err)
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	case errors.Is(err, domain.ErrWalkNotOpen):
		s.logger.Warn("%s: walk id=%d: %v", op, walkID, err)
		return fmt.Errorf("%w: %v", ErrWalkNotOpen, err)
	case errors.Is(err, domain.ErrInvalidCapacity):
		s.logger.Warn("%s: walk id=%d: %v", op, walkID, err)
		return fmt.Errorf("%w: %v", ErrInvalidCapacity, err)
	case errors.Is(err, domain.ErrInvalidPlaces):
		return ErrInvalidPlaces
	case errors.Is(err, domain.ErrInvariantViolation):
		s.logger.Error("%s: walk id=%d: %v", op, walkID, err)
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	default:
		s.logger.Error("%s: walk id=%d: unexpected error: %v", op, walkID, err)
		return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
	}
}
