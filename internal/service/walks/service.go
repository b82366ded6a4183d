package walks

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	routeRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/route"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/capacity"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/walks/models"
)

// statusUpdateAttempts количество попыток смены статуса при конфликте версий
const statusUpdateAttempts = 5

// Service сервис администрирования прогулок
type Service struct {
	walkRepo  WalkRepository
	routeRepo RouteRepository
	capacity  CapacityService
	logger    Logger
}

// NewService создает новый экземпляр сервиса прогулок
func NewService(walkRepo WalkRepository, routeRepo RouteRepository, capacity CapacityService, logger Logger) *Service {
	return &Service{
		walkRepo:  walkRepo,
		routeRepo: routeRepo,
		capacity:  capacity,
		logger:    logger,
	}
}

// Create создает прогулку в статусе DRAFT
// Если цена не передана, используется цена маршрута
func (s *Service) Create(ctx context.Context, req *models.CreateWalkRequest) (*models.WalkResponse, error) {
	s.logger.Info("CreateWalk: route=%d, maxPlaces=%d, start=%s", req.RouteID, req.MaxPlaces, req.StartTime.Format(domain.DateTimeFormat))

	route, err := s.routeRepo.GetByID(ctx, req.RouteID)
	if err != nil {
		if errors.Is(err, routeRepo.ErrRouteNotFound) {
			s.logger.Warn("CreateWalk: route id=%d not found", req.RouteID)
			return nil, ErrRouteNotFound
		}
		s.logger.Error("CreateWalk: failed to get route id=%d: %v", req.RouteID, err)
		return nil, fmt.Errorf("%w: CreateWalk - get route: %v", ErrInternal, err)
	}

	price := route.PriceForOne
	if req.PriceForOne != nil {
		price = *req.PriceForOne
	}

	walk, err := domain.NewWalk(route.ID, req.MaxPlaces, price, req.StartTime, req.DurationMinutes)
	if err != nil {
		s.logger.Warn("CreateWalk: invalid walk: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.walkRepo.Create(ctx, walk)
	if err != nil {
		s.logger.Error("CreateWalk: failed to create walk: %v", err)
		return nil, fmt.Errorf("%w: CreateWalk - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateWalk: successfully created walk id=%d", created.ID)
	return models.FromDomainWalk(created), nil
}

// GetByID получает прогулку по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.WalkResponse, error) {
	walk, err := s.get(ctx, "GetWalk", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainWalk(walk), nil
}

// ListOpen получает прогулки, открытые для бронирования
func (s *Service) ListOpen(ctx context.Context) (*models.WalkListResponse, error) {
	walks, err := s.walkRepo.ListByStatus(ctx, []domain.WalkStatus{domain.WalkStatusBookingInProgress})
	if err != nil {
		s.logger.Error("ListOpen: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListOpen - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListOpen: fetched %d open walks", len(walks))
	return models.FromDomainWalkList(walks), nil
}

// UpdateStatus переводит прогулку в новый статус по машине состояний
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.WalkResponse, error) {
	next := domain.WalkStatus(req.Status)
	if !next.IsValid() {
		s.logger.Warn("UpdateWalkStatus: unknown status=%s", req.Status)
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	for attempt := 1; attempt <= statusUpdateAttempts; attempt++ {
		walk, err := s.get(ctx, "UpdateWalkStatus", id)
		if err != nil {
			return nil, err
		}

		from := walk.Status
		if err := walk.TransitionTo(next); err != nil {
			s.logger.Warn("UpdateWalkStatus: walk id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		err = s.walkRepo.UpdateStatus(ctx, walk)
		if err == nil {
			s.logger.Info("UpdateWalkStatus: walk id=%d %s -> %s", id, from, next)
			return models.FromDomainWalk(walk), nil
		}
		if !errors.Is(err, walkRepo.ErrVersionConflict) {
			s.logger.Error("UpdateWalkStatus: failed to update walk id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: UpdateWalkStatus - repository error: %v", ErrInternal, err)
		}
		s.logger.Warn("UpdateWalkStatus: version conflict on walk id=%d, attempt %d", id, attempt)
	}

	return nil, ErrConcurrentUpdate
}

// Resize меняет вместимость прогулки
func (s *Service) Resize(ctx context.Context, id int64, req *models.ResizeRequest) (*models.WalkResponse, error) {
	walk, err := s.capacity.Resize(ctx, id, req.MaxPlaces)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrWalkNotFound):
			return nil, ErrWalkNotFound
		case errors.Is(err, capacity.ErrInvalidCapacity):
			return nil, fmt.Errorf("%w: %v", ErrInvalidCapacity, err)
		case errors.Is(err, capacity.ErrConcurrentUpdate):
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("%w: Resize: %v", ErrInternal, err)
	}
	return models.FromDomainWalk(walk), nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Walk, error) {
	walk, err := s.walkRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, walkRepo.ErrWalkNotFound) {
			s.logger.Warn("%s: walk id=%d not found", op, id)
			return nil, ErrWalkNotFound
		}
		s.logger.Error("%s: repository error for walk id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return walk, nil
}
