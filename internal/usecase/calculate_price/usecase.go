package calculate_price

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	walkRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/walk"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/discount"
)

// UseCase use case для предварительного расчёта цены
// Ваучеры не расходуются, места не резервируются
type UseCase struct {
	walkRepo  WalkRepository
	discounts DiscountManager
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(walkRepo WalkRepository, discounts DiscountManager, logger Logger) *UseCase {
	return &UseCase{
		walkRepo:  walkRepo,
		discounts: discounts,
		logger:    logger,
	}
}

// Execute выполняет use case расчёта цены
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CalculatePrice: walk=%d, people=%d", req.WalkID, req.NumberOfPeople)

	if req.WalkID <= 0 {
		return nil, fmt.Errorf("%w: walkID must be positive", ErrInvalidInput)
	}
	if req.NumberOfPeople <= 0 {
		return nil, fmt.Errorf("%w: numberOfPeople must be positive", ErrInvalidInput)
	}

	walk, err := uc.walkRepo.GetByID(ctx, req.WalkID)
	if err != nil {
		if errors.Is(err, walkRepo.ErrWalkNotFound) {
			uc.logger.Warn("CalculatePrice: walk id=%d not found", req.WalkID)
			return nil, ErrWalkNotFound
		}
		uc.logger.Error("CalculatePrice: failed to get walk id=%d: %v", req.WalkID, err)
		return nil, fmt.Errorf("%w: failed to get walk: %v", ErrInternal, err)
	}

	result, err := uc.discounts.Quote(ctx, domain.DiscountRequest{
		RouteID:     walk.RouteID,
		PriceForOne: walk.PriceForOne,
		Quantity:    req.NumberOfPeople,
		Code:        strings.TrimSpace(req.PromoCode),
		Phone:       req.Phone,
	})
	if err != nil {
		if errors.Is(err, discount.ErrInvalidPrice) || errors.Is(err, discount.ErrInvalidQuantity) {
			uc.logger.Warn("CalculatePrice: walk id=%d: %v", walk.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		uc.logger.Error("CalculatePrice: failed to quote walk id=%d: %v", walk.ID, err)
		return nil, fmt.Errorf("%w: failed to quote: %v", ErrInternal, err)
	}

	return &Response{
		WalkID:           walk.ID,
		NumberOfPeople:   req.NumberOfPeople,
		BasePriceForOne:  walk.PriceForOne,
		PriceForOne:      result.PriceForOne,
		TotalCost:        result.TotalCost,
		DiscountType:     string(result.Type),
		DiscountStatus:   string(result.Status),
		DiscountPercent:  result.DiscountPercent,
		DiscountAbsolute: result.DiscountAbsolute,
		AvailablePlaces:  walk.AvailablePlaces,
		EnoughPlaces:     walk.IsOpenForBooking() && walk.AvailablePlaces >= req.NumberOfPeople,
	}, nil
}
