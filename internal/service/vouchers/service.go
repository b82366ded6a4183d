package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
	voucherRepo "github.com/m04kA/SMC-WalkBookingService/internal/infra/storage/voucher"
	"github.com/m04kA/SMC-WalkBookingService/internal/service/vouchers/models"
	"github.com/m04kA/SMC-WalkBookingService/pkg/ptr"
)

// Service сервис администрирования ваучеров
type Service struct {
	voucherRepo VoucherRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса ваучеров
func NewService(voucherRepo VoucherRepository, logger Logger) *Service {
	return &Service{
		voucherRepo: voucherRepo,
		logger:      logger,
	}
}

// Create создает активный ваучер
func (s *Service) Create(ctx context.Context, req *models.CreateVoucherRequest) (*models.VoucherResponse, error) {
	s.logger.Info("CreateVoucher: type=%s, code=%s", req.Type, req.Code)

	voucher := &domain.Voucher{
		Type:             domain.VoucherType(req.Type),
		Status:           domain.VoucherStatusActive,
		Code:             strings.TrimSpace(req.Code),
		RouteID:          req.RouteID,
		ExpiresAt:        req.ExpiresAt,
		DiscountPercent:  ptr.Value(req.DiscountPercent),
		DiscountAbsolute: ptr.Value(req.DiscountAbsolute),
	}
	if err := voucher.Validate(); err != nil {
		s.logger.Warn("CreateVoucher: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.voucherRepo.Create(ctx, voucher)
	if err != nil {
		if errors.Is(err, voucherRepo.ErrDuplicateCode) {
			s.logger.Warn("CreateVoucher: code=%s already exists", voucher.Code)
			return nil, ErrDuplicateCode
		}
		s.logger.Error("CreateVoucher: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateVoucher - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateVoucher: successfully created voucher id=%d", created.ID)
	return models.FromDomainVoucher(created), nil
}

// GetByCode получает ваучер по коду
func (s *Service) GetByCode(ctx context.Context, code string) (*models.VoucherResponse, error) {
	voucher, err := s.get(ctx, "GetVoucher", code)
	if err != nil {
		return nil, err
	}
	return models.FromDomainVoucher(voucher), nil
}

// List получает ваучеры с фильтрацией по типу и статусу
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.VoucherListResponse, error) {
	filter := voucherRepo.Filter{Limit: req.Limit, Offset: req.Offset}
	if req.Type != nil {
		filter.Type = ptr.Ptr(domain.VoucherType(*req.Type))
	}
	if req.Status != nil {
		filter.Status = ptr.Ptr(domain.VoucherStatus(*req.Status))
	}

	vouchers, err := s.voucherRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListVouchers: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListVouchers - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainVoucherList(vouchers), nil
}

// Expire выводит активный ваучер из оборота
func (s *Service) Expire(ctx context.Context, code string) (*models.VoucherResponse, error) {
	voucher, err := s.get(ctx, "ExpireVoucher", code)
	if err != nil {
		return nil, err
	}

	ok, err := s.voucherRepo.UpdateStatus(ctx, voucher.ID, domain.VoucherStatusActive, domain.VoucherStatusExpired)
	if err != nil {
		s.logger.Error("ExpireVoucher: repository error for voucher id=%d: %v", voucher.ID, err)
		return nil, fmt.Errorf("%w: ExpireVoucher - repository error: %v", ErrInternal, err)
	}
	if !ok {
		s.logger.Warn("ExpireVoucher: voucher id=%d is %s", voucher.ID, voucher.Status)
		return nil, ErrCannotExpire
	}

	voucher.Status = domain.VoucherStatusExpired
	s.logger.Info("ExpireVoucher: voucher id=%d expired", voucher.ID)
	return models.FromDomainVoucher(voucher), nil
}

func (s *Service) get(ctx context.Context, op, code string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, voucherRepo.ErrVoucherNotFound) {
			s.logger.Warn("%s: voucher code=%s not found", op, code)
			return nil, ErrVoucherNotFound
		}
		s.logger.Error("%s: repository error for code=%s: %v", op, code, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return voucher, nil
}
