package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// CreateVoucherRequest запрос на создание ваучера
type CreateVoucherRequest struct {
	Type             string           `json:"type"`
	Code             string           `json:"code"`
	RouteID          *int64           `json:"routeId,omitempty"`
	ExpiresAt        *time.Time       `json:"expiresAt,omitempty"`
	DiscountPercent  *decimal.Decimal `json:"discountPercent,omitempty"`
	DiscountAbsolute *decimal.Decimal `json:"discountAbsolute,omitempty"`
}

// ListRequest фильтр списка ваучеров
type ListRequest struct {
	Type   *string
	Status *string
	Limit  uint64
	Offset uint64
}

// VoucherResponse ответ с данными ваучера
type VoucherResponse struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	Code             string          `json:"code"`
	RouteID          *int64          `json:"routeId,omitempty"`
	ExpiresAt        *string         `json:"expiresAt,omitempty"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	DiscountAbsolute decimal.Decimal `json:"discountAbsolute"`
	Count            int             `json:"count"`
}

// VoucherListResponse список ваучеров
type VoucherListResponse struct {
	Vouchers []VoucherResponse `json:"vouchers"`
	Total    int               `json:"total"`
}

// FromDomainVoucher конвертирует domain.Voucher в VoucherResponse
func FromDomainVoucher(v *domain.Voucher) *VoucherResponse {
	resp := &VoucherResponse{
		ID:               v.ID,
		Type:             string(v.Type),
		Status:           string(v.Status),
		Code:             v.Code,
		RouteID:          v.RouteID,
		DiscountPercent:  v.DiscountPercent,
		DiscountAbsolute: v.DiscountAbsolute,
		Count:            v.Count,
	}
	if v.ExpiresAt != nil {
		s := v.ExpiresAt.Format(domain.DateTimeFormat)
		resp.ExpiresAt = &s
	}
	return resp
}

// FromDomainVoucherList конвертирует список ваучеров
func FromDomainVoucherList(vouchers []*domain.Voucher) *VoucherListResponse {
	resp := &VoucherListResponse{
		Vouchers: make([]VoucherResponse, 0, len(vouchers)),
		Total:    len(vouchers),
	}
	for _, v := range vouchers {
		resp.Vouchers = append(resp.Vouchers, *FromDomainVoucher(v))
	}
	return resp
}
