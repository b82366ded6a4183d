package create_booking

import (
	"fmt"
	"strings"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.WalkID <= 0 {
		return fmt.Errorf("%w: walkID must be positive", ErrInvalidInput)
	}

	if req.NumberOfPeople <= 0 {
		return fmt.Errorf("%w: numberOfPeople must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}

	if !req.AgreementAccepted {
		return ErrAgreementRequired
	}

	return nil
}

// promoCode возвращает нормализованный код или пустую строку
func promoCode(req *Request) string {
	if req.PromoCode == nil {
		return ""
	}
	return strings.TrimSpace(*req.PromoCode)
}
