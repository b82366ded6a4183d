package cancel_booking

import "github.com/m04kA/SMC-WalkBookingService/internal/service/bookings/models"

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	CancellationReason string `json:"cancellationReason" validate:"max=500"`
	Reject             bool   `json:"reject"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest() models.CancelBookingRequest {
	return models.CancelBookingRequest{
		CancellationReason: r.CancellationReason,
		Reject:             r.Reject,
	}
}
