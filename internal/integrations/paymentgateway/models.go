package paymentgateway

import "github.com/shopspring/decimal"

// InvoiceRequest параметры выставляемого счёта
type InvoiceRequest struct {
	Amount      decimal.Decimal
	Description string
	PayerName   string
	PayerPhone  string
	PayerEmail  *string
	BookingID   int64
}

// Invoice выставленный счёт
type Invoice struct {
	ID   string
	Link string
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type customer struct {
	FullName string  `json:"full_name,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type receipt struct {
	Customer customer `json:"customer"`
}

type createPaymentRequest struct {
	Amount       amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation confirmation      `json:"confirmation"`
	Description  string            `json:"description"`
	Receipt      receipt           `json:"receipt"`
	Metadata     map[string]string `json:"metadata"`
}

type paymentResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Paid         bool         `json:"paid"`
	Confirmation confirmation `json:"confirmation"`
}
