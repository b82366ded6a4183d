package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-WalkBookingService/internal/domain"
)

// Статусы платежа во внешней платёжной системе
const (
	gatewayStatusPending           = "pending"
	gatewayStatusWaitingForCapture = "waiting_for_capture"
	gatewayStatusSucceeded         = "succeeded"
	gatewayStatusCanceled          = "canceled"
)

// Config параметры подключения к платёжной системе
type Config struct {
	BaseURL   string
	ShopID    string
	SecretKey string
	Currency  string
	ReturnURL string
	Timeout   time.Duration
}

// Client клиент платёжной системы: выставление счёта и проверка его статуса
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        Logger
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

// NewClient создает новый экземпляр клиента платёжной системы
func NewClient(cfg Config, log Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// OpenInvoice выставляет счёт и возвращает его идентификатор и ссылку на оплату
func (c *Client) OpenInvoice(ctx context.Context, in InvoiceRequest) (*Invoice, error) {
	payload := createPaymentRequest{
		Amount: amount{
			Value:    in.Amount.StringFixed(domain.MoneyPlaces),
			Currency: c.cfg.Currency,
		},
		Capture: true,
		Confirmation: confirmation{
			Type:      "redirect",
			ReturnURL: c.cfg.ReturnURL,
		},
		Description: in.Description,
		Receipt: receipt{
			Customer: customer{
				FullName: in.PayerName,
				Phone:    in.PayerPhone,
				Email:    in.PayerEmail,
			},
		},
		Metadata: map[string]string{
			"booking_id": strconv.FormatInt(in.BookingID, 10),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Idempotence-Key", idempotenceKey(in.BookingID))

	var resp paymentResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: empty payment id", ErrInvalidResponse)
	}

	c.log.Info("PaymentGateway: invoice id=%s opened for booking id=%d amount=%s",
		resp.ID, in.BookingID, payload.Amount.Value)

	return &Invoice{
		ID:   resp.ID,
		Link: resp.Confirmation.ConfirmationURL,
	}, nil
}

// GetInvoiceStatus возвращает текущий статус счёта
func (c *Client) GetInvoiceStatus(ctx context.Context, invoiceID string) (domain.InvoiceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/payments/"+url.PathEscape(invoiceID), nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	var resp paymentResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}

	switch resp.Status {
	case gatewayStatusSucceeded:
		return domain.InvoiceStatusPaid, nil
	case gatewayStatusCanceled:
		return domain.InvoiceStatusFailed, nil
	case gatewayStatusPending, gatewayStatusWaitingForCapture:
		return domain.InvoiceStatusPending, nil
	default:
		c.log.Warn("PaymentGateway: unknown status %q for invoice id=%s, treating as pending", resp.Status, invoiceID)
		return domain.InvoiceStatusPending, nil
	}
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode == http.StatusOK:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusNotFound:
		return ErrInvoiceNotFound
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status code %d", ErrUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

// idempotenceKey ключ идемпотентности счёта, один на бронирование
func idempotenceKey(bookingID int64) string {
	return "booking-" + strconv.FormatInt(bookingID, 10)
}
