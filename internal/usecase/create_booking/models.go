package create_booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request модель запроса на создание бронирования
type Request struct {
	WalkID         int64   // ID прогулки
	NumberOfPeople int     // Количество мест
	Name           string  // Имя клиента
	Phone          string  // Телефон клиента, по нему клиент дедуплицируется
	Email          *string // Email для чека (опционально)

	Comment           *string // Комментарий (опционально)
	HasChildren       bool    // В группе есть дети
	AgreementAccepted bool    // Клиент принял соглашение
	PromoCode         *string // Промокод или сертификат (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID             int64     // ID созданного бронирования
	WalkID         int64     // ID прогулки
	ClientID       int64     // ID клиента
	Status         string    // Статус бронирования
	NumberOfPeople int       // Количество мест
	EndTime        time.Time // Дедлайн оплаты

	PaymentID      int64           // ID счёта
	PriceForOne    decimal.Decimal // Цена за место после скидки
	TotalCost      decimal.Decimal // Итоговая стоимость
	DiscountType   string          // Применённая скидка
	DiscountStatus string          // Статус скидки
	InvoiceLink    string          // Ссылка на оплату

	CreatedAt time.Time // Время создания
}
