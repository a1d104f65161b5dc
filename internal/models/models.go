package models

import (
	"time"
)

// DateLayout is the wire format of calendar dates such as birth dates
const DateLayout = "2006-01-02"

// RegisterRequest - модель регистрации пользователя
type RegisterRequest struct {
	FirstName  string  `json:"first_name" binding:"required,max=100"`
	LastName   string  `json:"last_name" binding:"required,max=100"`
	Email      string  `json:"email" binding:"required,email,max=255"`
	Password   string  `json:"password" binding:"required,min=8,max=72"`
	Phone      *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	CardNumber *string `json:"card_number,omitempty" binding:"omitempty,len=16,numeric"`
}

// LoginRequest - модель входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse - ответ с токеном доступа
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// UpdateCardRequest - сохранить карту пользователя
type UpdateCardRequest struct {
	CardNumber string `json:"card_number" binding:"required,len=16,numeric"`
}

// CreateAirlineRequest - создать авиакомпанию
type CreateAirlineRequest struct {
	Code    string `json:"code" binding:"required,min=2,max=3,alphanum"`
	Name    string `json:"name" binding:"required,max=150"`
	Country string `json:"country" binding:"required,max=100"`
}

// CreateAirportRequest - создать аэропорт
type CreateAirportRequest struct {
	Code    string `json:"code" binding:"required,len=3,alpha"`
	Name    string `json:"name" binding:"required,max=150"`
	City    string `json:"city" binding:"required,max=100"`
	Country string `json:"country" binding:"required,max=100"`
}

// SeatClassConfigRequest - конфигурация класса в салоне
type SeatClassConfigRequest struct {
	Class       string `json:"class" binding:"required,service_class"`
	Rows        string `json:"rows" binding:"required"`
	SeatsPerRow int    `json:"seats_per_row" binding:"required,min=1,max=10"`
	Total       int    `json:"total" binding:"required,min=1"`
}

// CreateAircraftRequest - создать самолет
type CreateAircraftRequest struct {
	AirlineID    int64                    `json:"airline_id" binding:"required"`
	Model        string                   `json:"model" binding:"required,max=100"`
	Registration string                   `json:"registration" binding:"required,max=20"`
	TotalSeats   int                      `json:"total_seats" binding:"required,min=1,max=900"`
	SeatConfig   []SeatClassConfigRequest `json:"seat_config" binding:"required,min=1,max=4,dive"`
}

// CreateFlightRequest - создать рейс
type CreateFlightRequest struct {
	Number         string           `json:"number" binding:"required,max=10"`
	AircraftID     int64            `json:"aircraft_id" binding:"required"`
	OriginID       int64            `json:"origin_id" binding:"required"`
	DestinationID  int64            `json:"destination_id" binding:"required"`
	DepartureAt    time.Time        `json:"departure_at" binding:"required"`
	ArrivalAt      time.Time        `json:"arrival_at" binding:"required"`
	BasePriceCents int64            `json:"base_price_cents" binding:"required,min=1"`
	Fares          map[string]int64 `json:"fares,omitempty" binding:"omitempty,dive,keys,service_class,endkeys,min=1"`
	Direct         *bool            `json:"direct,omitempty"`
}

// UpdateFlightStatusRequest - изменить операционный статус рейса
type UpdateFlightStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=programado en_hora retrasado cancelado abordando en_vuelo aterrizado"`
}

// FlightSearchParams - параметры поиска рейсов
type FlightSearchParams struct {
	Origin      string
	Destination string
	Date        string
	Page        int
	PageSize    int
}

// SeatMapResponse - карта мест рейса
type SeatMapResponse struct {
	FlightID int64        `json:"flight_id"`
	Seats    []FlightSeat `json:"seats"`
}

// PassengerRequest - данные пассажира в бронировании
type PassengerRequest struct {
	FirstName      string   `json:"first_name" binding:"required,max=100"`
	LastName       string   `json:"last_name" binding:"required,max=100"`
	DocumentType   string   `json:"document_type" binding:"required,doc_type"`
	DocumentNumber string   `json:"document_number" binding:"required,max=30"`
	BirthDate      string   `json:"birth_date" binding:"required,past_date"`
	Nationality    string   `json:"nationality" binding:"required,max=60"`
	Email          *string  `json:"email,omitempty" binding:"omitempty,email"`
	Phone          *string  `json:"phone,omitempty" binding:"omitempty,max=20"`
	SpecialNeeds   []string `json:"special_needs,omitempty" binding:"omitempty,max=10,dive,max=100"`
}

// CreateReservationRequest - модель для создания бронирования
type CreateReservationRequest struct {
	FlightIDs    []int64            `json:"flight_ids" binding:"required,min=1,max=2"`
	TripType     string             `json:"trip_type" binding:"required,oneof=ida ida_vuelta"`
	Passengers   []PassengerRequest `json:"passengers" binding:"required,min=1,max=9,dive"`
	Preferences  map[string]string  `json:"preferences,omitempty"`
	Observations *string            `json:"observations,omitempty" binding:"omitempty,max=500"`
}

// UpdateReservationRequest - изменить предпочтения и примечания
type UpdateReservationRequest struct {
	Preferences  map[string]string `json:"preferences,omitempty"`
	Observations *string           `json:"observations,omitempty" binding:"omitempty,max=500"`
}

// ListReservationsParams - фильтры списка бронирований
type ListReservationsParams struct {
	Status   string
	Page     int
	PageSize int
}

// PurchaseRequest - модель покупки билетов по бронированию
type PurchaseRequest struct {
	PaymentMethod   string            `json:"payment_method" binding:"required,oneof=tarjeta_credito transferencia efectivo"`
	PaymentDetails  map[string]string `json:"payment_details" binding:"required"`
	DeliveryMethod  string            `json:"delivery_method" binding:"required,oneof=email aeropuerto domicilio"`
	DeliveryAddress *string           `json:"delivery_address,omitempty" binding:"omitempty,max=255"`
	ServiceClass    string            `json:"service_class" binding:"required,service_class"`
	// SeatAssignments[flightIndex][passengerIndex] is a seat label such as "3C"
	SeatAssignments [][]string `json:"seat_assignments,omitempty"`
	IdempotencyKey  string     `json:"-"`
}

// PaymentReceipt - результат симуляции платежа
type PaymentReceipt struct {
	TransactionID string    `json:"transaction_id"`
	Method        string    `json:"method"`
	AmountCents   int64     `json:"amount_cents"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// PurchaseResponse - выпущенные билеты и обновленное бронирование
type PurchaseResponse struct {
	Reservation *Reservation    `json:"reservation"`
	Tickets     []Ticket        `json:"tickets"`
	Payment     *PaymentReceipt `json:"payment"`
}

// BaggageRequest - багаж при регистрации
type BaggageRequest struct {
	WeightKg    float64 `json:"weight_kg" binding:"gte=0,lte=50"`
	Description string  `json:"description" binding:"max=255"`
}

// CheckInRequest - модель регистрации на рейс
type CheckInRequest struct {
	Baggage      []BaggageRequest `json:"baggage,omitempty" binding:"omitempty,dive"`
	SpecialNeeds []string         `json:"special_needs,omitempty" binding:"omitempty,max=10,dive,max=100"`
}

// ListTicketsParams - фильтры списка билетов
type ListTicketsParams struct {
	Status        string
	ReservationID int64
	Page          int
	PageSize      int
}

// AdminReservationFilter - фильтры сквозного списка бронирований для администратора.
// UserEmail и Code ищутся по подстроке.
type AdminReservationFilter struct {
	Status    string
	UserEmail string
	Code      string
	Page      int
	PageSize  int
}

// AdminTicketFilter - фильтры сквозного списка билетов для администратора
type AdminTicketFilter struct {
	Status   string
	Code     string
	FlightID int64
	Page     int
	PageSize int
}

// CancelTicketResponse - отмененный билет и сумма возврата
type CancelTicketResponse struct {
	Ticket      *Ticket `json:"ticket"`
	RefundCents int64   `json:"refund_cents"`
}
