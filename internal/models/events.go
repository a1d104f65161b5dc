package models

import "time"

// NATS Event Types
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationPaid      = "reservation.paid"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"
	EventTicketsIssued        = "tickets.issued"
	EventTicketCheckedIn      = "ticket.checked_in"
	EventTicketCancelled      = "ticket.cancelled"
	EventFlightStatusChanged  = "flight.status_changed"
)

// ReservationEvent represents a reservation lifecycle change
type ReservationEvent struct {
	ReservationID   int64     `json:"reservation_id"`
	Code            string    `json:"code"`
	UserID          int64     `json:"user_id"`
	Status          string    `json:"status"`
	FlightIDs       []int64   `json:"flight_ids"`
	PassengerCount  int       `json:"passenger_count"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Reason          string    `json:"reason,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// IssuedTicket is the part of a ticket delivery consumers need
type IssuedTicket struct {
	TicketID   int64  `json:"ticket_id"`
	Code       string `json:"code"`
	FlightID   int64  `json:"flight_id"`
	Seat       string `json:"seat"`
	Class      string `json:"class"`
	PriceCents int64  `json:"price_cents"`
}

// TicketsIssuedEvent represents a completed purchase
type TicketsIssuedEvent struct {
	ReservationID   int64          `json:"reservation_id"`
	UserID          int64          `json:"user_id"`
	TransactionID   string         `json:"transaction_id"`
	PaymentMethod   string         `json:"payment_method"`
	DeliveryMethod  string         `json:"delivery_method"`
	DeliveryAddress *string        `json:"delivery_address,omitempty"`
	Tickets         []IssuedTicket `json:"tickets"`
	Timestamp       time.Time      `json:"timestamp"`
}

// TicketEvent represents a change on a single ticket
type TicketEvent struct {
	TicketID      int64     `json:"ticket_id"`
	Code          string    `json:"code"`
	ReservationID int64     `json:"reservation_id"`
	FlightID      int64     `json:"flight_id"`
	UserID        int64     `json:"user_id"`
	Status        string    `json:"status"`
	RefundCents   int64     `json:"refund_cents,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// FlightStatusChangedEvent represents an operational status update
type FlightStatusChangedEvent struct {
	FlightID        int64     `json:"flight_id"`
	Number          string    `json:"number"`
	PreviousStatus  string    `json:"previous_status"`
	Status          string    `json:"status"`
	RefundedTickets int       `json:"refunded_tickets"`
	Timestamp       time.Time `json:"timestamp"`
}

// DeliveryJob is one ticket delivery request sent to the delivery queue
type DeliveryJob struct {
	TicketCode    string    `json:"ticket_code"`
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	Method        string    `json:"method"`
	Address       *string   `json:"address,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}
