package models

import (
	"time"
)

// User represents an account in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CardLast4    *string   `json:"card_last4,omitempty" db:"card_last4"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasCard reports whether a credit card is stored for the user
func (u *User) HasCard() bool {
	return u.CardLast4 != nil && *u.CardLast4 != ""
}

// IsAdmin reports whether the user may manage the catalog
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Airline represents an operating carrier
type Airline struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Country   string    `json:"country" db:"country"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Airport represents an airport identified by its IATA code
type Airport struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	City      string    `json:"city" db:"city"`
	Country   string    `json:"country" db:"country"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SeatClassConfig describes how one service class is laid out in the cabin
type SeatClassConfig struct {
	Class       string `json:"class"`
	Rows        string `json:"rows"`
	SeatsPerRow int    `json:"seats_per_row"`
	Total       int    `json:"total"`
}

// Aircraft represents a plane owned by an airline
type Aircraft struct {
	ID           int64      `json:"id" db:"id"`
	AirlineID    int64      `json:"airline_id" db:"airline_id"`
	Model        string     `json:"model" db:"model"`
	Registration string     `json:"registration" db:"registration"`
	TotalSeats   int        `json:"total_seats" db:"total_seats"`
	SeatConfig   SeatLayout `json:"seat_config" db:"seat_config"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// ClassConfig returns the layout of the given class, if configured
func (a *Aircraft) ClassConfig(class string) (SeatClassConfig, bool) {
	for _, cfg := range a.SeatConfig {
		if cfg.Class == class {
			return cfg, true
		}
	}
	return SeatClassConfig{}, false
}

// Flight represents a scheduled flight
type Flight struct {
	ID              int64     `json:"id" db:"id"`
	Number          string    `json:"number" db:"number"`
	AircraftID      int64     `json:"aircraft_id" db:"aircraft_id"`
	OriginID        int64     `json:"origin_id" db:"origin_id"`
	DestinationID   int64     `json:"destination_id" db:"destination_id"`
	DepartureAt     time.Time `json:"departure_at" db:"departure_at"`
	ArrivalAt       time.Time `json:"arrival_at" db:"arrival_at"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Status          string    `json:"status" db:"status"`
	BasePriceCents  int64     `json:"base_price_cents" db:"base_price_cents"`
	Fares           FareTable `json:"fares" db:"fares"`
	Direct          bool      `json:"direct" db:"direct"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	Inventory []FlightInventory `json:"inventory,omitempty"` // Not from DB, filled separately
}

// FlightInventory is the ledger row for one class of one flight
type FlightInventory struct {
	FlightID  int64  `json:"flight_id" db:"flight_id"`
	Class     string `json:"class" db:"class"`
	Total     int    `json:"total" db:"total"`
	Available int    `json:"available" db:"available"`
}

// FlightSeat is one slot of a flight's seat map
type FlightSeat struct {
	FlightID   int64   `json:"flight_id" db:"flight_id"`
	Class      string  `json:"class" db:"class"`
	Row        int     `json:"row" db:"row_number"`
	Letter     string  `json:"letter" db:"letter"`
	Label      string  `json:"label" db:"label"`
	TicketCode *string `json:"-" db:"ticket_code"`
}

// Occupied reports whether a ticket holds the seat
func (s FlightSeat) Occupied() bool {
	return s.TicketCode != nil
}

// Reservation represents a multi-flight, multi-passenger booking
type Reservation struct {
	ID              int64       `json:"id" db:"id"`
	Code            string      `json:"code" db:"code"`
	UserID          int64       `json:"user_id" db:"user_id"`
	TripType        string      `json:"trip_type" db:"trip_type"`
	FlightIDs       []int64     `json:"flight_ids" db:"flight_ids"`
	Status          string      `json:"status" db:"status"`
	HeldClass       string      `json:"held_class" db:"held_class"`
	SeatsHeld       bool        `json:"seats_held" db:"seats_held"`
	TicketsIssued   bool        `json:"tickets_issued" db:"tickets_issued"`
	PassengerCount  int         `json:"passenger_count" db:"passenger_count"`
	TotalPriceCents int64       `json:"total_price_cents" db:"total_price_cents"`
	Preferences     Preferences `json:"preferences" db:"preferences"`
	Observations    *string     `json:"observations,omitempty" db:"observations"`
	ExpiresAt       time.Time   `json:"expires_at" db:"expires_at"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`

	Passengers []Passenger `json:"passengers,omitempty"` // Not from DB, filled separately
}

// Passenger is the single record of a traveller on a reservation
type Passenger struct {
	ID             int64     `json:"id" db:"id"`
	ReservationID  int64     `json:"reservation_id" db:"reservation_id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	DocumentType   string    `json:"document_type" db:"document_type"`
	DocumentNumber string    `json:"document_number" db:"document_number"`
	BirthDate      time.Time `json:"birth_date" db:"birth_date"`
	Nationality    string    `json:"nationality" db:"nationality"`
	Email          *string   `json:"email,omitempty" db:"email"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	Category       string    `json:"category" db:"category"`
	SpecialNeeds   []string  `json:"special_needs" db:"special_needs"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Baggage is one checked bag recorded at check-in
type Baggage struct {
	WeightKg    float64 `json:"weight_kg"`
	Description string  `json:"description"`
}

// Ticket represents an issued travel document for one passenger on one flight
type Ticket struct {
	ID              int64       `json:"id" db:"id"`
	Code            string      `json:"code" db:"code"`
	ReservationID   int64       `json:"reservation_id" db:"reservation_id"`
	PassengerID     int64       `json:"passenger_id" db:"passenger_id"`
	FlightID        int64       `json:"flight_id" db:"flight_id"`
	UserID          int64       `json:"user_id" db:"user_id"`
	Seat            string      `json:"seat" db:"seat"`
	Class           string      `json:"class" db:"class"`
	PriceCents      int64       `json:"price_cents" db:"price_cents"`
	Status          string      `json:"status" db:"status"`
	DeliveryMethod  string      `json:"delivery_method" db:"delivery_method"`
	DeliveryAddress *string     `json:"delivery_address,omitempty" db:"delivery_address"`
	CheckedIn       bool        `json:"checked_in" db:"checked_in"`
	CheckedInAt     *time.Time  `json:"checked_in_at,omitempty" db:"checked_in_at"`
	Baggage         BaggageList `json:"baggage" db:"baggage"`
	RefundCents     *int64      `json:"refund_cents,omitempty" db:"refund_cents"`
	IssuedAt        time.Time   `json:"issued_at" db:"issued_at"`
	ExpiresAt       time.Time   `json:"expires_at" db:"expires_at"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty" db:"cancelled_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}
