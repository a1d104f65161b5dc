package models

// Reservation states
const (
	ReservationPending   = "pendiente"
	ReservationConfirmed = "confirmada"
	ReservationPaid      = "pagada"
	ReservationCancelled = "cancelada"
	ReservationExpired   = "vencida"
)

// Ticket states
const (
	TicketIssued    = "emitido"
	TicketUsed      = "usado"
	TicketCancelled = "cancelado"
	TicketRefunded  = "reembolsado"
)

// Flight operational statuses
const (
	FlightScheduled = "programado"
	FlightOnTime    = "en_hora"
	FlightDelayed   = "retrasado"
	FlightCancelled = "cancelado"
	FlightBoarding  = "abordando"
	FlightInFlight  = "en_vuelo"
	FlightLanded    = "aterrizado"
)

// Service classes
const (
	ClassEconomy  = "economica"
	ClassPremium  = "premium"
	ClassBusiness = "ejecutiva"
	ClassFirst    = "primera"
)

// Trip types
const (
	TripOneWay    = "ida"
	TripRoundTrip = "ida_vuelta"
)

// Document types
const (
	DocumentNationalID = "cedula"
	DocumentPassport   = "pasaporte"
)

// Passenger categories derived from age
const (
	PassengerInfant = "infante"
	PassengerMinor  = "menor"
	PassengerAdult  = "adulto"
)

// Payment methods
const (
	PaymentCard     = "tarjeta_credito"
	PaymentTransfer = "transferencia"
	PaymentCash     = "efectivo"
)

// Delivery methods
const (
	DeliveryEmail   = "email"
	DeliveryAirport = "aeropuerto"
	DeliveryHome    = "domicilio"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ServiceClasses lists classes in cabin order
var ServiceClasses = []string{ClassFirst, ClassBusiness, ClassPremium, ClassEconomy}

// FlightStatuses lists every operational status
var FlightStatuses = []string{
	FlightScheduled, FlightOnTime, FlightDelayed, FlightCancelled,
	FlightBoarding, FlightInFlight, FlightLanded,
}

// IsServiceClass reports whether class is a known service class
func IsServiceClass(class string) bool {
	for _, c := range ServiceClasses {
		if c == class {
			return true
		}
	}
	return false
}

// IsFlightStatus reports whether status is a known operational status
func IsFlightStatus(status string) bool {
	for _, s := range FlightStatuses {
		if s == status {
			return true
		}
	}
	return false
}
