package repository

import (
	"errors"
	"strings"

	"skybook/internal/database"

	"github.com/lib/pq"
)

type Repositories struct {
	Users        *UserRepository
	Airlines     *AirlineRepository
	Airports     *AirportRepository
	Aircraft     *AircraftRepository
	Flights      *FlightRepository
	Inventory    *InventoryRepository
	Seats        *SeatRepository
	Reservations *ReservationRepository
	Tickets      *TicketRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Airlines:     NewAirlineRepository(db),
		Airports:     NewAirportRepository(db),
		Aircraft:     NewAircraftRepository(db),
		Flights:      NewFlightRepository(db),
		Inventory:    NewInventoryRepository(db),
		Seats:        NewSeatRepository(db),
		Reservations: NewReservationRepository(db),
		Tickets:      NewTicketRepository(db),
	}
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует метасимволы LIKE в пользовательской подстроке
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func pageOffset(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
