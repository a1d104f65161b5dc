package booking

import (
	"time"

	"skybook/internal/models"
)

// ReservationTotal prices a reservation at creation: every flight's base
// price times the passenger count. Class fares apply only at issuance.
func ReservationTotal(flights []models.Flight, passengers int) int64 {
	var total int64
	for _, f := range flights {
		total += f.BasePriceCents * int64(passengers)
	}
	return total
}

// FareFor returns the fare of a class, falling back to the base price
func FareFor(f *models.Flight, class string) int64 {
	if fare, ok := f.Fares[class]; ok && fare > 0 {
		return fare
	}
	return f.BasePriceCents
}

// Age returns full years between birth and now
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// PassengerCategory classifies a passenger by age at now
func PassengerCategory(birth, now time.Time) string {
	switch age := Age(birth, now); {
	case age < 2:
		return models.PassengerInfant
	case age < 12:
		return models.PassengerMinor
	default:
		return models.PassengerAdult
	}
}
