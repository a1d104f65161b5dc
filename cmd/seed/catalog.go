package main

import (
	"fmt"
	"time"

	"skybook/internal/models"
)

var airlines = []models.CreateAirlineRequest{
	{Code: "AV", Name: "Avianca", Country: "Colombia"},
	{Code: "LA", Name: "LATAM Airlines Colombia", Country: "Colombia"},
}

var airports = []models.CreateAirportRequest{
	{Code: "BOG", Name: "Aeropuerto Internacional El Dorado", City: "Bogota", Country: "Colombia"},
	{Code: "MDE", Name: "Aeropuerto Internacional Jose Maria Cordova", City: "Medellin", Country: "Colombia"},
	{Code: "CTG", Name: "Aeropuerto Internacional Rafael Nunez", City: "Cartagena", Country: "Colombia"},
	{Code: "CLO", Name: "Aeropuerto Internacional Alfonso Bonilla Aragon", City: "Cali", Country: "Colombia"},
}

// a320Layout: 12 ejecutiva, 24 premium, 114 economica
var a320Layout = []models.SeatClassConfigRequest{
	{Class: models.ClassBusiness, Rows: "1-3", SeatsPerRow: 4, Total: 12},
	{Class: models.ClassPremium, Rows: "4-7", SeatsPerRow: 6, Total: 24},
	{Class: models.ClassEconomy, Rows: "8-26", SeatsPerRow: 6, Total: 114},
}

type aircraftSeed struct {
	airline      string
	model        string
	registration string
}

var fleet = []aircraftSeed{
	{airline: "AV", model: "Airbus A320", registration: "N-AV320"},
	{airline: "LA", model: "Airbus A320", registration: "CC-LA320"},
}

// route - ежедневный рейс по расписанию
type route struct {
	number      string
	origin      string
	destination string
	departure   time.Duration // от полуночи UTC
	duration    time.Duration
	basePrice   int64
	aircraft    string
}

var routes = []route{
	{"AV204", "BOG", "MDE", 7 * time.Hour, 55 * time.Minute, 28000000, "N-AV320"},
	{"AV205", "MDE", "BOG", 10 * time.Hour, 55 * time.Minute, 28000000, "N-AV320"},
	{"AV310", "BOG", "CTG", 14 * time.Hour, 90 * time.Minute, 41000000, "N-AV320"},
	{"AV311", "CTG", "BOG", 18 * time.Hour, 90 * time.Minute, 41000000, "N-AV320"},
	{"LA402", "BOG", "CLO", 8 * time.Hour, 65 * time.Minute, 25500000, "CC-LA320"},
	{"LA403", "CLO", "BOG", 12 * time.Hour, 65 * time.Minute, 25500000, "CC-LA320"},
}

// scheduledFlight - рейс конкретного дня до разрешения id справочников
type scheduledFlight struct {
	route
	departureAt time.Time
	arrivalAt   time.Time
}

func (f scheduledFlight) String() string {
	return fmt.Sprintf("%s %s-%s %s", f.number, f.origin, f.destination, f.departureAt.Format(time.RFC3339))
}

// schedule раскладывает маршруты на days дней, начиная с суток после start
func schedule(routes []route, start time.Time, days int) []scheduledFlight {
	day := start.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	flights := make([]scheduledFlight, 0, len(routes)*days)
	for d := 0; d < days; d++ {
		for _, r := range routes {
			departure := day.Add(time.Duration(d)*24*time.Hour + r.departure)
			flights = append(flights, scheduledFlight{
				route:       r,
				departureAt: departure,
				arrivalAt:   departure.Add(r.duration),
			})
		}
	}
	return flights
}

// fares: премиальные классы дороже базового тарифа
func fares(base int64) map[string]int64 {
	return map[string]int64{
		models.ClassEconomy:  base,
		models.ClassPremium:  base * 3 / 2,
		models.ClassBusiness: base * 5 / 2,
	}
}
