package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createAirlinesTable,
		createAirportsTable,
		createAircraftTable,
		createFlightsTable,
		createFlightInventoryTable,
		createFlightSeatsTable,
		createReservationsTable,
		createPassengersTable,
		createTicketsTable,
		createIndexes,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    phone VARCHAR(20),
    card_last4 CHAR(4),
    role VARCHAR(10) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createAirlinesTable = `
CREATE TABLE IF NOT EXISTS airlines (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(3) UNIQUE NOT NULL,
    name VARCHAR(150) NOT NULL,
    country VARCHAR(100) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createAirportsTable = `
CREATE TABLE IF NOT EXISTS airports (
    id BIGSERIAL PRIMARY KEY,
    code CHAR(3) UNIQUE NOT NULL,
    name VARCHAR(150) NOT NULL,
    city VARCHAR(100) NOT NULL,
    country VARCHAR(100) NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createAircraftTable = `
CREATE TABLE IF NOT EXISTS aircraft (
    id BIGSERIAL PRIMARY KEY,
    airline_id BIGINT NOT NULL REFERENCES airlines(id),
    model VARCHAR(100) NOT NULL,
    registration VARCHAR(20) UNIQUE NOT NULL,
    total_seats INTEGER NOT NULL CHECK (total_seats > 0),
    seat_config JSONB NOT NULL DEFAULT '[]',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id BIGSERIAL PRIMARY KEY,
    number VARCHAR(10) NOT NULL,
    aircraft_id BIGINT NOT NULL REFERENCES aircraft(id),
    origin_id BIGINT NOT NULL REFERENCES airports(id),
    destination_id BIGINT NOT NULL REFERENCES airports(id),
    departure_at TIMESTAMPTZ NOT NULL,
    arrival_at TIMESTAMPTZ NOT NULL,
    duration_minutes INTEGER NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'programado',
    base_price_cents BIGINT NOT NULL CHECK (base_price_cents > 0),
    fares JSONB NOT NULL DEFAULT '{}',
    direct BOOLEAN NOT NULL DEFAULT TRUE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (origin_id <> destination_id),
    CHECK (arrival_at > departure_at)
);`

const createFlightInventoryTable = `
CREATE TABLE IF NOT EXISTS flight_inventory (
    flight_id BIGINT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
    class VARCHAR(20) NOT NULL,
    total INTEGER NOT NULL CHECK (total >= 0),
    available INTEGER NOT NULL,
    PRIMARY KEY (flight_id, class),
    CHECK (available BETWEEN 0 AND total)
);`

const createFlightSeatsTable = `
CREATE TABLE IF NOT EXISTS flight_seats (
    flight_id BIGINT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
    label VARCHAR(5) NOT NULL,
    class VARCHAR(20) NOT NULL,
    row_number INTEGER NOT NULL,
    letter CHAR(1) NOT NULL,
    ticket_code VARCHAR(16),
    PRIMARY KEY (flight_id, label)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(10) UNIQUE NOT NULL,
    user_id BIGINT NOT NULL REFERENCES users(id),
    trip_type VARCHAR(12) NOT NULL,
    flight_ids BIGINT[] NOT NULL,
    status VARCHAR(12) NOT NULL DEFAULT 'pendiente',
    held_class VARCHAR(20) NOT NULL DEFAULT 'economica',
    seats_held BOOLEAN NOT NULL DEFAULT TRUE,
    tickets_issued BOOLEAN NOT NULL DEFAULT FALSE,
    passenger_count INTEGER NOT NULL CHECK (passenger_count BETWEEN 1 AND 9),
    total_price_cents BIGINT NOT NULL,
    preferences JSONB NOT NULL DEFAULT '{}',
    observations TEXT,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (expires_at > created_at)
);`

const createPassengersTable = `
CREATE TABLE IF NOT EXISTS passengers (
    id BIGSERIAL PRIMARY KEY,
    reservation_id BIGINT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    document_type VARCHAR(10) NOT NULL,
    document_number VARCHAR(30) NOT NULL,
    birth_date DATE NOT NULL,
    nationality VARCHAR(60) NOT NULL,
    email VARCHAR(255),
    phone VARCHAR(20),
    category VARCHAR(10) NOT NULL,
    special_needs TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(16) UNIQUE NOT NULL,
    reservation_id BIGINT NOT NULL REFERENCES reservations(id),
    passenger_id BIGINT NOT NULL REFERENCES passengers(id),
    flight_id BIGINT NOT NULL REFERENCES flights(id),
    user_id BIGINT NOT NULL REFERENCES users(id),
    seat VARCHAR(5) NOT NULL,
    class VARCHAR(20) NOT NULL,
    price_cents BIGINT NOT NULL,
    status VARCHAR(12) NOT NULL DEFAULT 'emitido',
    delivery_method VARCHAR(12) NOT NULL,
    delivery_address VARCHAR(255),
    checked_in BOOLEAN NOT NULL DEFAULT FALSE,
    checked_in_at TIMESTAMPTZ,
    baggage JSONB NOT NULL DEFAULT '[]',
    refund_cents BIGINT,
    issued_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    cancelled_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (passenger_id, flight_id)
);`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_flights_route_departure ON flights(origin_id, destination_id, departure_at);
CREATE INDEX IF NOT EXISTS idx_flights_aircraft ON flights(aircraft_id) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_flight_seats_free ON flight_seats(flight_id, class, row_number, letter) WHERE ticket_code IS NULL;
CREATE INDEX IF NOT EXISTS idx_reservations_user ON reservations(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reservations_overdue ON reservations(expires_at) WHERE status = 'pendiente';
CREATE INDEX IF NOT EXISTS idx_reservations_flights ON reservations USING GIN (flight_ids);
CREATE INDEX IF NOT EXISTS idx_passengers_reservation ON passengers(reservation_id);
CREATE INDEX IF NOT EXISTS idx_tickets_reservation ON tickets(reservation_id);
CREATE INDEX IF NOT EXISTS idx_tickets_flight_status ON tickets(flight_id, status);
CREATE INDEX IF NOT EXISTS idx_tickets_user ON tickets(user_id, issued_at DESC);`
