package booking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

// seatLetters skips I to avoid confusion with row 1
const seatLetters = "ABCDEFGHJK"

// RowRange is an inclusive range of cabin rows
type RowRange struct {
	First int
	Last  int
}

// Count returns the number of rows in the range
func (r RowRange) Count() int {
	return r.Last - r.First + 1
}

// ParseRowRange parses "1-5" or a single row "7"
func ParseRowRange(s string) (RowRange, error) {
	s = strings.TrimSpace(s)
	first, last, found := strings.Cut(s, "-")
	if !found {
		last = first
	}
	a, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return RowRange{}, fmt.Errorf("%w: invalid row range %q", apperrors.ErrValidation, s)
	}
	b, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil {
		return RowRange{}, fmt.Errorf("%w: invalid row range %q", apperrors.ErrValidation, s)
	}
	if a < 1 || b < a {
		return RowRange{}, fmt.Errorf("%w: invalid row range %q", apperrors.ErrValidation, s)
	}
	return RowRange{First: a, Last: b}, nil
}

// ValidateLayout checks an aircraft cabin configuration: known unique classes,
// non-overlapping rows, rows × seats per row matching each class total and
// class totals summing to the aircraft's seat count.
func ValidateLayout(totalSeats int, layout []models.SeatClassConfig) error {
	if len(layout) == 0 {
		return fmt.Errorf("%w: seat configuration is empty", apperrors.ErrValidation)
	}

	seen := make(map[string]bool, len(layout))
	ranges := make([]RowRange, 0, len(layout))
	sum := 0
	for _, cfg := range layout {
		if !models.IsServiceClass(cfg.Class) {
			return fmt.Errorf("%w: unknown service class %q", apperrors.ErrValidation, cfg.Class)
		}
		if seen[cfg.Class] {
			return fmt.Errorf("%w: class %q is configured twice", apperrors.ErrValidation, cfg.Class)
		}
		seen[cfg.Class] = true

		if cfg.SeatsPerRow < 1 || cfg.SeatsPerRow > len(seatLetters) {
			return fmt.Errorf("%w: class %q must have 1 to %d seats per row", apperrors.ErrValidation, cfg.Class, len(seatLetters))
		}
		rows, err := ParseRowRange(cfg.Rows)
		if err != nil {
			return err
		}
		if rows.Count()*cfg.SeatsPerRow != cfg.Total {
			return fmt.Errorf("%w: class %q has %d rows of %d seats but total %d",
				apperrors.ErrValidation, cfg.Class, rows.Count(), cfg.SeatsPerRow, cfg.Total)
		}
		for _, other := range ranges {
			if rows.First <= other.Last && other.First <= rows.Last {
				return fmt.Errorf("%w: row range %q overlaps another class", apperrors.ErrValidation, cfg.Rows)
			}
		}
		ranges = append(ranges, rows)
		sum += cfg.Total
	}

	if sum != totalSeats {
		return fmt.Errorf("%w: class totals add up to %d, aircraft has %d seats", apperrors.ErrValidation, sum, totalSeats)
	}
	return nil
}

// SeatLabel formats a row and letter as "12C"
func SeatLabel(row int, letter string) string {
	return strconv.Itoa(row) + letter
}

// NormalizeSeatLabel uppercases and trims a caller-supplied label
func NormalizeSeatLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// ExpandLayout produces every seat slot of a validated layout, ordered by row then letter
func ExpandLayout(flightID int64, layout []models.SeatClassConfig) []models.FlightSeat {
	var seats []models.FlightSeat
	for _, cfg := range layout {
		rows, err := ParseRowRange(cfg.Rows)
		if err != nil {
			continue
		}
		for row := rows.First; row <= rows.Last; row++ {
			for i := 0; i < cfg.SeatsPerRow; i++ {
				letter := string(seatLetters[i])
				seats = append(seats, models.FlightSeat{
					FlightID: flightID,
					Class:    cfg.Class,
					Row:      row,
					Letter:   letter,
					Label:    SeatLabel(row, letter),
				})
			}
		}
	}
	sortSeats(seats)
	return seats
}

func sortSeats(seats []models.FlightSeat) {
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Letter < seats[j].Letter
	})
}

// SeatMap is an in-memory arena of a flight's seat slots indexed by label
type SeatMap struct {
	seats []models.FlightSeat
	index map[string]int
}

// NewSeatMap builds a seat map from stored seat rows
func NewSeatMap(seats []models.FlightSeat) *SeatMap {
	m := &SeatMap{
		seats: make([]models.FlightSeat, len(seats)),
		index: make(map[string]int, len(seats)),
	}
	copy(m.seats, seats)
	sortSeats(m.seats)
	for i, s := range m.seats {
		m.index[s.Label] = i
	}
	return m
}

// Seats returns the slots in cabin order
func (m *SeatMap) Seats() []models.FlightSeat {
	out := make([]models.FlightSeat, len(m.seats))
	copy(out, m.seats)
	return out
}

// Seat looks up a slot by label
func (m *SeatMap) Seat(label string) (models.FlightSeat, bool) {
	i, ok := m.index[NormalizeSeatLabel(label)]
	if !ok {
		return models.FlightSeat{}, false
	}
	return m.seats[i], true
}

// FreeCount returns the number of unoccupied slots in a class
func (m *SeatMap) FreeCount(class string) int {
	n := 0
	for _, s := range m.seats {
		if s.Class == class && !s.Occupied() {
			n++
		}
	}
	return n
}

// FirstFree returns the first unoccupied slot of a class in cabin order
func (m *SeatMap) FirstFree(class string) (models.FlightSeat, bool) {
	for _, s := range m.seats {
		if s.Class == class && !s.Occupied() {
			return s, true
		}
	}
	return models.FlightSeat{}, false
}

// Occupy marks a slot as held by the ticket code. The slot must exist,
// belong to the class and be free.
func (m *SeatMap) Occupy(label, class, ticketCode string) (models.FlightSeat, error) {
	label = NormalizeSeatLabel(label)
	i, ok := m.index[label]
	if !ok {
		return models.FlightSeat{}, fmt.Errorf("%w: seat %s does not exist", apperrors.ErrValidation, label)
	}
	seat := m.seats[i]
	if seat.Class != class {
		return models.FlightSeat{}, fmt.Errorf("%w: seat %s is not in class %s", apperrors.ErrValidation, label, class)
	}
	if seat.Occupied() {
		return models.FlightSeat{}, fmt.Errorf("%w: %s", apperrors.ErrSeatUnavailable, label)
	}
	code := ticketCode
	m.seats[i].TicketCode = &code
	return m.seats[i], nil
}

// OccupyFirstFree assigns the first free slot of a class to the ticket code
func (m *SeatMap) OccupyFirstFree(class, ticketCode string) (models.FlightSeat, error) {
	seat, ok := m.FirstFree(class)
	if !ok {
		return models.FlightSeat{}, fmt.Errorf("%w: no free %s seats left", apperrors.ErrInsufficientInventory, class)
	}
	return m.Occupy(seat.Label, class, ticketCode)
}
