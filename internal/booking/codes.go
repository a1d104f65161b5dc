package booking

import (
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewReservationCode returns a booking reference such as "R7KQ2MX"
func NewReservationCode() (string, error) {
	return newCode("R", 6)
}

// NewTicketCode returns a ticket number such as "T4HZ8QW2N"
func NewTicketCode() (string, error) {
	return newCode("T", 8)
}

func newCode(prefix string, n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[idx.Int64()]
	}
	return prefix + string(buf), nil
}
