// Package pnr issues reservation codes, one per booked seat.
package pnr

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generate builds a PNR from the flight number, the seat code and a short
// random suffix. Unique with overwhelming probability; collisions are not
// checked.
func Generate(flightNumber, seat string) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("%s-%s-%s", flightNumber, seat, suffix)
}
