package pnr

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const Prefix = "PNR"

// Generator produces booking identifiers.
type Generator func() string

// New returns a PNR built from the millisecond clock and 32 random bits, so two
// bookings created within the same tick still differ.
func New() string {
	return newAt(time.Now(), uuid.New())
}

func newAt(now time.Time, entropy uuid.UUID) string {
	stamp := strconv.FormatInt(now.UnixMilli(), 36)
	random := strings.ReplaceAll(entropy.String(), "-", "")[:8]
	return strings.ToUpper(Prefix + stamp + random)
}
