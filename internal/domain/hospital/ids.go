package hospital

import (
	"strconv"
	"sync/atomic"
	"time"
)

// IDGenerator issues "<prefix><n>" identifiers where n starts at the process
// start time in milliseconds and increases by one per call. Two calls never
// return the same n, regardless of prefix or timing.
type IDGenerator struct {
	next atomic.Int64
}

// NewIDGenerator seeds the counter from start.
func NewIDGenerator(start time.Time) *IDGenerator {
	g := &IDGenerator{}
	g.next.Store(start.UnixMilli())
	return g
}

// Next returns prefix followed by the next counter value.
func (g *IDGenerator) Next(prefix string) string {
	return prefix + strconv.FormatInt(g.next.Add(1), 10)
}

// nextFree skips any candidate already taken by seeded or persisted records.
func (g *IDGenerator) nextFree(prefix string, taken func(string) bool) string {
	for {
		id := g.Next(prefix)
		if !taken(id) {
			return id
		}
	}
}

const (
	prefixPatient     = "P"
	prefixSosPatient  = "SOS"
	prefixAppointment = "app-"
	prefixLeave       = "L"
	prefixMedicine    = "MED"
	prefixBill        = "B"
	prefixWard        = "W"
	prefixAuditLog    = "AL"
)
