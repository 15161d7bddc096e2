package services

import (
	"time"

	"funeral-backend/models"
)

// DefaultReservationTTL is how long a fresh booking holds stock it has not paid for.
const DefaultReservationTTL = 15 * time.Minute

// ReservationPolicy decides which bookings still hold a soft reservation on stock.
type ReservationPolicy interface {
	// Statuses lists the booking statuses that can reserve stock.
	Statuses() []string
	// ReservedSince returns the oldest creation time that still reserves stock at now.
	ReservedSince(now time.Time) time.Time
}

// TTLReservationPolicy counts pending and confirmed bookings created within TTL.
// Older bookings are treated as abandoned checkouts; nothing sweeps them.
type TTLReservationPolicy struct {
	TTL time.Duration
}

func NewTTLReservationPolicy(ttl time.Duration) TTLReservationPolicy {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return TTLReservationPolicy{TTL: ttl}
}

func (p TTLReservationPolicy) Statuses() []string {
	return models.ReservingStatuses
}

func (p TTLReservationPolicy) ReservedSince(now time.Time) time.Time {
	return now.UTC().Add(-p.TTL)
}
