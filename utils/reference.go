package utils

import (
	"fmt"
	"time"
)

const referencePrefix = "FS"

// BookingReference derives the human readable booking code, e.g. "FS-20241215-000042".
func BookingReference(id uint, createdAt time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", referencePrefix, createdAt.UTC().Format("20060102"), id)
}

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	if v < 0 {
		return -RoundMoney(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
