package entity

import "time"

// Fund records a completed monetary contribution. The charge itself is
// handled by the external payment provider; only the outcome is stored.
type Fund struct {
	ID          string
	DonorName   string
	DonorEmail  string
	AmountCents int64
	Currency    string
	CreatedAt   time.Time
}
