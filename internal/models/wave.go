package models

import "time"

// Wave is a one-way interest signal. Rows are append-only and never mutated.
type Wave struct {
	ID         string    `db:"id" json:"id"`
	FromUserID string    `db:"from_user_id" json:"from_user_id"`
	ToUserID   string    `db:"to_user_id" json:"to_user_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// WaveSignal collapses the waves from one sender into a single indicator.
// Count is kept for storage-level accounting; clients surface the signal,
// not the count.
type WaveSignal struct {
	FromUserID string    `db:"from_user_id" json:"from_user_id"`
	LastWaved  time.Time `db:"last_waved" json:"last_waved"`
	Count      int       `db:"count" json:"count"`
}
