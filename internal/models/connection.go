package models

import (
	"database/sql"
	"time"
)

// ConnectionStatus is the lifecycle state of a connection request.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Connection is the single record kept per unordered user pair. The
// requester/recipient split records who must respond; once accepted the
// relationship is symmetric.
type Connection struct {
	ID          string           `db:"id" json:"id"`
	RequesterID string           `db:"requester_id" json:"requester_id"`
	RecipientID string           `db:"recipient_id" json:"recipient_id"`
	Status      ConnectionStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	RespondedAt sql.NullTime     `db:"responded_at" json:"responded_at,omitempty"`
}

// Counterpart returns the other side of the pair.
func (c Connection) Counterpart(userID string) string {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}

// Involves reports whether the user is one of the two parties.
func (c Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}
