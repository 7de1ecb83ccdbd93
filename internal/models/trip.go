package models

import (
	"database/sql"
	"time"
)

// Trip is one journey on the metro. At most one trip per user is active at a
// time; ended trips are immutable history.
type Trip struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"user_id"`
	FromStation    string         `db:"from_station" json:"from_station"`
	ToStation      string         `db:"to_station" json:"to_station"`
	Line           string         `db:"line" json:"line"`
	CurrentStation sql.NullString `db:"current_station" json:"current_station,omitempty"`
	StartTime      time.Time      `db:"start_time" json:"start_time"`
	EndTime        sql.NullTime   `db:"end_time" json:"end_time,omitempty"`
	Active         bool           `db:"active" json:"active"`
}
