package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"commute-service/internal/models"
)

var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrActiveTripExists = errors.New("an active trip already exists")
	ErrTripNotEditable  = errors.New("trip is not owned by caller or already ended")
)

const tripColumns = `id, user_id, from_station, to_station, line, current_station, start_time, end_time, active`

// TripRepository owns the trip lifecycle. Trip exclusivity is enforced by the
// partial unique index on active trips, so concurrent starts cannot both win.
type TripRepository interface {
	Start(ctx context.Context, userID, fromStation, toStation, line string) (models.Trip, error)
	End(ctx context.Context, tripID, userID string) (models.Trip, error)
	UpdateCurrentStation(ctx context.Context, tripID, userID, station string) (models.Trip, error)
	ListForUser(ctx context.Context, userID string) ([]models.Trip, error)
	ActiveForUser(ctx context.Context, userID string) (models.Trip, error)
	ActiveByUser(ctx context.Context) (map[string]models.Trip, error)
}

// TripRepo is a sqlx implementation of TripRepository.
type TripRepo struct {
	db *sqlx.DB
}

// NewTripRepo constructs a TripRepo.
func NewTripRepo(db *sqlx.DB) *TripRepo {
	return &TripRepo{db: db}
}

// Start creates an active trip. The insert races safely: the unique index
// rejects a second active trip for the same user.
func (r *TripRepo) Start(ctx context.Context, userID, fromStation, toStation, line string) (models.Trip, error) {
	var trip models.Trip
	err := r.db.QueryRowxContext(ctx, `INSERT INTO trips (id, user_id, from_station, to_station, line, current_station)
        VALUES ($1, $2, $3, $4, $5, $3) RETURNING `+tripColumns,
		uuid.NewString(), userID, fromStation, toStation, line).StructScan(&trip)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.Trip{}, ErrActiveTripExists
		}
		return models.Trip{}, err
	}
	return trip, nil
}

// End closes an active trip owned by the caller. The conditional update is
// the atomicity guarantee: only one of two concurrent ends sees active=true.
func (r *TripRepo) End(ctx context.Context, tripID, userID string) (models.Trip, error) {
	var trip models.Trip
	err := r.db.QueryRowxContext(ctx, `UPDATE trips SET active = FALSE, end_time = NOW()
        WHERE id=$1 AND user_id=$2 AND active RETURNING `+tripColumns, tripID, userID).StructScan(&trip)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, r.editFailure(ctx, tripID)
	}
	return trip, err
}

// UpdateCurrentStation records trip progress while the trip is active.
func (r *TripRepo) UpdateCurrentStation(ctx context.Context, tripID, userID, station string) (models.Trip, error) {
	var trip models.Trip
	err := r.db.QueryRowxContext(ctx, `UPDATE trips SET current_station=$3
        WHERE id=$1 AND user_id=$2 AND active RETURNING `+tripColumns, tripID, userID, station).StructScan(&trip)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, r.editFailure(ctx, tripID)
	}
	return trip, err
}

// editFailure distinguishes an absent trip from one the caller may not edit.
func (r *TripRepo) editFailure(ctx context.Context, tripID string) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM trips WHERE id=$1)`, tripID); err != nil {
		return err
	}
	if !exists {
		return ErrTripNotFound
	}
	return ErrTripNotEditable
}

// ListForUser returns the user's trip history, most recent first.
func (r *TripRepo) ListForUser(ctx context.Context, userID string) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.db.SelectContext(ctx, &trips, `SELECT `+tripColumns+` FROM trips
        WHERE user_id=$1 ORDER BY start_time DESC`, userID)
	return trips, err
}

// ActiveForUser returns the user's active trip, if any.
func (r *TripRepo) ActiveForUser(ctx context.Context, userID string) (models.Trip, error) {
	var trip models.Trip
	err := r.db.GetContext(ctx, &trip, `SELECT `+tripColumns+` FROM trips WHERE user_id=$1 AND active`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, ErrTripNotFound
	}
	return trip, err
}

// ActiveByUser returns every active trip keyed by user id, for discovery.
func (r *TripRepo) ActiveByUser(ctx context.Context) (map[string]models.Trip, error) {
	var trips []models.Trip
	if err := r.db.SelectContext(ctx, &trips, `SELECT `+tripColumns+` FROM trips WHERE active`); err != nil {
		return nil, err
	}
	out := make(map[string]models.Trip, len(trips))
	for _, trip := range trips {
		out[trip.UserID] = trip
	}
	return out, nil
}
