package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"commute-service/internal/models"
)

// WaveRepository stores waves. Rows are append-only; deduplication is a
// read-side concern.
type WaveRepository interface {
	Create(ctx context.Context, fromUserID, toUserID string, cooldown time.Duration) (models.Wave, bool, error)
	ListSignalsFor(ctx context.Context, userID string) ([]models.WaveSignal, error)
	ListSentBy(ctx context.Context, userID string, since time.Time) ([]models.Wave, error)
}

// WaveRepo is a sqlx implementation of WaveRepository.
type WaveRepo struct {
	db *sqlx.DB
}

// NewWaveRepo constructs a WaveRepo.
func NewWaveRepo(db *sqlx.DB) *WaveRepo {
	return &WaveRepo{db: db}
}

// Create inserts a wave row and reports whether it repeats an earlier wave
// inside the cooldown window. The check and the insert run in one transaction
// under an advisory lock keyed on the directed pair, so concurrent sends
// serialize and exactly one of them observes the pair as fresh.
func (r *WaveRepo) Create(ctx context.Context, fromUserID, toUserID string, cooldown time.Duration) (models.Wave, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Wave{}, false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		fromUserID+"->"+toUserID); err != nil {
		return models.Wave{}, false, err
	}

	repeat := false
	var last time.Time
	err = tx.GetContext(ctx, &last, `SELECT created_at FROM waves
        WHERE from_user_id=$1 AND to_user_id=$2 ORDER BY created_at DESC LIMIT 1`, fromUserID, toUserID)
	switch {
	case err == nil:
		repeat = time.Since(last) < cooldown
	case errors.Is(err, sql.ErrNoRows):
	default:
		return models.Wave{}, false, err
	}

	var wave models.Wave
	err = tx.QueryRowxContext(ctx, `INSERT INTO waves (id, from_user_id, to_user_id)
        VALUES ($1, $2, $3) RETURNING id, from_user_id, to_user_id, created_at`,
		uuid.NewString(), fromUserID, toUserID).StructScan(&wave)
	if err != nil {
		return models.Wave{}, false, err
	}
	return wave, repeat, tx.Commit()
}

// ListSignalsFor collapses the waves received by a user into one signal per
// sender, newest first. Every stored row still counts toward Count.
func (r *WaveRepo) ListSignalsFor(ctx context.Context, userID string) ([]models.WaveSignal, error) {
	var signals []models.WaveSignal
	err := r.db.SelectContext(ctx, &signals, `SELECT from_user_id, MAX(created_at) AS last_waved, COUNT(*) AS count
        FROM waves WHERE to_user_id=$1 GROUP BY from_user_id ORDER BY last_waved DESC`, userID)
	return signals, err
}

// ListSentBy returns waves sent by the user since the given time.
func (r *WaveRepo) ListSentBy(ctx context.Context, userID string, since time.Time) ([]models.Wave, error) {
	var waves []models.Wave
	err := r.db.SelectContext(ctx, &waves, `SELECT id, from_user_id, to_user_id, created_at FROM waves
        WHERE from_user_id=$1 AND created_at >= $2 ORDER BY created_at DESC`, userID, since)
	return waves, err
}
