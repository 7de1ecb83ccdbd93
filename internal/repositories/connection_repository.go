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
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrConnectionExists     = errors.New("connection already exists")
	ErrConnectionNotPending = errors.New("connection not pending")
	ErrNotResponder         = errors.New("caller is not the responder")
)

const connectionColumns = `id, requester_id, recipient_id, status, created_at, responded_at`

// ConnectionRepository owns the per-pair connection state machine. All
// transitions are transactional read-modify-writes on the pair row.
type ConnectionRepository interface {
	Request(ctx context.Context, requesterID, recipientID string, rerequestAfterReject bool) (models.Connection, error)
	Respond(ctx context.Context, connectionID, responderID string, accept bool) (models.Connection, error)
	GetForPair(ctx context.Context, userA, userB string) (models.Connection, error)
	ListForUser(ctx context.Context, userID string) ([]models.Connection, error)
	ListAccepted(ctx context.Context, userID string) ([]models.Connection, error)
	ListPendingForRecipient(ctx context.Context, userID string) ([]models.Connection, error)
	AcceptedExists(ctx context.Context, userA, userB string) (bool, error)
}

// ConnectionRepo is a sqlx implementation of ConnectionRepository.
type ConnectionRepo struct {
	db *sqlx.DB
}

// NewConnectionRepo constructs a ConnectionRepo.
func NewConnectionRepo(db *sqlx.DB) *ConnectionRepo {
	return &ConnectionRepo{db: db}
}

// Request creates a pending connection for the pair. A pending or accepted
// record blocks the request; a rejected one blocks it too unless
// rerequestAfterReject is set, in which case the record resets to pending
// with the new requester. The unique pair index catches creation races.
func (r *ConnectionRepo) Request(ctx context.Context, requesterID, recipientID string, rerequestAfterReject bool) (models.Connection, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Connection{}, err
	}
	defer tx.Rollback()

	var existing models.Connection
	err = tx.GetContext(ctx, &existing, `SELECT `+connectionColumns+` FROM connections
        WHERE LEAST(requester_id, recipient_id) = LEAST($1::text, $2::text)
          AND GREATEST(requester_id, recipient_id) = GREATEST($1::text, $2::text)
        FOR UPDATE`, requesterID, recipientID)
	switch {
	case err == nil:
		if existing.Status != models.ConnectionRejected || !rerequestAfterReject {
			return models.Connection{}, ErrConnectionExists
		}
		var out models.Connection
		err = tx.QueryRowxContext(ctx, `UPDATE connections
            SET requester_id=$2, recipient_id=$3, status='pending', created_at=NOW(), responded_at=NULL
            WHERE id=$1 RETURNING `+connectionColumns, existing.ID, requesterID, recipientID).StructScan(&out)
		if err != nil {
			return models.Connection{}, err
		}
		return out, tx.Commit()
	case errors.Is(err, sql.ErrNoRows):
		var out models.Connection
		err = tx.QueryRowxContext(ctx, `INSERT INTO connections (id, requester_id, recipient_id, status)
            VALUES ($1, $2, $3, 'pending') RETURNING `+connectionColumns,
			uuid.NewString(), requesterID, recipientID).StructScan(&out)
		if err != nil {
			if isUniqueViolation(err) {
				return models.Connection{}, ErrConnectionExists
			}
			return models.Connection{}, err
		}
		return out, tx.Commit()
	default:
		return models.Connection{}, err
	}
}

// Respond transitions a pending request to accepted or rejected. Only the
// recipient may respond; the row lock guarantees a single winner under
// concurrent responses.
func (r *ConnectionRepo) Respond(ctx context.Context, connectionID, responderID string, accept bool) (models.Connection, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Connection{}, err
	}
	defer tx.Rollback()

	var conn models.Connection
	err = tx.GetContext(ctx, &conn, `SELECT `+connectionColumns+` FROM connections WHERE id=$1 FOR UPDATE`, connectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Connection{}, ErrConnectionNotFound
	}
	if err != nil {
		return models.Connection{}, err
	}
	if conn.RecipientID != responderID {
		return models.Connection{}, ErrNotResponder
	}
	if conn.Status != models.ConnectionPending {
		return models.Connection{}, ErrConnectionNotPending
	}

	status := models.ConnectionRejected
	if accept {
		status = models.ConnectionAccepted
	}
	var out models.Connection
	err = tx.QueryRowxContext(ctx, `UPDATE connections SET status=$2, responded_at=NOW()
        WHERE id=$1 RETURNING `+connectionColumns, connectionID, status).StructScan(&out)
	if err != nil {
		return models.Connection{}, err
	}
	return out, tx.Commit()
}

// GetForPair fetches the single record for an unordered pair.
func (r *ConnectionRepo) GetForPair(ctx context.Context, userA, userB string) (models.Connection, error) {
	var conn models.Connection
	err := r.db.GetContext(ctx, &conn, `SELECT `+connectionColumns+` FROM connections
        WHERE LEAST(requester_id, recipient_id) = LEAST($1::text, $2::text)
          AND GREATEST(requester_id, recipient_id) = GREATEST($1::text, $2::text)`, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Connection{}, ErrConnectionNotFound
	}
	return conn, err
}

// ListForUser returns every connection record involving the user.
func (r *ConnectionRepo) ListForUser(ctx context.Context, userID string) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.SelectContext(ctx, &conns, `SELECT `+connectionColumns+` FROM connections
        WHERE requester_id=$1 OR recipient_id=$1 ORDER BY created_at DESC`, userID)
	return conns, err
}

// ListAccepted returns the user's accepted connections.
func (r *ConnectionRepo) ListAccepted(ctx context.Context, userID string) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.SelectContext(ctx, &conns, `SELECT `+connectionColumns+` FROM connections
        WHERE (requester_id=$1 OR recipient_id=$1) AND status='accepted'
        ORDER BY responded_at DESC`, userID)
	return conns, err
}

// ListPendingForRecipient returns requests awaiting the user's response.
func (r *ConnectionRepo) ListPendingForRecipient(ctx context.Context, userID string) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.SelectContext(ctx, &conns, `SELECT `+connectionColumns+` FROM connections
        WHERE recipient_id=$1 AND status='pending' ORDER BY created_at DESC`, userID)
	return conns, err
}

// AcceptedExists reports whether the pair has an accepted connection.
func (r *ConnectionRepo) AcceptedExists(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM connections
        WHERE LEAST(requester_id, recipient_id) = LEAST($1::text, $2::text)
          AND GREATEST(requester_id, recipient_id) = GREATEST($1::text, $2::text)
          AND status='accepted')`, userA, userB)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
