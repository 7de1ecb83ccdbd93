package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"commute-service/internal/models"
)

// threadLimit caps how many messages a single thread read returns. The cap
// is taken from the newest end so recent messages are always observable.
const threadLimit = 500

// MessageRepository stores the per-pair message history.
type MessageRepository interface {
	Create(ctx context.Context, fromUserID, toUserID, content string) (models.Message, error)
	ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
	MarkRead(ctx context.Context, viewerID, counterpartID string, upToSeq int64) (int64, error)
	ListConversations(ctx context.Context, viewerID string) ([]models.ConversationSummary, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create appends an unread message.
func (r *MessageRepo) Create(ctx context.Context, fromUserID, toUserID, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (id, from_user_id, to_user_id, content)
        VALUES ($1, $2, $3, $4) RETURNING id, seq, from_user_id, to_user_id, content, read, created_at`,
		uuid.NewString(), fromUserID, toUserID, content).StructScan(&msg)
	return msg, err
}

// ListConversation returns the pair's thread, oldest first. When the thread
// exceeds the cap, the newest messages win. Timestamp ties fall back to
// arrival order.
func (r *MessageRepo) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, seq, from_user_id, to_user_id, content, read, created_at
        FROM (
            SELECT id, seq, from_user_id, to_user_id, content, read, created_at
            FROM messages
            WHERE (from_user_id=$1 AND to_user_id=$2) OR (from_user_id=$2 AND to_user_id=$1)
            ORDER BY created_at DESC, seq DESC LIMIT $3
        ) newest
        ORDER BY created_at ASC, seq ASC`, userA, userB, threadLimit)
	return msgs, err
}

// MarkRead flags messages addressed to the viewer in the conversation, up to
// and including the given sequence number. Callers pass the highest seq they
// actually returned, so a message never becomes read before someone saw it.
// This is the only mutation path for the read flag.
func (r *MessageRepo) MarkRead(ctx context.Context, viewerID, counterpartID string, upToSeq int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE
        WHERE from_user_id=$2 AND to_user_id=$1 AND read = FALSE AND seq <= $3`,
		viewerID, counterpartID, upToSeq)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type conversationRow struct {
	CounterpartID string `db:"counterpart_id"`
	UnreadCount   int    `db:"unread_count"`
	models.Message
}

// ListConversations derives the per-counterpart view: last message plus the
// viewer's unread count, ordered by last message recency. Both are computed
// over the whole history in SQL, so no counterpart or unread message falls
// outside a scan window.
func (r *MessageRepo) ListConversations(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	var rows []conversationRow
	err := r.db.SelectContext(ctx, &rows, `WITH latest AS (
            SELECT DISTINCT ON (counterpart_id)
                   counterpart_id, id, seq, from_user_id, to_user_id, content, read, created_at
            FROM (
                SELECT CASE WHEN from_user_id=$1 THEN to_user_id ELSE from_user_id END AS counterpart_id,
                       id, seq, from_user_id, to_user_id, content, read, created_at
                FROM messages
                WHERE from_user_id=$1 OR to_user_id=$1
            ) all_rows
            ORDER BY counterpart_id, created_at DESC, seq DESC
        ), unread AS (
            SELECT from_user_id AS counterpart_id, COUNT(*) AS unread_count
            FROM messages
            WHERE to_user_id=$1 AND read = FALSE
            GROUP BY from_user_id
        )
        SELECT latest.counterpart_id, latest.id, latest.seq, latest.from_user_id, latest.to_user_id,
               latest.content, latest.read, latest.created_at,
               COALESCE(unread.unread_count, 0) AS unread_count
        FROM latest LEFT JOIN unread USING (counterpart_id)
        ORDER BY latest.created_at DESC, latest.seq DESC`, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ConversationSummary{
			CounterpartID: row.CounterpartID,
			LastMessage:   row.Message,
			UnreadCount:   row.UnreadCount,
		})
	}
	return out, nil
}
