package models

import "time"

// Message belongs to the conversation between its two endpoints. Seq is the
// arrival order and breaks timestamp ties.
type Message struct {
	ID         string    `db:"id" json:"id"`
	Seq        int64     `db:"seq" json:"-"`
	FromUserID string    `db:"from_user_id" json:"from_user_id"`
	ToUserID   string    `db:"to_user_id" json:"to_user_id"`
	Content    string    `db:"content" json:"content"`
	Read       bool      `db:"read" json:"read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ConversationSummary is the derived per-counterpart view: latest message
// plus how many messages the viewer has not read yet.
type ConversationSummary struct {
	CounterpartID string  `json:"counterpart_id"`
	LastMessage   Message `json:"last_message"`
	UnreadCount   int     `json:"unread_count"`
}
