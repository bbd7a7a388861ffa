package domain

import (
	"context"
	"time"
)

// Message is a directed communication between two users. IsRead starts false
// and only ever transitions to true, when the receiver opens the conversation.
// Rows are deleted solely by a conversation purge, which always removes both
// directions of a pair together.
type Message struct {
	ID         int    `json:"id" gorm:"primaryKey"`
	SenderID   int    `json:"senderId" gorm:"index;notNull"`
	ReceiverID int    `json:"receiverId" gorm:"index;notNull"`
	Content    string `json:"content" gorm:"type:text"`
	IsRead     bool   `json:"isRead" gorm:"notNull;default:false"`

	CreatedAt time.Time `json:"createdAt"`
}

// Counterpart is another user annotated with how many of their messages to
// the caller are still unread.
type Counterpart struct {
	User
	UnreadCount int `json:"unreadCount"`
}

// MessageService exposes per-pair message history with chronological
// ordering, read-marking, derived unread counts, and conversation purge.
// Unread counts are always computed from the store, never cached, so the sum
// over Counterparts always reconciles with TotalUnread.
type MessageService interface {
	// Counterparts returns every other user, each with the number of
	// unread messages they have sent to userID.
	Counterparts(ctx context.Context, userID int) ([]Counterpart, error)

	// Conversation returns the full history between the two users, oldest
	// first. As a side effect it marks all unread messages addressed to
	// userID in this conversation as read, atomically with the fetch.
	Conversation(ctx context.Context, userID, otherID int) ([]Message, error)

	// Send stores a new unread message.
	Send(ctx context.Context, msg *Message) error

	// TotalUnread counts all unread messages addressed to userID.
	TotalUnread(ctx context.Context, userID int) (int, error)

	// Purge deletes the conversation between the two users in both
	// directions. Purging an empty conversation is not an error.
	Purge(ctx context.Context, userID, otherID int) error
}
