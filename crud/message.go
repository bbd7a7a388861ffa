package crud

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"gamerlog/domain"
	"gamerlog/errs"
)

// MessageService manages direct messages between users.
// It implements the domain.MessageService interface.
type MessageService struct {
	messageValidator
}

// messageValidator runs validations on incoming Message data.
// On success, it passes the data on to messageGorm.
// Otherwise, it returns the error of the validation that has failed.
type messageValidator struct {
	messageGorm
}

// messageGorm runs the conversation queries against the database. Unread
// counts are always aggregated from rows with is_read = false at call time,
// there is no counter column that could drift.
type messageGorm struct {
	db *gorm.DB
}

// NewMessageService returns an instance of MessageService.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		messageValidator{
			messageGorm{
				db: db,
			},
		},
	}
}

// Ensure the MessageService struct properly implements the domain.MessageService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MessageService = &MessageService{}

// Send runs validations needed for storing a new message.
func (mv *messageValidator) Send(ctx context.Context, msg *domain.Message) error {
	err := runMessageValFns(msg,
		mv.contentPresent,
		mv.receiverProvided,
	)
	if err != nil {
		return err
	}
	if err := mv.receiverExists(ctx, msg); err != nil {
		return err
	}
	return mv.messageGorm.Send(ctx, msg)
}

// runMessageValFns runs any number of functions of type messageValFn on the
// passed in Message object. If none of them returns an error, it returns nil.
// Otherwise, it returns the respective error.
func runMessageValFns(msg *domain.Message, fns ...messageValFn) error {
	for _, fn := range fns {
		if err := fn(msg); err != nil {
			return err
		}
	}
	return nil
}

// A messageValFn is any function that takes in a pointer to a domain.Message
// object and returns an error.
type messageValFn func(msg *domain.Message) error

// contentPresent makes sure the message body is not empty or whitespace only.
func (mv *messageValidator) contentPresent(msg *domain.Message) error {
	if strings.TrimSpace(msg.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Receiver and content are required.")
	}
	return nil
}

// receiverProvided makes sure a receiver id was submitted at all.
func (mv *messageValidator) receiverProvided(msg *domain.Message) error {
	if msg.ReceiverID <= 0 {
		return errs.Errorf(errs.EINVALID, "Receiver and content are required.")
	}
	return nil
}

// receiverExists makes sure the receiver resolves to an existing user.
func (mv *messageValidator) receiverExists(ctx context.Context, msg *domain.Message) error {
	err := mv.db.WithContext(ctx).First(&domain.User{}, "id = ?", msg.ReceiverID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.EINVALID, "The receiver does not exist.")
		}
		return err
	}
	return nil
}

// Counterparts retrieves every user except userID, each annotated with the
// number of unread messages that user has sent to userID. A single group-by
// aggregation produces all counts, so their sum always matches TotalUnread
// at the same instant.
func (mg *messageGorm) Counterparts(ctx context.Context, userID int) ([]domain.Counterpart, error) {
	var users []domain.User
	err := mg.db.WithContext(ctx).
		Where("id <> ?", userID).
		Order("name ASC, id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		SenderID int
		Count    int64
	}
	err = mg.db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("sender_id, count(*) AS count").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	unread := make(map[int]int64, len(rows))
	for _, row := range rows {
		unread[row.SenderID] = row.Count
	}

	counterparts := make([]domain.Counterpart, 0, len(users))
	for _, user := range users {
		counterparts = append(counterparts, domain.Counterpart{
			User:        user,
			UnreadCount: int(unread[user.ID]),
		})
	}
	return counterparts, nil
}

// Conversation marks every unread message from otherID to userID as read and
// returns the full history between the two users, oldest first. Both steps
// share one transaction: a message this call returns can never show up as
// unread to a count query racing behind it.
func (mg *messageGorm) Conversation(ctx context.Context, userID, otherID int) ([]domain.Message, error) {
	var msgs []domain.Message
	err := mg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, userID, false).
			Update("is_read", true).Error
		if err != nil {
			return err
		}
		return tx.
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				userID, otherID, otherID, userID).
			Order("created_at ASC, id ASC").
			Find(&msgs).Error
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Send stores the message with the read flag down.
func (mg *messageGorm) Send(ctx context.Context, msg *domain.Message) error {
	msg.IsRead = false
	return mg.db.WithContext(ctx).Create(msg).Error
}

// TotalUnread counts all unread messages addressed to userID across all
// senders.
func (mg *messageGorm) TotalUnread(ctx context.Context, userID int) (int, error) {
	var count int64
	err := mg.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Purge deletes all messages between the two users, in both directions, in
// one statement. Deleting nothing is fine, purging twice is a no-op.
func (mg *messageGorm) Purge(ctx context.Context, userID, otherID int) error {
	return mg.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Delete(&domain.Message{}).Error
}
