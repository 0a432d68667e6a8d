package repository

import (
	"context"

	"cfp/internal/models"

	"gorm.io/gorm"
)

// ConversationSummary is one row of the conversation overview: the
// correspondent plus unread volume from them.
type ConversationSummary struct {
	UserID      uint   `json:"user_id"`
	Nom         string `json:"nom"`
	Prenom      string `json:"prenom"`
	Role        string `json:"role"`
	UnreadCount int64  `json:"unread_count"`
}

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	// Conversation returns the two-way history between two users,
	// oldest first, and marks messages addressed to viewerID as read.
	Conversation(ctx context.Context, viewerID, otherID uint, limit, offset int) ([]models.Message, error)
	Conversations(ctx context.Context, userID uint) ([]ConversationSummary, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) Conversation(ctx context.Context, viewerID, otherID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			viewerID, otherID, otherID, viewerID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	// Opening a conversation reads everything the other party sent
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, viewerID, false).
		Update("is_read", true).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return messages, nil
}

func (r *messageRepository) Conversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	var summaries []ConversationSummary
	// One row per correspondent the user has exchanged messages with
	err := r.db.WithContext(ctx).Raw(`
SELECT u.id AS user_id,
       u.nom,
       u.prenom,
       u.role,
       COALESCE(unread.n, 0) AS unread_count
FROM users u
JOIN (
    SELECT CASE WHEN sender_id = @uid THEN receiver_id ELSE sender_id END AS other_id,
           MAX(created_at) AS last_at
    FROM messages
    WHERE sender_id = @uid OR receiver_id = @uid
    GROUP BY other_id
) conv ON conv.other_id = u.id
LEFT JOIN (
    SELECT sender_id, COUNT(*) AS n
    FROM messages
    WHERE receiver_id = @uid AND is_read = FALSE
    GROUP BY sender_id
) unread ON unread.sender_id = u.id
ORDER BY conv.last_at DESC`,
		map[string]interface{}{"uid": userID}).
		Scan(&summaries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return summaries, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
