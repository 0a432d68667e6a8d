package service

import (
	"context"
	"strings"

	"cfp/internal/models"
	"cfp/internal/repository"
)

const maxMessageLength = 2000

// MessageService handles direct messages between accounts.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
}

// NewMessageService creates the messaging service.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo}
}

// Send delivers a message from sender to receiver.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Le message est vide")
	}
	if len(content) > maxMessageLength {
		return nil, models.NewValidationError("Le message dépasse 2000 caractères")
	}
	if senderID == receiverID {
		return nil, models.NewValidationError("Impossible de s'envoyer un message à soi-même")
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !receiver.CanLogin() {
		return nil, models.NewValidationError("Le destinataire n'est pas joignable")
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Conversation returns the history with another user and marks their
// messages as read.
func (s *MessageService) Conversation(ctx context.Context, viewerID, otherID uint, limit, offset int) ([]models.Message, error) {
	return s.messageRepo.Conversation(ctx, viewerID, otherID, limit, offset)
}

// Conversations summarizes every correspondent with unread counts.
func (s *MessageService) Conversations(ctx context.Context, userID uint) ([]repository.ConversationSummary, error) {
	return s.messageRepo.Conversations(ctx, userID)
}

// UnreadCount returns how many messages await the user.
func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, userID)
}
