package server

import (
	"cfp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages/:userId and POST /api/messages.
// The receiver comes from the path when present, otherwise from the body.
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Param userId path int false "Receiver user ID"
// @Param request body object{receiver_id=int,content=string} true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /messages/{userId} [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	senderID := c.Locals("userID").(uint)

	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Corps de requête invalide"))
	}

	receiverID := req.ReceiverID
	if c.Params("userId") != "" {
		id, err := s.parseID(c, "userId")
		if err != nil {
			return nil
		}
		receiverID = id
	}
	if receiverID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Destinataire requis"))
	}

	message, err := s.messageService.Send(c.UserContext(), senderID, receiverID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetConversation handles GET /api/messages/:userId. Fetching a
// conversation marks the other party's messages as read.
// @Summary Conversation history with one user
// @Tags messages
// @Produce json
// @Param userId path int true "Other user ID"
// @Success 200 {array} models.Message
// @Security BearerAuth
// @Router /messages/{userId} [get]
func (s *Server) GetConversation(c *fiber.Ctx) error {
	viewerID := c.Locals("userID").(uint)
	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	messages, err := s.messageService.Conversation(c.UserContext(), viewerID, otherID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// GetConversations handles GET /api/messages/conversations. One row per
// correspondent with their unread count, most recent exchange first.
func (s *Server) GetConversations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	conversations, err := s.messageService.Conversations(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(conversations)
}

// GetMessageUnreadCount handles GET /api/messages/unread-count
func (s *Server) GetMessageUnreadCount(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	count, err := s.messageService.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}
