package handlers

import (
	"log"

	"whisperbox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles HTTP requests for anonymous message delivery and the
// owner's inbox.
type MessageHandler struct {
	messageService *services.MessageService
	validate       *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validate:       validator.New(),
	}
}

// RegisterPublicRoutes registers the routes visitors reach without a session.
func (h *MessageHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Post("/send-message", h.HandleSendMessage)
}

// RegisterProtectedRoutes registers the owner-only inbox routes. The router
// must already carry the auth middleware.
func (h *MessageHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/accept-messages", h.HandleGetAcceptMessages)
	router.Post("/accept-messages", h.HandleSetAcceptMessages)
	router.Get("/get-messages", h.HandleGetMessages)
	router.Delete("/delete-message/:id", h.HandleDeleteMessage)
}

// SendMessageRequest represents the request body for an anonymous message.
type SendMessageRequest struct {
	Username string `json:"username" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// HandleSendMessage accepts an anonymous message for the named user.
func (h *MessageHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing send-message request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	if _, err := h.messageService.Submit(req.Username, req.Content); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Message sent successfully",
	})
}

// HandleGetAcceptMessages returns the caller's acceptance flag.
func (h *MessageHandler) HandleGetAcceptMessages(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	accepting, err := h.messageService.AcceptanceStatus(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"isAcceptingMessages": accepting,
	})
}

// SetAcceptMessagesRequest represents the request body for the acceptance toggle.
// A pointer distinguishes an omitted field from an explicit false.
type SetAcceptMessagesRequest struct {
	AcceptMessages *bool `json:"acceptMessages" validate:"required"`
}

// HandleSetAcceptMessages sets the caller's acceptance flag. Idempotent.
func (h *MessageHandler) HandleSetAcceptMessages(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	var req SetAcceptMessagesRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing accept-messages request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return respondValidationError(c, err)
	}

	state, err := h.messageService.ToggleAcceptance(userID, *req.AcceptMessages)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":             "Message acceptance updated",
		"isAcceptingMessages": state,
	})
}

// HandleGetMessages returns the caller's messages, newest-first. An empty
// inbox is 200 with an empty array.
func (h *MessageHandler) HandleGetMessages(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	messages, err := h.messageService.List(userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// HandleDeleteMessage permanently removes one of the caller's messages.
func (h *MessageHandler) HandleDeleteMessage(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Not authenticated",
		})
	}

	messageID := c.Params("id")
	if err := h.messageService.Delete(userID, messageID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Message deleted",
	})
}
