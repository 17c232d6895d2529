package handlers

import (
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves the AI assistant and direct-message history.
type ChatHandler struct {
	assistant *services.AssistantService
	chat      *services.ChatService
}

func NewChatHandler(assistant *services.AssistantService, chat *services.ChatService) *ChatHandler {
	return &ChatHandler{assistant: assistant, chat: chat}
}

func (h *ChatHandler) AIChat(c *fiber.Ctx) error {
	var req dto.AIChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	resp, err := h.assistant.Chat(c.UserContext(), middleware.CurrentUser(c), req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *ChatHandler) AIMessages(c *fiber.Ctx) error {
	messages, err := h.assistant.History(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessagesResponse{Messages: messages})
}

func (h *ChatHandler) Users(c *fiber.Ctx) error {
	users, err := h.chat.ListUsers(c.UserContext(), middleware.CurrentUser(c), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "userId")
	if !ok {
		return err
	}
	messages, err := h.chat.Conversation(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessagesResponse{Messages: messages})
}
