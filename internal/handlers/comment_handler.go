package handlers

import (
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	comments, err := h.comments.ListComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	id, ok, err := paramID(c, "songId")
	if !ok {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	comment, err := h.comments.AddComment(c.UserContext(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
