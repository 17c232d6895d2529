package handlers

import (
	"context"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// OnlineCounter reports live realtime sessions on this instance.
type OnlineCounter interface {
	OnlineCount() int
}

type HealthHandler struct {
	ping   func(ctx context.Context) error
	online OnlineCounter
}

func NewHealthHandler(ping func(ctx context.Context) error, online OnlineCounter) *HealthHandler {
	return &HealthHandler{ping: ping, online: online}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, dbStatus := "ok", "ok"
	if err := h.ping(ctx); err != nil {
		status, dbStatus = "degraded", "unhealthy: "+err.Error()
	}

	resp := dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	}
	if h.online != nil {
		resp.OnlineUsers = h.online.OnlineCount()
	}
	return c.JSON(resp)
}
