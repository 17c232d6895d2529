package dto

import "github.com/VoHoang203/VibeMelodyBE/internal/models"

type AIChatRequest struct {
	Message string `json:"message"`
}

type AIChatResponse struct {
	Intent    string         `json:"intent"`
	AIMessage models.Message `json:"aiMessage"`
	Songs     []SongCard     `json:"songs"`
}

type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}
