package dto

import "encoding/json"

type CreatePaymentRequest struct {
	OrderCode   int64  `json:"orderCode"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CancelURL   string `json:"cancelUrl"`
	ReturnURL   string `json:"returnUrl"`
}

// PaymentStatusResponse mirrors the provider lookup.
type PaymentStatusResponse struct {
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"raw"`
}

type WebhookAck struct {
	Success bool `json:"success"`
}
