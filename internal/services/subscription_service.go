package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/payos"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

// PaymentGateway is the checkout provider.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req payos.CheckoutRequest) (json.RawMessage, error)
	GetPaymentStatus(ctx context.Context, orderCode string) (*payos.PaymentStatus, error)
	VerifyWebhook(body []byte) (*payos.WebhookEvent, error)
}

type SubscriptionService struct {
	store   repository.Store
	gateway PaymentGateway
	now     func() time.Time
}

func NewSubscriptionService(store repository.Store, gateway PaymentGateway) *SubscriptionService {
	return &SubscriptionService{store: store, gateway: gateway, now: time.Now}
}

// PlanForAmount maps a paid amount (VND) to a plan and its length in months.
func PlanForAmount(amount int64) (string, int) {
	switch {
	case amount >= 360000:
		return models.PlanArtist6M, 6
	case amount >= 180000:
		return models.PlanArtist3M, 3
	default:
		return models.PlanArtist1M, 1
	}
}

func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID uuid.UUID, req *dto.CreatePaymentRequest) (json.RawMessage, error) {
	if req.OrderCode <= 0 || req.Amount <= 0 {
		return nil, invalid("orderCode and amount are required")
	}
	plan, _ := PlanForAmount(req.Amount)
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Artist subscription " + plan
	}

	raw, err := s.gateway.CreatePaymentLink(ctx, payos.CheckoutRequest{
		OrderCode:   req.OrderCode,
		Amount:      req.Amount,
		Description: description,
		CancelURL:   req.CancelURL,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		if errors.Is(err, payos.ErrMissingFields) {
			return nil, invalid("cancelUrl and returnUrl are required")
		}
		return nil, &UpstreamError{Op: "create payment", Err: err}
	}

	orderCode := strconv.FormatInt(req.OrderCode, 10)
	if err := s.RecordCheckoutIntent(ctx, orderCode, userID, req.Amount, description, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// RecordCheckoutIntent upserts a pending payment. A paid row stays paid.
func (s *SubscriptionService) RecordCheckoutIntent(ctx context.Context, orderCode string, userID uuid.UUID, amount int64, description string, raw json.RawMessage) error {
	plan, months := PlanForAmount(amount)
	payment := models.Payment{
		OrderCode:    orderCode,
		UserID:       userID,
		Amount:       amount,
		Currency:     "VND",
		Provider:     "PayOS",
		Status:       models.PaymentPending,
		Plan:         plan,
		PeriodMonths: months,
		Description:  description,
		Raw:          models.PaymentRaw{CreatePayment: raw},
	}
	if err := s.store.Payments().UpsertIntent(ctx, &payment); err != nil {
		return fmt.Errorf("failed to record payment %s: %w", orderCode, err)
	}
	return nil
}

// Reconcile pulls the provider status for orderCode and applies it.
func (s *SubscriptionService) Reconcile(ctx context.Context, orderCode string) (*dto.PaymentStatusResponse, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, invalid("orderCode is required")
	}
	status, err := s.gateway.GetPaymentStatus(ctx, orderCode)
	if err != nil {
		return nil, &UpstreamError{Op: "payment status", Err: err}
	}
	resp := &dto.PaymentStatusResponse{Status: status.Status, Raw: status.Raw}

	payment, err := s.store.Payments().FindByOrderCode(ctx, orderCode)
	if errors.Is(err, repository.ErrNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	payment.Raw.LastStatus = status.Raw
	if err := s.store.Payments().UpdateRaw(ctx, payment.ID, payment.Raw); err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentPaid {
		return resp, nil
	}

	if err := s.apply(ctx, payment, status.Status); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SubscriptionService) apply(ctx context.Context, payment *models.Payment, providerStatus string) error {
	switch providerStatus {
	case "PAID", "SUCCESS":
		return s.activate(ctx, payment)
	case "CANCELLED", "CANCELED":
		_, err := s.store.Payments().Transition(ctx, payment.ID, models.PaymentCanceled)
		return err
	case "FAILED":
		_, err := s.store.Payments().Transition(ctx, payment.ID, models.PaymentFailed)
		return err
	default:
		return nil
	}
}

// activate marks the payment paid and extends the artist period in one
// transaction. Only the caller that wins the transition extends.
func (s *SubscriptionService) activate(ctx context.Context, payment *models.Payment) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		won, err := tx.Payments().Transition(ctx, payment.ID, models.PaymentPaid)
		if err != nil || !won {
			return err
		}

		user, err := tx.Users().FindByIDForUpdate(ctx, payment.UserID)
		if err != nil {
			return fmt.Errorf("payment %s user: %w", payment.OrderCode, err)
		}

		now := s.now()
		months := payment.PeriodMonths
		if months <= 0 {
			months = 1
		}
		end := ExtendPeriod(now, user.ArtistProfile.Subscription.CurrentPeriodEnd, months)

		sub := models.ArtistSubscription{
			Plan:             payment.Plan,
			Status:           models.SubscriptionActive,
			CurrentPeriodEnd: &end,
			LastPaymentAt:    &now,
		}
		if err := tx.Users().ActivateArtist(ctx, user.ID, sub); err != nil {
			return err
		}
		slog.Info("artist subscription activated", "user_id", user.ID.String(), "order_code", payment.OrderCode, "plan", payment.Plan, "period_end", end)
		return nil
	})
}

// ExtendPeriod adds months to the later of now and the current period end.
func ExtendPeriod(now time.Time, currentEnd *time.Time, months int) time.Time {
	base := now
	if currentEnd != nil && currentEnd.After(now) {
		base = *currentEnd
	}
	return base.AddDate(0, months, 0)
}

// HandleWebhook verifies a provider notification and reconciles its order.
func (s *SubscriptionService) HandleWebhook(ctx context.Context, body []byte) error {
	event, err := s.gateway.VerifyWebhook(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if event.OrderCode == "" {
		return invalid("webhook without orderCode")
	}

	if payment, err := s.store.Payments().FindByOrderCode(ctx, event.OrderCode); err == nil {
		payment.Raw.Webhook = event.Raw
		if err := s.store.Payments().UpdateRaw(ctx, payment.ID, payment.Raw); err != nil {
			return err
		}
	}

	_, err = s.Reconcile(ctx, event.OrderCode)
	return err
}

func (s *SubscriptionService) Subscription(ctx context.Context, userID uuid.UUID) (*dto.SubscriptionResponse, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	resp := dto.NewSubscriptionResponse(user.ArtistProfile.Subscription, s.now())
	return &resp, nil
}

// CheckArtist reports whether the user may publish.
func (s *SubscriptionService) CheckArtist(ctx context.Context, userID uuid.UUID) (*dto.ArtistCheckResponse, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	now := s.now()
	return &dto.ArtistCheckResponse{
		IsArtist:     user.IsArtist,
		Active:       IsActiveArtist(user, now),
		Subscription: dto.NewSubscriptionResponse(user.ArtistProfile.Subscription, now),
	}, nil
}

func IsActiveArtist(user *models.User, now time.Time) bool {
	return user.IsArtist && user.ArtistProfile.Subscription.ActiveAt(now)
}

func (s *SubscriptionService) UpdateArtistProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateArtistProfileRequest) (*dto.UserResponse, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	if !user.IsArtist {
		return nil, ErrNotArtist
	}
	var update repository.ProfileUpdate
	if req.StageName != nil {
		name := strings.TrimSpace(*req.StageName)
		update.StageName = &name
	}
	update.Bio = req.Bio
	if req.ImageURL != nil {
		url := strings.TrimSpace(*req.ImageURL)
		update.ImageURL = &url
	}
	if err := s.store.Users().UpdateProfile(ctx, userID, update); err != nil {
		return nil, userLookupError(err)
	}
	user, err = s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	return dto.NewUserResponse(user, s.now()), nil
}

// ExpireLapsed marks subscriptions past their period end as inactive.
func (s *SubscriptionService) ExpireLapsed(ctx context.Context) (int64, error) {
	return s.store.Users().ExpireSubscriptions(ctx, s.now())
}

// StartExpirySweeper runs ExpireLapsed every interval until done is closed.
func (s *SubscriptionService) StartExpirySweeper(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := s.ExpireLapsed(context.Background())
				if err != nil {
					slog.Error("subscription sweep failed", "error", err)
				} else if n > 0 {
					slog.Info("subscriptions expired", "count", n)
				}
			case <-done:
				return
			}
		}
	}()
}

func userLookupError(err error) error {
	return lookupError(err, "user")
}
