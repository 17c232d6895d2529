package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	// UpsertIntent records a checkout keyed by order code. An existing paid
	// row is left untouched.
	UpsertIntent(ctx context.Context, p *models.Payment) error
	FindByOrderCode(ctx context.Context, orderCode string) (*models.Payment, error)
	UpdateRaw(ctx context.Context, id uuid.UUID, raw models.PaymentRaw) error
	// Transition moves a payment that is not yet paid to status; false means
	// it was already paid.
	Transition(ctx context.Context, id uuid.UUID, status string) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) UpsertIntent(ctx context.Context, p *models.Payment) error {
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":       p.UserID,
			"amount":        p.Amount,
			"plan":          p.Plan,
			"period_months": p.PeriodMonths,
			"description":   p.Description,
			"raw":           gorm.Expr("EXCLUDED.raw"),
			"status":        gorm.Expr("EXCLUDED.status"),
			"updated_at":    gorm.Expr("EXCLUDED.updated_at"),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "payments.status <> ?", Vars: []interface{}{models.PaymentPaid}},
		}},
	}).Create(p).Error)
}

func (r *paymentRepository) FindByOrderCode(ctx context.Context, orderCode string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("order_code = ?", orderCode).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *paymentRepository) UpdateRaw(ctx context.Context, id uuid.UUID, raw models.PaymentRaw) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		UpdateColumn("raw", datatypes.JSON(b)).Error)
}

func (r *paymentRepository) Transition(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentPaid).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	return res.RowsAffected == 1, translate(res.Error)
}
