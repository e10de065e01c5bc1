package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/model"
)

// LedgerTx is the set of row operations available inside a ledger
// transaction. Every read takes an exclusive row lock so concurrent
// payments and deposits serialize on the rows they touch.
type LedgerTx interface {
	JobForUpdate(ctx context.Context, jobID uuid.UUID) (*model.JobWithContract, error)
	ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error
	SumUnpaidPrices(ctx context.Context, clientID uuid.UUID) (decimal.NullDecimal, error)
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// InTx runs fn inside a single database transaction. Any error from fn
// rolls the whole transaction back, so partial balance changes never
// reach the store.
func (r *LedgerRepository) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{db: tx})
	})
}

type ledgerTx struct {
	db *gorm.DB
}

func (t *ledgerTx) JobForUpdate(ctx context.Context, jobID uuid.UUID) (*model.JobWithContract, error) {
	var row struct {
		ID           uuid.UUID
		ContractID   uuid.UUID
		Description  string
		Price        decimal.Decimal
		Paid         bool
		PaymentDate  *time.Time
		ClientID     uuid.UUID
		ContractorID uuid.UUID
		Status       model.ContractStatus
	}

	err := t.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.contract_id,
			j.description,
			j.price,
			j.paid,
			j.payment_date,
			c.client_id,
			c.contractor_id,
			c.status
		FROM jobs j
		INNER JOIN contracts c ON c.id = j.contract_id
		WHERE j.id = ?
		FOR UPDATE OF j
	`, jobID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.JobWithContract{
		Job: model.Job{
			ID:          row.ID,
			ContractID:  row.ContractID,
			Description: row.Description,
			Price:       row.Price,
			Paid:        row.Paid,
			PaymentDate: row.PaymentDate,
		},
		Contract: model.Contract{
			ID:           row.ContractID,
			ClientID:     row.ClientID,
			ContractorID: row.ContractorID,
			Status:       row.Status,
		},
	}, nil
}

func (t *ledgerTx) ProfileForUpdate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := t.db.WithContext(ctx).Raw(`
		SELECT id, role, first_name, last_name, profession, balance
		FROM profiles
		WHERE id = ?
		FOR UPDATE
	`, id).Scan(&profile).Error; err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

func (t *ledgerTx) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return t.db.WithContext(ctx).Exec(`
		UPDATE profiles SET balance = ? WHERE id = ?
	`, balance, id).Error
}

func (t *ledgerTx) MarkJobPaid(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	return t.db.WithContext(ctx).Exec(`
		UPDATE jobs SET paid = TRUE, payment_date = ? WHERE id = ?
	`, at, jobID).Error
}

func (t *ledgerTx) SumUnpaidPrices(ctx context.Context, clientID uuid.UUID) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal
	if err := t.db.WithContext(ctx).Raw(`
		SELECT SUM(j.price)
		FROM jobs j
		INNER JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ? AND j.paid = FALSE
	`, clientID).Scan(&total).Error; err != nil {
		return decimal.NullDecimal{}, err
	}
	return total, nil
}
