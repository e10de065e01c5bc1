package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/config"
	"github.com/nurpe/contractor-billing/internal/model"
	"github.com/nurpe/contractor-billing/internal/repository"
)

// LedgerStore runs ledger operations inside a single storage transaction.
type LedgerStore interface {
	InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error
}

// LedgerService implements the two balance-moving operations. Correctness
// under concurrency relies on the row locks taken by LedgerTx, not on any
// in-process synchronization.
type LedgerService struct {
	store           LedgerStore
	depositLimitPct decimal.Decimal
	now             func() time.Time
}

func NewLedgerService(store LedgerStore, cfg *config.Config) *LedgerService {
	return &LedgerService{
		store:           store,
		depositLimitPct: decimal.NewFromFloat(cfg.Billing.DepositLimitPct),
		now:             time.Now,
	}
}

// PayJob transfers the job price from the client's balance to the
// contractor's balance and marks the job paid, all or nothing.
// Lock order is job row first, then both profile rows in ascending id order.
func (s *LedgerService) PayJob(ctx context.Context, jobID uuid.UUID, acting *model.Profile) error {
	if acting == nil {
		return ErrNotFound
	}

	return s.store.InTx(ctx, func(tx repository.LedgerTx) error {
		job, err := tx.JobForUpdate(ctx, jobID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: job does not exist", ErrNotFound)
			}
			return err
		}

		if job.Contract.ClientID != acting.ID {
			return fmt.Errorf("%w: you can only pay your own contracts", ErrForbidden)
		}

		client, contractor, err := lockProfilePair(ctx, tx, job.Contract.ClientID, job.Contract.ContractorID)
		if err != nil {
			return err
		}

		if job.Paid {
			return ErrAlreadyPaid
		}
		if client.Balance.LessThan(job.Price) {
			return fmt.Errorf("%w: job cannot be paid", ErrInsufficientFunds)
		}

		if err := tx.UpdateBalance(ctx, client.ID, client.Balance.Sub(job.Price).Round(2)); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, contractor.ID, contractor.Balance.Add(job.Price).Round(2)); err != nil {
			return err
		}
		return tx.MarkJobPaid(ctx, job.ID, s.now())
	})
}

// DepositFunds moves amount from the acting profile to the target profile.
// The amount is capped at a fraction of the acting client's outstanding
// unpaid job total. Depositing onto yourself is allowed and nets to zero.
func (s *LedgerService) DepositFunds(ctx context.Context, targetID uuid.UUID, amount decimal.Decimal, acting *model.Profile) error {
	if acting == nil {
		return ErrNotFound
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: deposit must be positive", ErrInvalidInput)
	}

	return s.store.InTx(ctx, func(tx repository.LedgerTx) error {
		if targetID == acting.ID {
			target, err := tx.ProfileForUpdate(ctx, targetID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: target profile does not exist", ErrNotFound)
				}
				return err
			}
			if err := s.checkDepositLimit(ctx, tx, acting.ID, amount); err != nil {
				return err
			}
			// Debit and credit land on the same locked row.
			balance := target.Balance.Sub(amount).Add(amount).Round(2)
			return tx.UpdateBalance(ctx, target.ID, balance)
		}

		target, depositor, err := lockProfilePair(ctx, tx, targetID, acting.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: target profile does not exist", ErrNotFound)
			}
			return err
		}

		if err := s.checkDepositLimit(ctx, tx, acting.ID, amount); err != nil {
			return err
		}
		if depositor.Balance.LessThan(amount) {
			return fmt.Errorf("%w: deposit exceeds available balance", ErrInsufficientFunds)
		}

		if err := tx.UpdateBalance(ctx, depositor.ID, depositor.Balance.Sub(amount).Round(2)); err != nil {
			return err
		}
		return tx.UpdateBalance(ctx, target.ID, target.Balance.Add(amount).Round(2))
	})
}

func (s *LedgerService) checkDepositLimit(ctx context.Context, tx repository.LedgerTx, clientID uuid.UUID, amount decimal.Decimal) error {
	totalUnpaid, err := tx.SumUnpaidPrices(ctx, clientID)
	if err != nil {
		return err
	}
	if !totalUnpaid.Valid || totalUnpaid.Decimal.Sign() <= 0 {
		return fmt.Errorf("%w: no unpaid jobs to deposit against", ErrDepositLimitExceeded)
	}
	limit := totalUnpaid.Decimal.Mul(s.depositLimitPct)
	if amount.GreaterThan(limit) {
		return fmt.Errorf("%w: deposit above %s", ErrDepositLimitExceeded, limit.Round(2))
	}
	return nil
}

// lockProfilePair locks two distinct profile rows in ascending id order
// and returns them in argument order. Every transaction that locks more
// than one profile must go through here, otherwise opposing transfers
// can deadlock on each other's row locks.
func lockProfilePair(ctx context.Context, tx repository.LedgerTx, aID, bID uuid.UUID) (*model.Profile, *model.Profile, error) {
	firstID, secondID := aID, bID
	if bytes.Compare(secondID[:], firstID[:]) < 0 {
		firstID, secondID = secondID, firstID
	}

	first, err := tx.ProfileForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := tx.ProfileForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == aID {
		return first, second, nil
	}
	return second, first, nil
}
