package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Job struct {
	ID          uuid.UUID       `json:"id"`
	ContractID  uuid.UUID       `json:"contractId"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
}

// JobWithContract is a job loaded together with its parent contract,
// the shape the ledger needs to validate a payment.
type JobWithContract struct {
	Job
	Contract Contract
}

// Receipt carries everything the pdf generator needs to render
// a payment receipt for a paid job.
type Receipt struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}
