package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionTotal is one row of the best-profession aggregate:
// paid-job revenue summed per profession over a date window.
type ProfessionTotal struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

// ClientTotal is one row of the best-clients aggregate.
type ClientTotal struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// ClientsReport is the best-clients aggregate plus its date window,
// the shape the spreadsheet export renders.
type ClientsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Rows        []ClientTotal
}
