package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
)

type Profile struct {
	ID         uuid.UUID       `json:"id"`
	Role       Role            `json:"role"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Profession string          `json:"profession"`
	Balance    decimal.Decimal `json:"balance"`
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
