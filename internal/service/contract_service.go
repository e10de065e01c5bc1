package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/model"
)

// ContractStore is the read side used by listing and receipts.
type ContractStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListContractsForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error)
	ListUnpaidJobsForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Job, error)
	GetReceipt(ctx context.Context, jobID uuid.UUID) (*model.Receipt, error)
}

type ReceiptGenerator interface {
	Generate(receipt model.Receipt) ([]byte, error)
}

type ContractService struct {
	store ContractStore
	pdf   ReceiptGenerator
}

type ReceiptResult struct {
	FileName string
	Content  []byte
}

func NewContractService(store ContractStore, pdf ReceiptGenerator) *ContractService {
	return &ContractService{store: store, pdf: pdf}
}

// GetContract returns the contract only when the acting profile is one of
// its parties. Anything else, including an unknown id and a missing acting
// profile, is reported as not found.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID, acting *model.Profile) (*model.Contract, error) {
	if acting == nil {
		return nil, ErrNotFound
	}
	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !contract.IsParty(acting.ID) {
		return nil, ErrNotFound
	}
	return contract, nil
}

// ListContracts returns the acting profile's non-terminated contracts.
// No acting profile means an empty list, not an error.
func (s *ContractService) ListContracts(ctx context.Context, acting *model.Profile) ([]model.Contract, error) {
	if acting == nil {
		return []model.Contract{}, nil
	}
	contracts, err := s.store.ListContractsForProfile(ctx, acting.ID)
	if err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = []model.Contract{}
	}
	return contracts, nil
}

func (s *ContractService) ListUnpaidJobs(ctx context.Context, acting *model.Profile) ([]model.Job, error) {
	if acting == nil {
		return []model.Job{}, nil
	}
	jobs, err := s.store.ListUnpaidJobsForProfile(ctx, acting.ID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	return jobs, nil
}

// JobReceipt renders a payment receipt for a paid job. Visibility follows
// GetContract: only the contract's parties may fetch it.
func (s *ContractService) JobReceipt(ctx context.Context, jobID uuid.UUID, acting *model.Profile) (*ReceiptResult, error) {
	if acting == nil {
		return nil, ErrNotFound
	}
	receipt, err := s.store.GetReceipt(ctx, jobID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !receipt.Contract.IsParty(acting.ID) {
		return nil, ErrNotFound
	}
	if !receipt.Job.Paid {
		return nil, fmt.Errorf("%w: receipt is available after payment", ErrNotPaid)
	}

	content, err := s.pdf.Generate(*receipt)
	if err != nil {
		return nil, err
	}
	return &ReceiptResult{
		FileName: fmt.Sprintf("receipt-%s.pdf", receipt.Job.ID),
		Content:  content,
	}, nil
}
