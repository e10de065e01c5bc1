package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/model"
)

// ReportStore aggregates paid-job revenue over a half-open date window.
type ReportStore interface {
	BestProfession(ctx context.Context, start, endExclusive time.Time) (*model.ProfessionTotal, error)
	BestClients(ctx context.Context, start, endExclusive time.Time, limit int) ([]model.ClientTotal, error)
}

type ClientsExportGenerator interface {
	Generate(report model.ClientsReport) ([]byte, error)
}

type ReportService struct {
	store ReportStore
	excel ClientsExportGenerator
}

type ClientsExportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(store ReportStore, excel ClientsExportGenerator) *ReportService {
	return &ReportService{store: store, excel: excel}
}

// BestProfession reports the profession with the highest paid-job total
// between start and end. The given end date itself is included: the query
// window runs up to the start of the following day.
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionTotal, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	top, err := s.store.BestProfession(ctx, start, end.Add(24*time.Hour))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: no paid jobs in period", ErrNotFound)
		}
		return nil, err
	}
	return top, nil
}

func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientTotal, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	clients, err := s.store.BestClients(ctx, start, end.Add(24*time.Hour), limit)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []model.ClientTotal{}
	}
	return clients, nil
}

// ExportBestClients renders the best-clients report as a spreadsheet.
func (s *ReportService) ExportBestClients(ctx context.Context, start, end time.Time, limit int) (*ClientsExportResult, error) {
	clients, err := s.BestClients(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	content, err := s.excel.Generate(model.ClientsReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Rows:        clients,
	})
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("best-clients-%s-%s.xlsx",
		start.Format("20060102"), end.Format("20060102"))
	return &ClientsExportResult{FileName: fileName, Content: content}, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start must be before or equal to end", ErrInvalidInput)
	}
	return nil
}
