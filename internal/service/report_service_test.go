package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/model"
)

type fakeReportStore struct {
	top      *model.ProfessionTotal
	clients  []model.ClientTotal
	gotStart time.Time
	gotEnd   time.Time
	gotLimit int
}

func (f *fakeReportStore) BestProfession(_ context.Context, start, endExclusive time.Time) (*model.ProfessionTotal, error) {
	f.gotStart, f.gotEnd = start, endExclusive
	if f.top == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.top, nil
}

func (f *fakeReportStore) BestClients(_ context.Context, start, endExclusive time.Time, limit int) ([]model.ClientTotal, error) {
	f.gotStart, f.gotEnd, f.gotLimit = start, endExclusive, limit
	return f.clients, nil
}

type fakeClientsExport struct{}

func (fakeClientsExport) Generate(model.ClientsReport) ([]byte, error) {
	return []byte("xlsx"), nil
}

func TestBestProfession_WindowEndIsInclusiveDay(t *testing.T) {
	store := &fakeReportStore{top: &model.ProfessionTotal{Profession: "Programmer", Total: dec("2020")}}
	svc := NewReportService(store, fakeClientsExport{})

	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 8, 16, 0, 0, 0, 0, time.UTC)

	top, err := svc.BestProfession(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, "Programmer", top.Profession)

	// The given end date stays in the window: the exclusive bound is the
	// start of the following day.
	assert.Equal(t, start, store.gotStart)
	assert.Equal(t, end.Add(24*time.Hour), store.gotEnd)
}

func TestBestProfession_NoPaidJobs(t *testing.T) {
	svc := NewReportService(&fakeReportStore{}, fakeClientsExport{})

	_, err := svc.BestProfession(context.Background(),
		time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 8, 2, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBestProfession_InvalidWindow(t *testing.T) {
	svc := NewReportService(&fakeReportStore{}, fakeClientsExport{})

	_, err := svc.BestProfession(context.Background(), time.Time{}, time.Now())
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.BestProfession(context.Background(),
		time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestBestClients_PassesLimitThrough(t *testing.T) {
	store := &fakeReportStore{clients: []model.ClientTotal{}}
	svc := NewReportService(store, fakeClientsExport{})

	clients, err := svc.BestClients(context.Background(),
		time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 8, 31, 0, 0, 0, 0, time.UTC), 5)
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Equal(t, 5, store.gotLimit)
}

func TestExportBestClients_FileName(t *testing.T) {
	store := &fakeReportStore{clients: []model.ClientTotal{}}
	svc := NewReportService(store, fakeClientsExport{})

	result, err := svc.ExportBestClients(context.Background(),
		time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 8, 31, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	assert.Equal(t, "best-clients-20200801-20200831.xlsx", result.FileName)
	assert.NotEmpty(t, result.Content)
}
