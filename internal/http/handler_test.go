package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-billing/internal/config"
	"github.com/nurpe/contractor-billing/internal/http/middleware"
	"github.com/nurpe/contractor-billing/internal/model"
	"github.com/nurpe/contractor-billing/internal/repository"
	"github.com/nurpe/contractor-billing/internal/service"
)

type stubContractStore struct {
	contract *model.Contract
	jobs     []model.Job
	receipt  *model.Receipt
}

func (s *stubContractStore) GetContract(context.Context, uuid.UUID) (*model.Contract, error) {
	if s.contract == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.contract, nil
}

func (s *stubContractStore) ListContractsForProfile(context.Context, uuid.UUID) ([]model.Contract, error) {
	if s.contract == nil {
		return nil, nil
	}
	return []model.Contract{*s.contract}, nil
}

func (s *stubContractStore) ListUnpaidJobsForProfile(context.Context, uuid.UUID) ([]model.Job, error) {
	return s.jobs, nil
}

func (s *stubContractStore) GetReceipt(context.Context, uuid.UUID) (*model.Receipt, error) {
	if s.receipt == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.receipt, nil
}

// stubLedger short-circuits the transaction with a scripted outcome.
type stubLedger struct {
	err error
}

func (s *stubLedger) InTx(_ context.Context, _ func(tx repository.LedgerTx) error) error {
	return s.err
}

type stubReportStore struct {
	top      *model.ProfessionTotal
	clients  []model.ClientTotal
	gotLimit int
}

func (s *stubReportStore) BestProfession(context.Context, time.Time, time.Time) (*model.ProfessionTotal, error) {
	if s.top == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.top, nil
}

func (s *stubReportStore) BestClients(_ context.Context, _, _ time.Time, limit int) ([]model.ClientTotal, error) {
	s.gotLimit = limit
	return s.clients, nil
}

type stubPDF struct{}

func (stubPDF) Generate(model.Receipt) ([]byte, error) { return []byte("%PDF-stub"), nil }

type stubExcel struct{}

func (stubExcel) Generate(model.ClientsReport) ([]byte, error) { return []byte("xlsx"), nil }

type routerFixture struct {
	router    *gin.Engine
	contracts *stubContractStore
	ledger    *stubLedger
	reports   *stubReportStore
	acting    *model.Profile
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		contracts: &stubContractStore{},
		ledger:    &stubLedger{},
		reports:   &stubReportStore{},
	}

	cfg := &config.Config{
		Billing: config.BillingConfig{DepositLimitPct: 0.25, BestClientsLimit: 2},
	}
	handler := NewHandler(
		service.NewContractService(f.contracts, stubPDF{}),
		service.NewLedgerService(f.ledger, cfg),
		service.NewReportService(f.reports, stubExcel{}),
		cfg.Billing.BestClientsLimit,
		zerolog.Nop(),
	)

	profileMiddleware := func(c *gin.Context) {
		if f.acting != nil {
			middleware.SetProfile(c, f.acting)
		}
		c.Next()
	}
	f.router = NewRouter(handler, profileMiddleware, "test")
	return f
}

func (f *routerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGetContract_NoProfileIs404(t *testing.T) {
	f := newRouterFixture(t)
	clientID := uuid.New()
	f.contracts.contract = &model.Contract{ID: uuid.New(), ClientID: clientID}

	w := f.do(http.MethodGet, "/contracts/"+f.contracts.contract.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetContract_PartyGetsContract(t *testing.T) {
	f := newRouterFixture(t)
	clientID := uuid.New()
	f.contracts.contract = &model.Contract{ID: uuid.New(), ClientID: clientID}
	f.acting = &model.Profile{ID: clientID, Role: model.RoleClient}

	w := f.do(http.MethodGet, "/contracts/"+f.contracts.contract.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Contract
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, f.contracts.contract.ID, got.ID)
}

// Every route with a uuid path parameter treats a malformed value as a
// missing resource.
func TestMalformedPathIDIs404(t *testing.T) {
	f := newRouterFixture(t)
	f.acting = &model.Profile{ID: uuid.New()}

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/contracts/not-a-uuid"},
		{http.MethodPost, "/jobs/not-a-uuid/pay"},
		{http.MethodGet, "/jobs/not-a-uuid/receipt"},
		{http.MethodPost, "/balances/deposit/not-a-uuid"},
	}
	for _, tc := range cases {
		w := f.do(tc.method, tc.path, `{"deposit": "10"}`)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListContracts_NoProfileIsEmptyList(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/contracts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestListUnpaidJobs_ReturnsJobs(t *testing.T) {
	f := newRouterFixture(t)
	f.acting = &model.Profile{ID: uuid.New()}
	f.contracts.jobs = []model.Job{
		{ID: uuid.New(), Price: decimal.NewFromInt(201)},
	}

	w := f.do(http.MethodGet, "/jobs/unpaid", "")
	require.Equal(t, http.StatusOK, w.Code)

	var jobs []model.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 1)
}

func TestPayJob_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"already paid", service.ErrAlreadyPaid, http.StatusConflict},
		{"insufficient funds", service.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"not found", service.ErrNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.acting = &model.Profile{ID: uuid.New()}
			f.ledger.err = tc.err

			w := f.do(http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", "")
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestPayJob_Success(t *testing.T) {
	f := newRouterFixture(t)
	f.acting = &model.Profile{ID: uuid.New()}

	w := f.do(http.MethodPost, "/jobs/"+uuid.NewString()+"/pay", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
}

func TestDeposit_OverLimitIs422(t *testing.T) {
	f := newRouterFixture(t)
	f.acting = &model.Profile{ID: uuid.New()}
	f.ledger.err = service.ErrDepositLimitExceeded

	w := f.do(http.MethodPost, "/balances/deposit/"+uuid.NewString(), `{"deposit": 30}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeposit_MissingAmountIs422(t *testing.T) {
	f := newRouterFixture(t)
	f.acting = &model.Profile{ID: uuid.New()}

	w := f.do(http.MethodPost, "/balances/deposit/"+uuid.NewString(), `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBestProfession_InvalidDatesAre422(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/admin/best-profession?start=whenever&end=2020-08-31", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(http.MethodGet, "/admin/best-profession", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBestProfession_ReturnsTopGroup(t *testing.T) {
	f := newRouterFixture(t)
	f.reports.top = &model.ProfessionTotal{Profession: "Programmer", Total: decimal.NewFromInt(2020)}

	w := f.do(http.MethodGet, "/admin/best-profession?start=2020-08-01&end=2020-08-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Programmer")
}

func TestBestClients_DefaultLimitIsTwo(t *testing.T) {
	f := newRouterFixture(t)
	f.reports.clients = []model.ClientTotal{}

	w := f.do(http.MethodGet, "/admin/best-clients?start=2020-08-01&end=2020-08-31&limit=nope", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, f.reports.gotLimit)
}

func TestBestClients_ExplicitLimit(t *testing.T) {
	f := newRouterFixture(t)
	f.reports.clients = []model.ClientTotal{}

	w := f.do(http.MethodGet, "/admin/best-clients?start=2020-08-01&end=2020-08-31&limit=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, f.reports.gotLimit)
}

func TestJobReceipt_ReturnsPDFAttachment(t *testing.T) {
	f := newRouterFixture(t)
	clientID := uuid.New()
	paidAt := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)
	jobID := uuid.New()
	f.contracts.receipt = &model.Receipt{
		Job: model.Job{ID: jobID, Price: decimal.NewFromInt(202), Paid: true, PaymentDate: &paidAt},
		Contract: model.Contract{
			ID:           uuid.New(),
			ClientID:     clientID,
			ContractorID: uuid.New(),
		},
	}
	f.acting = &model.Profile{ID: clientID}

	w := f.do(http.MethodGet, "/jobs/"+jobID.String()+"/receipt", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".pdf")
}

func TestExportBestClients_ReturnsAttachment(t *testing.T) {
	f := newRouterFixture(t)
	f.reports.clients = []model.ClientTotal{}

	w := f.do(http.MethodGet, "/admin/best-clients/export?start=2020-08-01&end=2020-08-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
}

func TestHealth(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
