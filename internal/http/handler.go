package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contractor-billing/internal/http/middleware"
	"github.com/nurpe/contractor-billing/internal/service"
)

type Handler struct {
	contracts        *service.ContractService
	ledger           *service.LedgerService
	reports          *service.ReportService
	defaultBestLimit int
	log              zerolog.Logger
}

func NewHandler(
	contracts *service.ContractService,
	ledger *service.LedgerService,
	reports *service.ReportService,
	defaultBestLimit int,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts:        contracts,
		ledger:           ledger,
		reports:          reports,
		defaultBestLimit: defaultBestLimit,
		log:              log,
	}
}

func (h *Handler) Register(router *gin.Engine, profileMiddleware gin.HandlerFunc) {
	api := router.Group("/")
	api.Use(profileMiddleware)
	api.GET("/contracts/:id", h.getContract)
	api.GET("/contracts", h.listContracts)
	api.GET("/jobs/unpaid", h.listUnpaidJobs)
	api.POST("/jobs/:job_id/pay", h.payJob)
	api.GET("/jobs/:job_id/receipt", h.jobReceipt)
	api.POST("/balances/deposit/:userId", h.deposit)
	api.GET("/admin/best-profession", h.bestProfession)
	api.GET("/admin/best-clients", h.bestClients)
	api.GET("/admin/best-clients/export", h.exportBestClients)
}

// pathID parses a uuid path parameter. A value that is not a valid uuid
// cannot name an existing resource, so it reports 404 like any other miss.
func pathID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) getContract(c *gin.Context) {
	acting, _ := middleware.ProfileFrom(c)

	id, ok := pathID(c, "id", "contract")
	if !ok {
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), id, acting)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	acting, _ := middleware.ProfileFrom(c)

	contracts, err := h.contracts.ListContracts(c.Request.Context(), acting)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	acting, _ := middleware.ProfileFrom(c)

	jobs, err := h.contracts.ListUnpaidJobs(c.Request.Context(), acting)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	acting, _ := middleware.ProfileFrom(c)

	jobID, ok := pathID(c, "job_id", "job")
	if !ok {
		return
	}

	if err := h.ledger.PayJob(c.Request.Context(), jobID, acting); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "job paid successfully"})
}

func (h *Handler) jobReceipt(c *gin.Context) {
	acting, _ := middleware.ProfileFrom(c)

	jobID, ok := pathID(c, "job_id", "job")
	if !ok {
		return
	}

	result, err := h.contracts.JobReceipt(c.Request.Context(), jobID, acting)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type depositRequest struct {
	Deposit decimal.Decimal `json:"deposit" binding:"required"`
}

func (h *Handler) deposit(c *gin.Context) {
	acting, _ := middleware.ProfileFrom(c)

	targetID, ok := pathID(c, "userId", "profile")
	if !ok {
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "deposit amount is required"})
		return
	}

	if err := h.ledger.DepositFunds(c.Request.Context(), targetID, req.Deposit, acting); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "deposit successful"})
}

func (h *Handler) bestProfession(c *gin.Context) {
	start, end, err := parseWindow(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	top, err := h.reports.BestProfession(c.Request.Context(), start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, top)
}

func (h *Handler) bestClients(c *gin.Context) {
	start, end, err := parseWindow(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	clients, err := h.reports.BestClients(c.Request.Context(), start, end, h.limitParam(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) exportBestClients(c *gin.Context) {
	start, end, err := parseWindow(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.reports.ExportBestClients(c.Request.Context(), start, end, h.limitParam(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyPaid), errors.Is(err, service.ErrNotPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrDepositLimitExceeded),
		errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// limitParam reads the limit query parameter, falling back to the
// configured default when it is missing or not a positive integer.
func (h *Handler) limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return h.defaultBestLimit
	}
	return limit
}

func parseWindow(c *gin.Context) (time.Time, time.Time, error) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
