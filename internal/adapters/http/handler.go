package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/hsdfat8/telbill/internal/domain/service"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler handles HTTP requests for the billing service
type Handler struct {
	billingService ports.BillingService
	healthCheck    func(ctx context.Context) error
}

// NewHandler creates a new HTTP handler. healthCheck may be nil.
func NewHandler(billingService ports.BillingService, healthCheck func(ctx context.Context) error) *Handler {
	return &Handler{
		billingService: billingService,
		healthCheck:    healthCheck,
	}
}

// OpenAccount handles POST /accounts
func (h *Handler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	initial := models.Money(0)
	if req.InitialBalance != "" {
		m, err := models.ParseMoney(req.InitialBalance)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		initial = m
	}

	view, err := h.billingService.OpenAccount(c.Request.Context(), req.CustomerID, initial)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(view))
}

// GetAccount handles GET /accounts/:id
func (h *Handler) GetAccount(c *gin.Context) {
	view, err := h.billingService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(view))
}

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	views, err := h.billingService.ListAccounts(c.Request.Context(), offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]AccountResponse, 0, len(views))
	for _, v := range views {
		responses = append(responses, toAccountResponse(v))
	}
	c.JSON(http.StatusOK, responses)
}

// RecordCall handles POST /accounts/:id/calls
func (h *Handler) RecordCall(c *gin.Context) {
	var req RecordCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	cost, err := models.ParseMoney(req.Cost)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.billingService.RecordCall(c.Request.Context(), c.Param("id"), req.Duration, cost)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(view))
}

// ListCalls handles GET /accounts/:id/calls
func (h *Handler) ListCalls(c *gin.Context) {
	view, err := h.billingService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCallResponses(view.CallHistory))
}

// MakePayment handles POST /accounts/:id/payments.
// A rejected amount is still a 200: the body carries accepted=false and the message.
func (h *Handler) MakePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := models.ParseMoney(req.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.billingService.MakePayment(c.Request.Context(), c.Param("id"), amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(result))
}

// SettlePayment handles POST /accounts/:id/settlements
func (h *Handler) SettlePayment(c *gin.Context) {
	var req SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	amount, err := models.ParseMoney(req.Amount)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	method, err := models.NewPaymentMethod(req.Method)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.billingService.SettlePayment(c.Request.Context(), c.Param("id"), method, amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(result))
}

// GetLedger handles GET /accounts/:id/ledger
func (h *Handler) GetLedger(c *gin.Context) {
	offset, limit, ok := pagination(c)
	if !ok {
		return
	}

	entries, err := h.billingService.GetLedger(c.Request.Context(), c.Param("id"), offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, toLedgerEntryResponse(e))
	}
	c.JSON(http.StatusOK, responses)
}

// QuotePlan handles POST /plans/quote
func (h *Handler) QuotePlan(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	baseCost, err := models.ParseMoney(req.BaseCost)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	spec := models.PlanSpec{
		Type:            req.Type,
		ServiceID:       req.ServiceID,
		BaseCost:        baseCost,
		DataLimitGB:     req.DataLimitGB,
		IncludedMinutes: req.IncludedMinutes,
	}

	quote, err := h.billingService.QuoteMonthlyCharge(c.Request.Context(), spec, models.Usage{MinutesUsed: req.MinutesUsed})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Description:   quote.Description,
		BaseCost:      quote.BaseCost.String(),
		MonthlyCharge: quote.MonthlyCharge.String(),
		Surcharge:     quote.Surcharge.String(),
	})
}

// RegisterDevice handles POST /devices
func (h *Handler) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.billingService.RegisterDevice(c.Request.Context(), &ports.RegisterDeviceRequest{
		ID:        req.ID,
		Type:      req.Type,
		IPAddress: req.IPAddress,
		Ports:     req.Ports,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetDevice handles GET /devices/:id
func (h *Handler) GetDevice(c *gin.Context) {
	h.deviceOp(c, h.billingService.DeviceStatus)
}

// ConnectDevice handles POST /devices/:id/connect
func (h *Handler) ConnectDevice(c *gin.Context) {
	h.deviceOp(c, h.billingService.ConnectDevice)
}

// DisconnectDevice handles POST /devices/:id/disconnect
func (h *Handler) DisconnectDevice(c *gin.Context) {
	h.deviceOp(c, h.billingService.DisconnectDevice)
}

func (h *Handler) deviceOp(c *gin.Context, op func(ctx context.Context, id string) (*ports.DeviceView, error)) {
	view, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListPhones handles GET /phones
func (h *Handler) ListPhones(c *gin.Context) {
	phones, err := h.billingService.ListPhones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]PhoneResponse, 0, len(phones))
	for _, p := range phones {
		responses = append(responses, PhoneResponse{
			Name:    p.Name,
			Version: p.Version,
			Price:   p.Price.String(),
			Listing: p.PhonePrices(),
		})
	}
	c.JSON(http.StatusOK, responses)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.healthCheck != nil {
		if err := h.healthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "telbill",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "telbill",
	})
}

// pagination reads offset and limit query parameters, writing a 400 on bad input
func pagination(c *gin.Context) (offset, limit int, ok bool) {
	offset, limit = 0, defaultLimit

	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxLimit)
	}

	return offset, limit, true
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:   "about:blank",
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: detail,
	})
}

// writeError maps service errors to problem details
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := "Request failed"

	switch {
	case errors.Is(err, service.ErrAccountNotFound), errors.Is(err, service.ErrDeviceNotFound):
		status, title, detail = http.StatusNotFound, "Not Found", err.Error()
	case errors.Is(err, service.ErrAccountExists), errors.Is(err, service.ErrDeviceExists):
		status, title, detail = http.StatusConflict, "Conflict", err.Error()
	case errors.Is(err, service.ErrInvalidRequest):
		status, title, detail = http.StatusBadRequest, "Bad Request", err.Error()
	case errors.Is(err, service.ErrPaymentRejected):
		status, title, detail = http.StatusUnprocessableEntity, "Payment Rejected", err.Error()
	default:
		_ = c.Error(err)
	}

	c.JSON(status, ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	})
}
