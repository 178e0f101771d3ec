package http

import (
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
)

// Amounts cross the API as decimal strings ("50.00") and are parsed with models.ParseMoney.

// ProblemDetails represents an error response following RFC 7807
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// OpenAccountRequest represents an account opening request
type OpenAccountRequest struct {
	CustomerID     string `json:"customer_id" binding:"required"`
	InitialBalance string `json:"initial_balance"`
}

// RecordCallRequest bills a call to an account
type RecordCallRequest struct {
	Duration int    `json:"duration"` // minutes
	Cost     string `json:"cost" binding:"required"`
}

// PaymentRequest is a plain payment
type PaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SettlementRequest is a payment through a payment method
type SettlementRequest struct {
	Amount string                `json:"amount" binding:"required"`
	Method models.PaymentDetails `json:"method"`
}

// QuoteRequest prices a plan
type QuoteRequest struct {
	Type            models.PlanType `json:"type"`
	ServiceID       string          `json:"service_id" binding:"required"`
	BaseCost        string          `json:"base_cost" binding:"required"`
	DataLimitGB     int             `json:"data_limit_gb,omitempty"`
	IncludedMinutes int             `json:"included_minutes,omitempty"`
	MinutesUsed     int             `json:"minutes_used,omitempty"`
}

// RegisterDeviceRequest adds a device to the inventory
type RegisterDeviceRequest struct {
	ID        string            `json:"id" binding:"required"`
	Type      models.DeviceType `json:"type" binding:"required"`
	IPAddress string            `json:"ip_address,omitempty"`
	Ports     []models.Port     `json:"ports,omitempty"`
}

// CallResponse is one call record
type CallResponse struct {
	Duration int    `json:"duration"`
	Cost     string `json:"cost"`
}

// AccountResponse represents account information
type AccountResponse struct {
	CustomerID  string         `json:"customer_id"`
	Balance     string         `json:"balance"`
	CallHistory []CallResponse `json:"call_history"`
}

// PaymentResponse is the outcome of a payment
type PaymentResponse struct {
	Accepted  bool   `json:"accepted"`
	Message   string `json:"message"`
	Balance   string `json:"balance"`
	ReceiptID string `json:"receipt_id,omitempty"`
	// LedgerPending is set when the payment was applied but its ledger entry was not stored
	LedgerPending bool `json:"ledger_pending,omitempty"`
}

// LedgerEntryResponse is one accepted payment
type LedgerEntryResponse struct {
	ReceiptID    string             `json:"receipt_id"`
	Kind         models.PaymentKind `json:"kind"`
	Amount       string             `json:"amount"`
	Confirmation string             `json:"confirmation"`
	BalanceAfter string             `json:"balance_after"`
	RecordedAt   string             `json:"recorded_at"`
}

// QuoteResponse is a priced plan
type QuoteResponse struct {
	Description   string `json:"description"`
	BaseCost      string `json:"base_cost"`
	MonthlyCharge string `json:"monthly_charge"`
	Surcharge     string `json:"surcharge"`
}

// PhoneResponse is a catalog entry
type PhoneResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Price   string `json:"price"`
	Listing string `json:"listing"`
}

func toCallResponses(calls []models.CallRecord) []CallResponse {
	out := make([]CallResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, CallResponse{Duration: c.Duration, Cost: c.Cost.String()})
	}
	return out
}

func toAccountResponse(v *ports.AccountView) AccountResponse {
	return AccountResponse{
		CustomerID:  v.CustomerID,
		Balance:     v.Balance.String(),
		CallHistory: toCallResponses(v.CallHistory),
	}
}

func toPaymentResponse(r *ports.PaymentResult) PaymentResponse {
	resp := PaymentResponse{
		Accepted: r.Accepted,
		Message:  r.Message,
		Balance:  r.Balance.String(),

		LedgerPending: r.LedgerPending,
	}
	if r.Entry != nil {
		resp.ReceiptID = r.Entry.ReceiptID
	}
	return resp
}

func toLedgerEntryResponse(e *models.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ReceiptID:    e.ReceiptID,
		Kind:         e.Kind,
		Amount:       e.Amount.String(),
		Confirmation: e.Confirmation,
		BalanceAfter: e.BalanceAfter.String(),
		RecordedAt:   e.RecordedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
