package ports

import (
	"context"

	"github.com/hsdfat8/telbill/internal/domain/models"
)

// BillingService defines the core business operations
// This is the primary port for the billing domain
type BillingService interface {
	// OpenAccount creates an account with an initial balance
	OpenAccount(ctx context.Context, customerID string, initialBalance models.Money) (*AccountView, error)

	// GetAccount returns the account balance and history
	GetAccount(ctx context.Context, customerID string) (*AccountView, error)

	// ListAccounts retrieves a paginated account list
	ListAccounts(ctx context.Context, offset, limit int) ([]*AccountView, error)

	// RecordCall bills a call to the account
	RecordCall(ctx context.Context, customerID string, duration int, cost models.Money) (*AccountView, error)

	// MakePayment applies a plain payment. A non-positive amount is not an
	// error: the result carries the rejection message and Accepted=false.
	MakePayment(ctx context.Context, customerID string, amount models.Money) (*PaymentResult, error)

	// SettlePayment processes amount through a payment method and applies it.
	// Non-positive amounts fail with an error wrapping service.ErrPaymentRejected.
	SettlePayment(ctx context.Context, customerID string, method models.PaymentMethod, amount models.Money) (*PaymentResult, error)

	// GetLedger lists accepted payments for an account
	GetLedger(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error)

	// QuoteMonthlyCharge prices a plan for the given usage
	QuoteMonthlyCharge(ctx context.Context, spec models.PlanSpec, usage models.Usage) (*ChargeQuote, error)

	// RegisterDevice adds a router or switch to the inventory
	RegisterDevice(ctx context.Context, request *RegisterDeviceRequest) (*DeviceView, error)

	// ConnectDevice and DisconnectDevice run the device operation
	ConnectDevice(ctx context.Context, id string) (*DeviceView, error)
	DisconnectDevice(ctx context.Context, id string) (*DeviceView, error)

	// DeviceStatus reports the current device status
	DeviceStatus(ctx context.Context, id string) (*DeviceView, error)

	// ListPhones returns the phone catalog
	ListPhones(ctx context.Context) ([]models.Mobile, error)
}

// AccountView is a snapshot of an account
type AccountView struct {
	CustomerID  string              `json:"customer_id"`
	Balance     models.Money        `json:"balance"`
	CallHistory []models.CallRecord `json:"call_history"`
}

// PaymentResult is the outcome of a payment
type PaymentResult struct {
	Accepted bool                `json:"accepted"`
	Message  string              `json:"message"`
	Balance  models.Money        `json:"balance"`
	Entry    *models.LedgerEntry `json:"entry,omitempty"`
	// LedgerPending marks an applied payment whose ledger entry could not be
	// stored. Entry still carries the receipt; do not retry the payment.
	LedgerPending bool `json:"ledger_pending,omitempty"`
}

// ChargeQuote is a priced plan
type ChargeQuote struct {
	Description   string       `json:"description"`
	BaseCost      models.Money `json:"base_cost"`
	MonthlyCharge models.Money `json:"monthly_charge"`
	Surcharge     models.Money `json:"surcharge"`
}

// RegisterDeviceRequest represents a device registration
type RegisterDeviceRequest struct {
	ID        string            // Required: inventory id
	Type      models.DeviceType // Required: router or switch
	IPAddress string            // Router only
	Ports     []models.Port     // Switch only
}

// DeviceView is the result of a device operation
type DeviceView struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}
