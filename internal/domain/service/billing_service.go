package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/hsdfat8/telbill/internal/domain/ports"
	"github.com/hsdfat8/telbill/internal/logger"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDeviceExists    = errors.New("device already exists")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrPaymentRejected = errors.New("payment rejected")
)

// payment results used as metric labels
const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
)

// billingService implements the BillingService interface
type billingService struct {
	accounts ports.AccountRepository
	ledger   ports.LedgerRepository
	devices  ports.DeviceRepository
	catalog  ports.CatalogRepository
	logger   logger.Logger // Optional custom logger

	// serializes load-modify-save on accounts
	accountMu sync.Mutex
	now       func() time.Time
	newID     func() string
}

// NewBillingService creates a new billing service instance
func NewBillingService(
	accounts ports.AccountRepository,
	ledger ports.LedgerRepository,
	devices ports.DeviceRepository,
	catalog ports.CatalogRepository,
) *billingService {
	return &billingService{
		accounts: accounts,
		ledger:   ledger,
		devices:  devices,
		catalog:  catalog,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetLogger sets a custom logger for this service instance
func (s *billingService) SetLogger(l logger.Logger) {
	s.logger = l
}

// getLogger returns the custom logger if set, otherwise returns the global logger
func (s *billingService) getLogger() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Log
}

func (s *billingService) OpenAccount(ctx context.Context, customerID string, initialBalance models.Money) (*ports.AccountView, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidRequest)
	}

	s.getLogger().Infow("OpenAccount started", "customer_id", customerID, "initial_balance", initialBalance.String())

	account := models.NewCustomerAccount(customerID, initialBalance)
	if err := s.timed(ctx, "account_create", func() error { return s.accounts.Create(ctx, account) }); err != nil {
		s.getLogger().Errorw("OpenAccount failed", "customer_id", customerID, "error", err)
		if errors.Is(err, ports.ErrAlreadyExists) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.getLogger().Infow("OpenAccount completed successfully", "customer_id", customerID)
	return toAccountView(account), nil
}

func (s *billingService) GetAccount(ctx context.Context, customerID string) (*ports.AccountView, error) {
	account, err := s.loadAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return toAccountView(account), nil
}

func (s *billingService) ListAccounts(ctx context.Context, offset, limit int) ([]*ports.AccountView, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0 and limit > 0", ErrInvalidRequest)
	}

	var accounts []*models.CustomerAccount
	err := s.timed(ctx, "account_list", func() error {
		var err error
		accounts, err = s.accounts.List(ctx, offset, limit)
		return err
	})
	if err != nil {
		s.getLogger().Errorw("ListAccounts failed", "offset", offset, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	views := make([]*ports.AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a))
	}
	return views, nil
}

func (s *billingService) RecordCall(ctx context.Context, customerID string, duration int, cost models.Money) (*ports.AccountView, error) {
	s.getLogger().Infow("RecordCall started", "customer_id", customerID, "duration", duration, "cost", cost.String())

	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	account, err := s.loadAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if _, err := models.AddMoney(account.Balance(), cost); err != nil {
		s.getLogger().Warnw("RecordCall rejected", "customer_id", customerID, "cost", cost.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	account.AddCall(duration, cost)

	if err := s.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	logger.CallsRecordedTotal.Inc()
	s.getLogger().Infow("RecordCall completed successfully", "customer_id", customerID, "balance", account.Balance().String())
	return toAccountView(account), nil
}

func (s *billingService) MakePayment(ctx context.Context, customerID string, amount models.Money) (*ports.PaymentResult, error) {
	s.getLogger().Infow("MakePayment started", "customer_id", customerID, "amount", amount.String())

	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	account, err := s.loadAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := checkPayment(account, amount); err != nil {
		s.getLogger().Warnw("MakePayment rejected", "customer_id", customerID, "amount", amount.String(), "error", err)
		return nil, err
	}

	message := account.MakePayment(amount)
	if amount <= 0 {
		logger.PaymentsTotal.WithLabelValues(string(models.PaymentKindDirect), resultRejected).Inc()
		s.getLogger().Warnw("MakePayment rejected", "customer_id", customerID, "amount", amount.String())
		return &ports.PaymentResult{Accepted: false, Message: message, Balance: account.Balance()}, nil
	}

	return s.applyPayment(ctx, account, models.PaymentKindDirect, amount, message)
}

func (s *billingService) SettlePayment(ctx context.Context, customerID string, method models.PaymentMethod, amount models.Money) (*ports.PaymentResult, error) {
	if method == nil {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidRequest)
	}

	s.getLogger().Infow("SettlePayment started", "customer_id", customerID, "kind", method.Kind(), "amount", amount.String())

	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	account, err := s.loadAccount(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := checkPayment(account, amount); err != nil {
		s.getLogger().Warnw("SettlePayment rejected", "customer_id", customerID, "amount", amount.String(), "error", err)
		return nil, err
	}

	if message := account.MakePayment(amount); message == models.InvalidPaymentMessage {
		logger.PaymentsTotal.WithLabelValues(string(method.Kind()), resultRejected).Inc()
		s.getLogger().Warnw("SettlePayment rejected", "customer_id", customerID, "kind", method.Kind(), "amount", amount.String())
		return nil, fmt.Errorf("%w: %s", ErrPaymentRejected, message)
	}

	return s.applyPayment(ctx, account, method.Kind(), amount, method.ProcessPayment(amount))
}

// checkPayment rejects positive amounts that would take the balance out of range
func checkPayment(account *models.CustomerAccount, amount models.Money) error {
	if amount <= 0 {
		return nil
	}
	if _, err := models.SubMoney(account.Balance(), amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// applyPayment persists an accepted payment and its ledger entry.
// Caller holds accountMu and has already applied the amount to account.
func (s *billingService) applyPayment(ctx context.Context, account *models.CustomerAccount, kind models.PaymentKind, amount models.Money, confirmation string) (*ports.PaymentResult, error) {
	if err := s.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		ReceiptID:    s.newID(),
		CustomerID:   account.CustomerID,
		Kind:         kind,
		Amount:       amount,
		Confirmation: confirmation,
		BalanceAfter: account.Balance(),
		RecordedAt:   s.now().UTC(),
	}

	result := &ports.PaymentResult{
		Accepted: true,
		Message:  confirmation,
		Balance:  account.Balance(),
		Entry:    entry,
	}

	// The balance is already saved, so the payment stands even without its
	// entry. Reporting an error here would invite a retry that charges twice.
	if err := s.timed(ctx, "ledger_record", func() error { return s.ledger.Record(ctx, entry) }); err != nil {
		logger.LedgerWriteFailuresTotal.Inc()
		s.getLogger().Errorw("Ledger record failed, payment applied without entry",
			"customer_id", account.CustomerID, "receipt_id", entry.ReceiptID, "amount", amount.String(), "error", err)
		result.LedgerPending = true
	}

	logger.PaymentsTotal.WithLabelValues(string(kind), resultAccepted).Inc()
	s.getLogger().Infow("Payment accepted", "customer_id", account.CustomerID, "kind", kind, "receipt_id", entry.ReceiptID, "balance", account.Balance().String())

	return result, nil
}

func (s *billingService) GetLedger(ctx context.Context, customerID string, offset, limit int) ([]*models.LedgerEntry, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: offset must be >= 0 and limit > 0", ErrInvalidRequest)
	}
	if _, err := s.loadAccount(ctx, customerID); err != nil {
		return nil, err
	}

	var entries []*models.LedgerEntry
	err := s.timed(ctx, "ledger_list", func() error {
		var err error
		entries, err = s.ledger.ListByCustomer(ctx, customerID, offset, limit)
		return err
	})
	if err != nil {
		s.getLogger().Errorw("GetLedger failed", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	return entries, nil
}

func (s *billingService) QuoteMonthlyCharge(ctx context.Context, spec models.PlanSpec, usage models.Usage) (*ports.ChargeQuote, error) {
	svc, err := models.NewTelecomService(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	charge := svc.MonthlyCharge(usage)
	planType := spec.Type
	if planType == "" {
		planType = models.PlanTypeBasic
	}
	logger.ChargeQuotesTotal.WithLabelValues(string(planType)).Inc()
	s.getLogger().Debugw("QuoteMonthlyCharge", "service_id", svc.ServiceID(), "plan", planType, "charge", charge.String())

	return &ports.ChargeQuote{
		Description:   svc.String(),
		BaseCost:      svc.BaseCost(),
		MonthlyCharge: charge,
		Surcharge:     charge - svc.BaseCost(),
	}, nil
}

func (s *billingService) RegisterDevice(ctx context.Context, request *ports.RegisterDeviceRequest) (*ports.DeviceView, error) {
	if request == nil || strings.TrimSpace(request.ID) == "" {
		return nil, fmt.Errorf("%w: device id is required", ErrInvalidRequest)
	}

	var device models.NetworkDevice
	switch request.Type {
	case models.DeviceTypeRouter:
		if request.IPAddress == "" {
			return nil, fmt.Errorf("%w: router requires an ip address", ErrInvalidRequest)
		}
		device = models.NewRouter(request.IPAddress)
	case models.DeviceTypeSwitch:
		device = models.NewSwitch(request.ID, request.Ports...)
	default:
		return nil, fmt.Errorf("%w: unknown device type %q", ErrInvalidRequest, request.Type)
	}

	if err := s.devices.Add(ctx, request.ID, device); err != nil {
		s.getLogger().Errorw("RegisterDevice failed", "device_id", request.ID, "error", err)
		if errors.Is(err, ports.ErrAlreadyExists) {
			return nil, ErrDeviceExists
		}
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	s.getLogger().Infow("Device registered", "device_id", request.ID, "type", request.Type)
	return &ports.DeviceView{ID: request.ID, Status: device.Status()}, nil
}

func (s *billingService) ConnectDevice(ctx context.Context, id string) (*ports.DeviceView, error) {
	return s.runDeviceOp(ctx, id, "connect", models.NetworkDevice.Connect)
}

func (s *billingService) DisconnectDevice(ctx context.Context, id string) (*ports.DeviceView, error) {
	return s.runDeviceOp(ctx, id, "disconnect", models.NetworkDevice.Disconnect)
}

func (s *billingService) DeviceStatus(ctx context.Context, id string) (*ports.DeviceView, error) {
	status, err := s.devices.Update(ctx, id, models.NetworkDevice.Status)
	if err != nil {
		return nil, s.deviceError(err)
	}
	return &ports.DeviceView{ID: id, Status: status}, nil
}

func (s *billingService) runDeviceOp(ctx context.Context, id, operation string, op func(models.NetworkDevice) string) (*ports.DeviceView, error) {
	var status, deviceType string
	message, err := s.devices.Update(ctx, id, func(d models.NetworkDevice) string {
		msg := op(d)
		status = d.Status()
		deviceType = deviceTypeOf(d)
		return msg
	})
	if err != nil {
		s.getLogger().Errorw("Device operation failed", "device_id", id, "operation", operation, "error", err)
		return nil, s.deviceError(err)
	}

	logger.DeviceOperationsTotal.WithLabelValues(deviceType, operation).Inc()
	s.getLogger().Infow("Device operation completed", "device_id", id, "operation", operation, "status", status)
	return &ports.DeviceView{ID: id, Message: message, Status: status}, nil
}

func (s *billingService) ListPhones(ctx context.Context) ([]models.Mobile, error) {
	phones, err := s.catalog.ListPhones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list phones: %w", err)
	}
	return phones, nil
}

func (s *billingService) loadAccount(ctx context.Context, customerID string) (*models.CustomerAccount, error) {
	var account *models.CustomerAccount
	err := s.timed(ctx, "account_get", func() error {
		var err error
		account, err = s.accounts.Get(ctx, customerID)
		return err
	})
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.getLogger().Warnw("Account not found", "customer_id", customerID)
			return nil, ErrAccountNotFound
		}
		s.getLogger().Errorw("Account load failed", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}

func (s *billingService) saveAccount(ctx context.Context, account *models.CustomerAccount) error {
	err := s.timed(ctx, "account_save", func() error { return s.accounts.Save(ctx, account) })
	if err != nil {
		s.getLogger().Errorw("Account save failed", "customer_id", account.CustomerID, "error", err)
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *billingService) deviceError(err error) error {
	if errors.Is(err, ports.ErrNotFound) {
		return ErrDeviceNotFound
	}
	return fmt.Errorf("device operation failed: %w", err)
}

// timed runs fn and observes its latency under operation
func (s *billingService) timed(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	logger.StorageQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}

func toAccountView(account *models.CustomerAccount) *ports.AccountView {
	return &ports.AccountView{
		CustomerID:  account.CustomerID,
		Balance:     account.Balance(),
		CallHistory: account.CallHistory(),
	}
}

func deviceTypeOf(d models.NetworkDevice) string {
	switch d.(type) {
	case *models.Router:
		return string(models.DeviceTypeRouter)
	case *models.Switch:
		return string(models.DeviceTypeSwitch)
	default:
		return "unknown"
	}
}
