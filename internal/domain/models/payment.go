package models

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// PaymentKind identifies a PaymentMethod variant
type PaymentKind string

const (
	PaymentKindCreditCard   PaymentKind = "credit_card"
	PaymentKindMobileWallet PaymentKind = "mobile_wallet"
	PaymentKindBankTransfer PaymentKind = "bank_transfer"
	// PaymentKindDirect marks a plain account payment made without a method
	PaymentKindDirect PaymentKind = "direct"
)

var ErrUnknownPaymentKind = errors.New("unknown payment kind")

// PaymentMethod formats a confirmation for a payment of the given amount.
// Identifiers are masked for display only.
type PaymentMethod interface {
	ProcessPayment(amount Money) string
	Kind() PaymentKind
}

var (
	_ PaymentMethod = CreditCardPayment{}
	_ PaymentMethod = MobileWalletPayment{}
	_ PaymentMethod = BankTransferPayment{}
)

type CreditCardPayment struct {
	CardNumber string
	Expiry     string
}

func (p CreditCardPayment) Kind() PaymentKind { return PaymentKindCreditCard }

func (p CreditCardPayment) ProcessPayment(amount Money) string {
	return fmt.Sprintf("Processed $%s via Credit Card ending in %s", amount, lastN(p.CardNumber, 4))
}

type MobileWalletPayment struct {
	WalletID string
}

func (p MobileWalletPayment) Kind() PaymentKind { return PaymentKindMobileWallet }

func (p MobileWalletPayment) ProcessPayment(amount Money) string {
	return fmt.Sprintf("Processed $%s via Mobile Wallet %s...", amount, firstN(p.WalletID, 4))
}

type BankTransferPayment struct {
	AccountNumber string
	RoutingNumber string
}

func (p BankTransferPayment) Kind() PaymentKind { return PaymentKindBankTransfer }

func (p BankTransferPayment) ProcessPayment(amount Money) string {
	return fmt.Sprintf("Processed $%s via Bank Transfer to account %s", amount, lastN(p.AccountNumber, 4))
}

// ProcessCustomerPayment writes the method's confirmation line to w
func ProcessCustomerPayment(w io.Writer, method PaymentMethod, amount Money) error {
	_, err := fmt.Fprintln(w, method.ProcessPayment(amount))
	return err
}

// PaymentDetails is the wire form of a payment method
type PaymentDetails struct {
	Kind          PaymentKind `json:"kind"`
	CardNumber    string      `json:"card_number,omitempty"`
	Expiry        string      `json:"expiry,omitempty"`
	WalletID      string      `json:"wallet_id,omitempty"`
	AccountNumber string      `json:"account_number,omitempty"`
	RoutingNumber string      `json:"routing_number,omitempty"`
}

// NewPaymentMethod builds the variant named by d.Kind
func NewPaymentMethod(d PaymentDetails) (PaymentMethod, error) {
	switch d.Kind {
	case PaymentKindCreditCard:
		return CreditCardPayment{CardNumber: d.CardNumber, Expiry: d.Expiry}, nil
	case PaymentKindMobileWallet:
		return MobileWalletPayment{WalletID: d.WalletID}, nil
	case PaymentKindBankTransfer:
		return BankTransferPayment{AccountNumber: d.AccountNumber, RoutingNumber: d.RoutingNumber}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPaymentKind, d.Kind)
	}
}

// LedgerEntry records an accepted payment against an account
type LedgerEntry struct {
	ReceiptID    string      `json:"receipt_id" db:"receipt_id" bson:"_id"`
	CustomerID   string      `json:"customer_id" db:"customer_id" bson:"customer_id"`
	Kind         PaymentKind `json:"kind" db:"kind" bson:"kind"`
	Amount       Money       `json:"amount" db:"amount" bson:"amount"`
	Confirmation string      `json:"confirmation" db:"confirmation" bson:"confirmation"`
	BalanceAfter Money       `json:"balance_after" db:"balance_after" bson:"balance_after"`
	RecordedAt   time.Time   `json:"recorded_at" db:"recorded_at" bson:"recorded_at"`
}

// lastN and firstN count characters, not bytes
func lastN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
