package models

import (
	"fmt"
	"slices"
)

// InvalidPaymentMessage is returned by MakePayment for non-positive amounts
const InvalidPaymentMessage = "Invalid payment amount"

// CallRecord is one billed call
type CallRecord struct {
	Duration int   `json:"duration" db:"duration"` // minutes
	Cost     Money `json:"cost" db:"cost"`
}

// CustomerAccount owns a balance and an append-only call history.
// Neither is reachable except through its methods.
type CustomerAccount struct {
	CustomerID string

	balance     Money
	callHistory []CallRecord
}

// NewCustomerAccount creates an account with an initial balance
func NewCustomerAccount(customerID string, initialBalance Money) *CustomerAccount {
	return &CustomerAccount{
		CustomerID: customerID,
		balance:    initialBalance,
	}
}

// RestoreCustomerAccount rebuilds an account loaded from storage
func RestoreCustomerAccount(customerID string, balance Money, history []CallRecord) *CustomerAccount {
	return &CustomerAccount{
		CustomerID:  customerID,
		balance:     balance,
		callHistory: slices.Clone(history),
	}
}

// AddCall charges the call cost and records it. Negative values are not rejected.
// The balance wraps outside the int64 range; check with AddMoney first.
func (a *CustomerAccount) AddCall(duration int, cost Money) {
	a.balance += cost
	a.callHistory = append(a.callHistory, CallRecord{Duration: duration, Cost: cost})
}

// MakePayment applies a strictly positive payment and returns a confirmation,
// or InvalidPaymentMessage without touching the balance.
func (a *CustomerAccount) MakePayment(amount Money) string {
	if amount > 0 {
		a.balance -= amount
		return fmt.Sprintf("Payment of $%s received. New balance: $%s", amount, a.balance)
	}
	return InvalidPaymentMessage
}

func (a *CustomerAccount) Balance() Money {
	return a.balance
}

// CallHistory returns a snapshot of the history
func (a *CustomerAccount) CallHistory() []CallRecord {
	if len(a.callHistory) == 0 {
		return []CallRecord{}
	}
	return slices.Clone(a.callHistory)
}
