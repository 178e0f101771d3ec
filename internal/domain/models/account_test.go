package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerAccount_AddCallAndPayment(t *testing.T) {
	customer := NewCustomerAccount("TEL12345", 0)

	customer.AddCall(10, Dollars(2, 50))
	customer.AddCall(5, Dollars(1, 25))

	assert.Equal(t, Money(375), customer.Balance())
	assert.Len(t, customer.CallHistory(), 2)

	msg := customer.MakePayment(Dollars(3, 0))
	assert.Equal(t, "Payment of $3.00 received. New balance: $0.75", msg)
	assert.Equal(t, Money(75), customer.Balance())
}

func TestCustomerAccount_MakePayment(t *testing.T) {
	tests := []struct {
		name        string
		initial     Money
		amount      Money
		wantBalance Money
		wantMsg     string
	}{
		{
			name:        "Positive payment reduces balance",
			initial:     Dollars(10, 0),
			amount:      Dollars(4, 0),
			wantBalance: Dollars(6, 0),
			wantMsg:     "Payment of $4.00 received. New balance: $6.00",
		},
		{
			name:        "Overpayment leaves credit",
			initial:     Dollars(1, 0),
			amount:      Dollars(2, 50),
			wantBalance: Money(-150),
			wantMsg:     "Payment of $2.50 received. New balance: $-1.50",
		},
		{
			name:        "Smallest positive amount",
			initial:     0,
			amount:      1,
			wantBalance: -1,
			wantMsg:     "Payment of $0.01 received. New balance: $-0.01",
		},
		{
			name:        "Zero is rejected",
			initial:     Dollars(5, 0),
			amount:      0,
			wantBalance: Dollars(5, 0),
			wantMsg:     InvalidPaymentMessage,
		},
		{
			name:        "Negative is rejected",
			initial:     Dollars(5, 0),
			amount:      Money(-100),
			wantBalance: Dollars(5, 0),
			wantMsg:     InvalidPaymentMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := NewCustomerAccount("C1", tt.initial)
			msg := account.MakePayment(tt.amount)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantBalance, account.Balance())
			if tt.amount > 0 {
				assert.Contains(t, msg, tt.wantBalance.String())
			}
		})
	}
}

func TestCustomerAccount_AddCallIsUnvalidated(t *testing.T) {
	account := NewCustomerAccount("C1", Dollars(1, 0))

	account.AddCall(-3, Money(-40))

	assert.Equal(t, Money(60), account.Balance())
	require.Len(t, account.CallHistory(), 1)
	assert.Equal(t, CallRecord{Duration: -3, Cost: -40}, account.CallHistory()[0])
}

func TestCustomerAccount_CallHistoryIsSnapshot(t *testing.T) {
	account := NewCustomerAccount("C1", 0)
	assert.NotNil(t, account.CallHistory())
	assert.Empty(t, account.CallHistory())

	account.AddCall(10, 250)

	history := account.CallHistory()
	history[0].Cost = 99999
	history = append(history, CallRecord{Duration: 1, Cost: 1})
	_ = history

	again := account.CallHistory()
	require.Len(t, again, 1)
	assert.Equal(t, Money(250), again[0].Cost)
	assert.Equal(t, Money(250), account.Balance())
}

func TestCustomerAccount_BalanceInvariant(t *testing.T) {
	account := NewCustomerAccount("C1", Dollars(2, 0))
	calls := []CallRecord{{3, 45}, {12, 180}, {1, 15}, {60, 900}}
	payments := []Money{100, 0, -5, 250}

	want := Dollars(2, 0)
	for i, c := range calls {
		account.AddCall(c.Duration, c.Cost)
		want += c.Cost
		account.MakePayment(payments[i])
		if payments[i] > 0 {
			want -= payments[i]
		}
	}

	assert.Equal(t, want, account.Balance())
	assert.Equal(t, calls, account.CallHistory())
}

func TestRestoreCustomerAccount(t *testing.T) {
	history := []CallRecord{{Duration: 5, Cost: 125}}
	account := RestoreCustomerAccount("C9", 125, history)

	history[0].Cost = 1

	assert.Equal(t, "C9", account.CustomerID)
	assert.Equal(t, Money(125), account.Balance())
	assert.Equal(t, Money(125), account.CallHistory()[0].Cost)
}
