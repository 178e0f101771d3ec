package main

import (
	"fmt"
	"io"

	"github.com/hsdfat8/telbill/internal/adapters/memory"
	"github.com/hsdfat8/telbill/internal/domain/models"
	"github.com/spf13/cobra"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Print sample output for devices, accounts, plans, phones and payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout())
		},
	}
}

func runDemo(w io.Writer) error {
	// Devices
	router := models.NewRouter("192.168.1.1")
	fmt.Fprintln(w, router.Connect())
	fmt.Fprintln(w, router.Status())

	sw := models.NewSwitch("SW-01")
	fmt.Fprintln(w, sw.Connect())

	// Accounts
	customer := models.NewCustomerAccount("TEL12345", 0)
	customer.AddCall(10, models.Dollars(2, 50))
	customer.AddCall(5, models.Dollars(1, 25))
	fmt.Fprintln(w, customer.MakePayment(models.Dollars(3, 0)))
	fmt.Fprintln(w, customer.Balance())

	// Plans
	basicPlan := models.NewBasicService("BASIC", models.Dollars(15, 0))
	fmt.Fprintln(w, basicPlan)

	dataPlan := models.NewMobileDataPlan("DATA5", models.Dollars(20, 0), 5)
	fmt.Fprintln(w, dataPlan)
	fmt.Fprintln(w, dataPlan.MonthlyCharge(models.Usage{}))

	voip := models.NewVoIPService("VOIP20", models.Dollars(12, 0), 200)
	fmt.Fprintln(w, voip.MonthlyCharge(models.Usage{MinutesUsed: 250}))

	// Phones
	for _, m := range memory.PhoneSampleData {
		fmt.Fprintln(w, m.PhonePrices())
	}

	// Payments
	payments := []struct {
		method models.PaymentMethod
		amount models.Money
	}{
		{models.CreditCardPayment{CardNumber: "4111111111111111", Expiry: "12/25"}, models.Dollars(50, 0)},
		{models.MobileWalletPayment{WalletID: "WALL123456789"}, models.Dollars(30, 0)},
		{models.BankTransferPayment{AccountNumber: "987654321", RoutingNumber: "026009593"}, models.Dollars(75, 0)},
	}
	for _, p := range payments {
		if err := models.ProcessCustomerPayment(w, p.method, p.amount); err != nil {
			return err
		}
	}

	return nil
}
