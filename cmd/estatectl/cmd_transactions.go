package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EstateEmpire/estateempire-backend/client"
)

func (a *app) rentCmd() *cobra.Command {
	var (
		phone  string
		amount int64
	)
	cmd := &cobra.Command{
		Use:   "rent <property-id>",
		Short: "Pay rent for a property by mobile money",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.api.Rent(cmd.Context(), id, amount, phone)
			if err != nil {
				return explain(err)
			}
			ok(cmd.OutOrStdout(), "Rent paid, receipt %s. Next payment due %s.",
				r.ReceiptCode, r.NextPaymentDue.Format("2 Jan 2006"))
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "M-Pesa phone number, e.g. 0712345678")
	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in Ksh (defaults to the listed rent)")
	return cmd
}

func (a *app) buyCmd() *cobra.Command {
	var (
		phone  string
		amount int64
	)
	cmd := &cobra.Command{
		Use:   "buy <property-id>",
		Short: "Buy a property by mobile money",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.api.Buy(cmd.Context(), id, amount, phone)
			if err != nil {
				return explain(err)
			}
			ok(cmd.OutOrStdout(), "Purchase complete, receipt %s.", p.ReceiptCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "M-Pesa phone number, e.g. 0712345678")
	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in Ksh (defaults to the listed price)")
	return cmd
}

func (a *app) rentalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rentals",
		Short: "Show your rentals and when rent is next due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rentals, err := a.api.Rentals(cmd.Context())
			if err != nil {
				return explain(err)
			}
			w := cmd.OutOrStdout()
			if len(rentals) == 0 {
				fmt.Fprintln(w, client.EmptyState(client.KindRentals))
				return nil
			}
			rows := make([][]string, 0, len(rentals))
			for _, r := range rentals {
				name, location := "", ""
				if r.Property != nil {
					name, location = r.Property.Name, r.Property.Location
				}
				rows = append(rows, []string{name, location, formatKES(r.Amount), r.RentedAt.Format("Jan 2, 2006"), r.Countdown()})
			}
			printTable(w, []string{"PROPERTY", "LOCATION", "PRICE", "RENTED", "NEXT PAYMENT"}, rows)
			return nil
		},
	}
}

func (a *app) purchasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchases",
		Short: "Show properties you have bought",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			purchases, err := a.api.Purchases(cmd.Context())
			if err != nil {
				return explain(err)
			}
			w := cmd.OutOrStdout()
			if len(purchases) == 0 {
				fmt.Fprintln(w, client.EmptyState(client.KindPurchases))
				return nil
			}
			rows := make([][]string, 0, len(purchases))
			for _, p := range purchases {
				name := ""
				if p.Property != nil {
					name = p.Property.Name
				}
				rows = append(rows, []string{name, formatKES(p.Amount), p.ReceiptCode, p.PurchasedAt.Format("Jan 2, 2006")})
			}
			printTable(w, []string{"PROPERTY", "AMOUNT", "RECEIPT", "PURCHASED"}, rows)
			return nil
		},
	}
}

func (a *app) paymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "Show payments received on your listings (agents)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pays, err := a.api.AgentPayments(cmd.Context())
			if err != nil {
				return explain(err)
			}
			w := cmd.OutOrStdout()
			if len(pays) == 0 {
				fmt.Fprintln(w, client.EmptyState(client.KindPayments))
				return nil
			}
			rows := make([][]string, 0, len(pays))
			for _, p := range pays {
				when := p.PaidAt.Format("Jan 2, 2006")
				if p.Month != "" {
					when = p.Month
				}
				rows = append(rows, []string{p.PropertyName, p.ListingType, formatKES(p.Amount), p.ReceiptCode, when, p.Status, p.PayerEmail})
			}
			printTable(w, []string{"PROPERTY", "TYPE", "AMOUNT", "CODE", "DATE", "STATUS", "PAYER"}, rows)
			return nil
		},
	}
}
