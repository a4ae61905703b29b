package commands

import (
	"errors"
	"fmt"

	"gig-marketplace/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func payCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "pay <worker> <amount>",
		Short: "Pay a worker from the wallet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			counterparty := args[0]
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			if _, err := sess.Catalog.GetByID(cmd.Context(), counterparty); err != nil {
				return err
			}

			settled := make(chan domain.FlowState, 1)
			unsubscribe := sess.Payments.Subscribe(func(st domain.FlowState) {
				if st.Stage != domain.FlowStageSuccess && st.Stage != domain.FlowStageFailed {
					return
				}
				select {
				case settled <- st:
				default:
				}
			})
			defer unsubscribe()

			if err := sess.Payments.Start(counterparty, amount); err != nil {
				return err
			}
			if err := sess.Payments.SelectProvider(provider); err != nil {
				_ = sess.Payments.Cancel()
				return err
			}

			out := cmd.OutOrStdout()
			symbol := cfg.Wallet.CurrencySymbol
			fmt.Fprintf(out, "Processing %s to %s via %s...\n",
				domain.FormatMoney(symbol, amount), counterparty, provider)

			select {
			case st := <-settled:
				if st.Stage == domain.FlowStageFailed {
					_ = sess.Payments.Cancel()
					return errors.New("payment failed: " + st.LastError)
				}
			case <-cmd.Context().Done():
				sess.Payments.Dispose()
				return cmd.Context().Err()
			}

			tx, err := sess.Payments.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Paid %s to %s (transaction #%d)\n",
				domain.FormatMoney(symbol, tx.Magnitude()), tx.Counterparty, tx.ID)
			fmt.Fprintf(out, "Balance: %s\n", domain.FormatMoney(symbol, sess.Ledger.Balance()))
			fmt.Fprintf(out, "Chat: %s\n", sess.Chats.Preview(counterparty))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "GPay", "payment app to use")
	return cmd
}
