package commands

import (
	"fmt"
	"text/tabwriter"

	"gig-marketplace/internal/core/domain"

	"github.com/spf13/cobra"
)

func walletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Show the wallet balance and transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.Ledger.Reconcile(); err != nil {
				return err
			}
			printWallet(cmd, sess.Wallet())
			return nil
		},
	}
}

func printWallet(cmd *cobra.Command, w domain.WalletState) {
	out := cmd.OutOrStdout()
	symbol := cfg.Wallet.CurrencySymbol
	fmt.Fprintf(out, "Balance: %s\n", domain.FormatMoney(symbol, w.Balance))
	if len(w.Transactions) == 0 {
		fmt.Fprintln(out, "No transactions yet")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, tx := range w.Transactions {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n",
			tx.ID,
			tx.CreatedAt.Format("2006-01-02 15:04"),
			tx.Counterparty,
			domain.FormatSignedMoney(symbol, tx.Amount),
		)
	}
	tw.Flush()
}
