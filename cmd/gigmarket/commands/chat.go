package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"gig-marketplace/internal/core/domain"

	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [worker] [message...]",
		Short: "List conversations, show one, or send a message",
		Long: `With no arguments, lists every conversation with its preview.
With a worker id, prints that conversation.
With a worker id and a message, sends the message and prints the conversation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 0:
				printSummaries(cmd, sess.Chats.Summaries())
				return nil
			case 1:
				printConversation(cmd, sess.Conversation(args[0]))
				return nil
			default:
				if _, err := sess.Chats.Send(args[0], strings.Join(args[1:], " ")); err != nil {
					return err
				}
				printConversation(cmd, sess.Conversation(args[0]))
				return nil
			}
		},
	}
}

func printSummaries(cmd *cobra.Command, sums []domain.ConversationSummary) {
	out := cmd.OutOrStdout()
	if len(sums) == 0 {
		fmt.Fprintln(out, "No conversations yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.LastActivity.Format("Jan 2 15:04"), s.Preview)
	}
	tw.Flush()
}

func printConversation(cmd *cobra.Command, msgs []domain.ChatMessage) {
	out := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages yet")
		return
	}
	symbol := cfg.Wallet.CurrencySymbol
	for _, m := range msgs {
		stamp := m.SentAt().Format("15:04")
		switch v := m.(type) {
		case domain.TextMessage:
			fmt.Fprintf(out, "[%s] %s: %s\n", stamp, v.Sender, v.Body)
		case domain.TransactionNotice:
			verb := "sent"
			if v.Sender == domain.SenderThem {
				verb = "received"
			}
			fmt.Fprintf(out, "[%s] payment %s %s (%s)\n",
				stamp, verb, domain.FormatMoney(symbol, v.Amount), strings.ToLower(string(v.Status)))
		}
	}
}
