package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"gig-marketplace/config"
	"gig-marketplace/internal/app"
	"gig-marketplace/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	dumpMetrics bool
	cfg         *config.Config
	sess        *app.Session
	registry    *prometheus.Registry
)

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gigmarket",
		Short:         "Find nearby gig workers, chat with them and pay from your wallet",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

			registry = prometheus.NewRegistry()
			sess, err = app.NewSession(cfg, log, app.WithRegistry(registry))
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if sess != nil {
				sess.Close()
			}
			if !dumpMetrics {
				return nil
			}
			return writeMetrics(cmd.ErrOrStderr(), registry)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml if present)")
	root.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print collected metrics to stderr on exit")

	root.AddCommand(nearbyCmd(), walletCmd(), payCmd(), chatCmd())
	return root
}

// writeMetrics renders every gathered family in the Prometheus text format.
func writeMetrics(w io.Writer, reg prometheus.Gatherer) error {
	if reg == nil {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
