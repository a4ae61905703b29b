package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"gig-marketplace/internal/core/domain"

	"github.com/spf13/cobra"
)

func nearbyCmd() *cobra.Command {
	var (
		lat, lon float64
		radius   float64
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List workers and jobs within a radius",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("lat") || flags.Changed("lon") {
				center := sess.Center()
				if flags.Changed("lat") {
					center.Latitude = lat
				}
				if flags.Changed("lon") {
					center.Longitude = lon
				}
				sess.MoveTo(center)
			}
			if flags.Changed("radius") {
				sess.SetRadius(radius)
			}

			k := domain.ListingKind(strings.ToUpper(strings.TrimSpace(kind)))
			if k == "ALL" {
				k = ""
			}
			results, err := sess.Nearby(cmd.Context(), k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "Nothing within %.1f mi\n", sess.Radius())
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tTITLE\tDISTANCE\tPRICE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f mi\t%s\n",
					r.Listing.ID,
					strings.ToLower(string(r.Listing.Kind)),
					r.Listing.Title,
					r.DistanceMiles,
					priceLabel(r.Listing),
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "search center latitude (default from config)")
	cmd.Flags().Float64Var(&lon, "lon", 0, "search center longitude (default from config)")
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0, "search radius in miles (default from config)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "worker, job or all")
	return cmd
}

func priceLabel(l domain.Listing) string {
	p := domain.FormatMoney(cfg.Wallet.CurrencySymbol, l.Price)
	if l.IsWorker() {
		return p + "/hr"
	}
	return p
}
