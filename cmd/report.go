package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"riskwatch/internal/bootstrap"
	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/ports"
	"riskwatch/internal/usecase/observations"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List stored observations",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *observations.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		search, _ := cmd.Flags().GetString("search")
		sortFlag, _ := cmd.Flags().GetString("sort")

		sortKey, err := parseReportSort(sortFlag)
		if err != nil {
			return err
		}

		records, err := svc.List(ctx, observations.ListInput{Search: search, Sort: sortKey})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			_, err := fmt.Fprintln(out, "No observations found.")
			return err
		}

		for _, rec := range records {
			fmt.Fprintf(out, "Obs #%d: %s (%s) — %s\n", rec.ID, rec.Location, rec.Floor, rec.DateStr)
			fmt.Fprintf(out, "  Description: %s\n", rec.Description)
			fmt.Fprintf(out, "  Impact: %s\n", rec.Impact)
			fmt.Fprintf(out, "  Corrective Action: %s\n", rec.CorrectiveAction)
			fmt.Fprintf(out, "  Assigned To: %s | Deadline: %s\n", rec.ResponsiblePerson, rec.Deadline)
			fmt.Fprintf(out, "  Risk Rating: %d (%s)\n\n", rec.RiskRating, rec.Band())
		}
		return nil
	}),
}

func parseReportSort(raw string) (ports.SortKey, error) {
	switch raw {
	case "", "newest":
		return ports.SortNewestFirst, nil
	case "oldest":
		return ports.SortOldestFirst, nil
	case "risk":
		return ports.SortHighestRiskFirst, nil
	default:
		return 0, fmt.Errorf("unknown sort %q, expected newest, oldest or risk", raw)
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("search", "", "Filter by substring of description, location or floor")
	reportCmd.Flags().String("sort", "newest", "Sort order: newest, oldest or risk")
}
