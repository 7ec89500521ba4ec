package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"riskwatch/internal/bootstrap"
	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/errs"
	"riskwatch/internal/usecase/observations"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Bulk-load pre-scored observations from a YAML file",
	Long:  "Loads observations that were already assessed elsewhere. Entries bypass the AI analysis step; risk ratings are recomputed from likelihood and severity.",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *observations.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		path := cmd.Flags().Args()[0]
		raw, err := os.ReadFile(path)
		if err != nil {
			return errs.Wrapf(err, "read seed file %q", path)
		}

		var entries []observations.SeedEntry
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return errs.Wrapf(err, "parse seed file %q", path)
		}

		count, err := svc.Seed(ctx, entries)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d observations from %s.\n", count, path)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
