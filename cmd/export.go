package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"riskwatch/internal/bootstrap"
	"riskwatch/internal/errs"
	"riskwatch/internal/usecase/observations"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all observations to an xlsx report",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *observations.Service) error {
		outDir, _ := cmd.Flags().GetString("out")

		result, err := svc.ExportReport(cmd.Context())
		if err != nil {
			return err
		}

		path := filepath.Join(outDir, result.Filename)
		if err := os.WriteFile(path, result.Data, 0o644); err != nil {
			return errs.Wrapf(err, "write report to %s", path)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("out", ".", "Directory to write the report into")
}
