package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"riskwatch/internal/bootstrap"
	"riskwatch/internal/ports"
	"riskwatch/internal/usecase/observations"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an observation by id",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *observations.Service) error {
		id, err := strconv.ParseInt(cmd.Flags().Args()[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid observation id %q", cmd.Flags().Args()[0])
		}

		if err := svc.Delete(cmd.Context(), id); err != nil {
			if errors.Is(err, ports.ErrObservationNotFound) {
				return fmt.Errorf("observation #%d does not exist", id)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Observation #%d deleted.\n", id)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
