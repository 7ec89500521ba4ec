package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"riskwatch/internal/bootstrap"
	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/errs"
	"riskwatch/internal/usecase/observations"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a safety observation",
	Long:  "Runs one intake: the observation is validated, enriched through the AI analysis step, and stored. Oracle failures degrade to sentinel values; the observation is stored either way.",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *observations.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		floor, _ := cmd.Flags().GetString("floor")
		location, _ := cmd.Flags().GetString("location")
		description, _ := cmd.Flags().GetString("description")
		photoPath, _ := cmd.Flags().GetString("photo")

		in := observations.SubmitInput{
			Floor:       floor,
			Location:    location,
			Description: description,
		}
		if photoPath != "" {
			photo, err := os.ReadFile(photoPath)
			if err != nil {
				return errs.Wrapf(err, "read photo %q", photoPath)
			}
			in.Photo = photo
		}

		res, err := svc.Submit(ctx, in)
		if err != nil {
			return errs.Wrap(err, "submit observation")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Observation #%d successfully saved (risk %d, %s).\n",
			res.ID, res.Record.RiskRating, res.Record.Band()); err != nil {
			return errs.Wrap(err, "write submit output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().String("floor", "", "Floor as entered by the observer, e.g. \"Ground Floor\", \"B1\", \"lvl 2\"")
	submitCmd.Flags().String("location", "", "Location, e.g. \"Main Lobby\"")
	submitCmd.Flags().String("description", "", "What was observed")
	submitCmd.Flags().String("photo", "", "Optional path to a photo file")
	_ = submitCmd.MarkFlagRequired("floor")
	_ = submitCmd.MarkFlagRequired("location")
	_ = submitCmd.MarkFlagRequired("description")
}
