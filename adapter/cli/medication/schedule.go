package medication

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/commands"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
)

func newScheduleCmd() *cobra.Command {
	var (
		from     string
		every    string
		doseType string
		tags     []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "schedule [medication-id]",
		Short: "Add a dosing schedule",
		Long: `Add a dosing schedule for a medication. The newest schedule of a
medication is the one in effect.

Examples:
  nextdose med schedule ibuprofen --every "4 hour" --tag pain
  nextdose med schedule salbutamol --from 2024-01-05T08:00:00+01:00 --every "6 hour" --type puff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.LoadApp(cmd)
			if err != nil {
				return err
			}
			if app.AddScheduleHandler == nil {
				return errors.New("scheduling is not available")
			}

			start, err := parseTimestamp("from", from)
			if err != nil {
				return err
			}

			result, err := app.AddScheduleHandler.Handle(cmd.Context(), commands.AddScheduleCommand{
				MedicationID: args[0],
				Tags:         tags,
				From:         start,
				Every:        every,
				Type:         doseType,
			})
			if err != nil {
				return fmt.Errorf("failed to add schedule: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"medication_id": result.Next.ID.String(),
					"from":          result.Entry.From,
					"every":         result.Entry.Next,
					"type":          result.Entry.Type,
					"next_due":      result.Next.When,
				})
			}

			fmt.Fprintf(out, "Scheduled %s every %s from %s\n",
				result.Next.ID, result.Entry.Next, convert.FormatISOTime(result.Entry.From))
			fmt.Fprintf(out, "  Next dose: %s (%s)\n", convert.FormatISOTime(result.Next.When), result.Next.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "schedule start (default now)")
	cmd.Flags().StringVarP(&every, "every", "e", "", `dosing interval, e.g. "4 hour"`)
	cmd.Flags().StringVarP(&doseType, "type", "t", "", "dose label (default PRN)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag for a new medication (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("every")

	return cmd
}
