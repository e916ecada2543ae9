package medication

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/commands"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
)

func newIntakeCmd() *cobra.Command {
	var (
		at       string
		doseType string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "intake [medication-id]",
		Short: "Register a dose that was taken",
		Long: `Register an intake of a scheduled medication.

Examples:
  nextdose med intake ibuprofen
  nextdose med intake ibuprofen --at "2024-01-05 14:51"`,
		Aliases: []string{"take", "taken"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.LoadApp(cmd)
			if err != nil {
				return err
			}
			if app.RegisterIntakeHandler == nil {
				return errors.New("intake registration is not available")
			}

			when, err := parseTimestamp("at", at)
			if err != nil {
				return err
			}

			result, err := app.RegisterIntakeHandler.Handle(cmd.Context(), commands.RegisterIntakeCommand{
				MedicationID: args[0],
				When:         when,
				Type:         doseType,
			})
			if err != nil {
				return fmt.Errorf("failed to register intake: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				payload := map[string]any{
					"medication_id": result.ID.String(),
					"when":          result.Intake.When,
					"type":          result.Intake.Type,
				}
				if result.Next != nil {
					payload["next_due"] = result.Next.When
				}
				if result.NextError != "" {
					payload["next_error"] = result.NextError
				}
				return writeJSON(out, payload)
			}

			fmt.Fprintf(out, "Registered %s intake of %s at %s\n",
				result.Intake.Type, result.ID, convert.FormatISOTime(result.Intake.When))
			if result.Next != nil {
				fmt.Fprintf(out, "  Next dose: %s (%s)\n", convert.FormatISOTime(result.Next.When), result.Next.Type)
			} else {
				fmt.Fprintf(out, "  Next dose unavailable: %s\n", result.NextError)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "when the dose was taken (default now)")
	cmd.Flags().StringVarP(&doseType, "type", "t", "", "dose label (default PRN)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
