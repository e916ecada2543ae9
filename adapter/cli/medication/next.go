package medication

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/queries"
)

func newNextCmd() *cobra.Command {
	var (
		tag    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "next [medication-id]",
		Short: "Show when the next dose is due",
		Long: `Show the next due dose of a medication, or of the single medication
carrying a tag.

Examples:
  nextdose med next ibuprofen
  nextdose med next --tag pain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := queries.NextDoseQuery{Tag: tag}
			if len(args) == 1 {
				query.MedicationID = args[0]
			}
			if query.MedicationID == "" && query.Tag == "" {
				return errors.New("either a medication id or --tag is required")
			}

			app, err := cli.LoadApp(cmd)
			if err != nil {
				return err
			}
			if app.NextDoseHandler == nil {
				return errors.New("next dose lookup is not available")
			}

			dose, err := app.NextDoseHandler.Handle(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, dose)
			}
			fmt.Fprintf(out, "%s: next dose at %s\n", dose.MedicationID, formatDose(*dose))
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "look up the medication carrying this tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
