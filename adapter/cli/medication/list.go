package medication

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/queries"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
)

func newListCmd() *cobra.Command {
	var (
		tag    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List medications",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.LoadApp(cmd)
			if err != nil {
				return err
			}
			if app.ListMedicationsHandler == nil {
				return errors.New("medication listing is not available")
			}

			meds, err := app.ListMedicationsHandler.Handle(cmd.Context(), queries.ListMedicationsQuery{Tag: tag})
			if err != nil {
				return fmt.Errorf("failed to list medications: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if meds == nil {
					meds = []queries.MedicationDTO{}
				}
				return writeJSON(out, meds)
			}

			if len(meds) == 0 {
				fmt.Fprintln(out, "No medications found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTAGS\tEVERY\tLAST INTAKE\tNEXT DUE")
			for _, med := range meds {
				last := "-"
				if med.LastIntake != nil {
					last = convert.FormatISOTime(*med.LastIntake)
				}
				next := med.NextError
				if med.NextDue != nil {
					next = formatDose(*med.NextDue)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					med.ID, strings.Join(med.Tags, ","), med.Every, last, next)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only medications carrying this tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}
