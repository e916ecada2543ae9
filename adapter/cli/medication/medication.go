package medication

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/internal/medications/application/queries"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
)

// Cmd is the medication command group
var Cmd = NewCmd()

// NewCmd builds the medication command group with fresh flag state.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "med",
		Aliases: []string{"medication", "meds"},
		Short:   "Schedule medications and log intakes",
		Long: `Add dosing schedules, register intakes and ask when the next dose is due.

Timestamps are ISO-8601. Values without an offset are read in the local
time zone.`,
	}

	cmd.AddCommand(newScheduleCmd())
	cmd.AddCommand(newIntakeCmd())
	cmd.AddCommand(newNextCmd())
	cmd.AddCommand(newListCmd())
	return cmd
}

func parseTimestamp(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := convert.ParseISOTime(value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return t, nil
}

func formatDose(dose queries.DoseDTO) string {
	return fmt.Sprintf("%s (%s)", convert.FormatISOTime(dose.When), dose.Type)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
