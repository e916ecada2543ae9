package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/commands"
	"github.com/felixgeelhaar/nextdose/internal/medications/application/queries"
	"github.com/felixgeelhaar/nextdose/pkg/observability"
)

type medicationScheduleInput struct {
	MedicationID string   `json:"medication_id" jsonschema:"required"`
	Every        string   `json:"every" jsonschema:"required"`
	From         string   `json:"from,omitempty"`
	Type         string   `json:"type,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type medicationIntakeInput struct {
	MedicationID string `json:"medication_id" jsonschema:"required"`
	When         string `json:"when,omitempty"`
	Type         string `json:"type,omitempty"`
}

type medicationNextInput struct {
	MedicationID string `json:"medication_id,omitempty"`
	Tag          string `json:"tag,omitempty"`
}

type medicationListInput struct {
	Tag string `json:"tag,omitempty"`
}

type scheduleOutput struct {
	MedicationID string    `json:"medication_id"`
	From         time.Time `json:"from"`
	Every        string    `json:"every"`
	Type         string    `json:"type"`
	NextDue      time.Time `json:"next_due"`
}

type intakeOutput struct {
	MedicationID string     `json:"medication_id"`
	When         time.Time  `json:"when"`
	Type         string     `json:"type"`
	NextDue      *time.Time `json:"next_due,omitempty"`
	NextError    string     `json:"next_error,omitempty"`
}

type medicationTools struct {
	app *cli.App
}

func registerMedicationTools(srv *mcp.Server, deps ToolDependencies) error {
	tools := medicationTools{app: deps.App}
	logger := deps.App.Logger

	srv.Tool("medication.schedule").
		Description("Add a dosing schedule for a medication; the newest schedule is the one in effect").
		Handler(traced(logger, "medication.schedule", tools.schedule))

	srv.Tool("medication.intake").
		Description("Register that a dose of a scheduled medication was taken").
		Handler(traced(logger, "medication.intake", tools.intake))

	srv.Tool("medication.next").
		Description("Get the next due dose of a medication, by id or by tag").
		Handler(traced(logger, "medication.next", tools.next))

	srv.Tool("medication.list").
		Description("List medications with their last intake and next due dose").
		Handler(traced(logger, "medication.list", tools.list))

	return nil
}

// traced gives each tool call a request id and logs its outcome and duration.
func traced[I, O any](logger *slog.Logger, tool string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, input I) (O, error) {
		ctx = observability.WithOperation(observability.WithRequestID(ctx, ""), tool)
		timer := observability.StartTimer(logger, tool)
		out, err := fn(ctx, input)
		timer.Stop(ctx, err)
		return out, err
	}
}

func (t medicationTools) schedule(ctx context.Context, input medicationScheduleInput) (*scheduleOutput, error) {
	if t.app == nil || t.app.AddScheduleHandler == nil {
		return nil, errors.New("scheduling is not available")
	}
	from, err := parseOptionalTime("from", input.From)
	if err != nil {
		return nil, err
	}

	result, err := t.app.AddScheduleHandler.Handle(ctx, commands.AddScheduleCommand{
		MedicationID: input.MedicationID,
		Tags:         input.Tags,
		From:         from,
		Every:        input.Every,
		Type:         input.Type,
	})
	if err != nil {
		return nil, err
	}

	return &scheduleOutput{
		MedicationID: result.Next.ID.String(),
		From:         result.Entry.From,
		Every:        result.Entry.Next,
		Type:         result.Entry.Type,
		NextDue:      result.Next.When,
	}, nil
}

func (t medicationTools) intake(ctx context.Context, input medicationIntakeInput) (*intakeOutput, error) {
	if t.app == nil || t.app.RegisterIntakeHandler == nil {
		return nil, errors.New("intake registration is not available")
	}
	when, err := parseOptionalTime("when", input.When)
	if err != nil {
		return nil, err
	}

	result, err := t.app.RegisterIntakeHandler.Handle(ctx, commands.RegisterIntakeCommand{
		MedicationID: input.MedicationID,
		When:         when,
		Type:         input.Type,
	})
	if err != nil {
		return nil, err
	}

	out := &intakeOutput{
		MedicationID: result.ID.String(),
		When:         result.Intake.When,
		Type:         result.Intake.Type,
		NextError:    result.NextError,
	}
	if result.Next != nil {
		due := result.Next.When
		out.NextDue = &due
	}
	return out, nil
}

func (t medicationTools) next(ctx context.Context, input medicationNextInput) (*queries.DoseDTO, error) {
	if t.app == nil || t.app.NextDoseHandler == nil {
		return nil, errors.New("next dose lookup is not available")
	}
	return t.app.NextDoseHandler.Handle(ctx, queries.NextDoseQuery{
		MedicationID: input.MedicationID,
		Tag:          input.Tag,
	})
}

func (t medicationTools) list(ctx context.Context, input medicationListInput) ([]queries.MedicationDTO, error) {
	if t.app == nil || t.app.ListMedicationsHandler == nil {
		return nil, errors.New("medication listing is not available")
	}
	meds, err := t.app.ListMedicationsHandler.Handle(ctx, queries.ListMedicationsQuery{Tag: input.Tag})
	if err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []queries.MedicationDTO{}
	}
	return meds, nil
}
