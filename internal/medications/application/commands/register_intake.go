package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/nextdose/internal/medications/application"
	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
)

// RegisterIntakeCommand records that a dose was taken.
type RegisterIntakeCommand struct {
	MedicationID string
	When         time.Time // zero means now
	Type         string    // defaults to PRN
}

// RegisterIntakeResult contains the stored intake and, when it can be
// computed, the next due dose.
type RegisterIntakeResult struct {
	ID        domain.MedicationID
	Intake    domain.IntakeEvent
	Next      *domain.ScheduledMedication
	NextError string
}

// RegisterIntakeHandler handles the RegisterIntakeCommand.
type RegisterIntakeHandler struct {
	registry *application.Registry
	repo     domain.Repository
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegisterIntakeHandler creates a new RegisterIntakeHandler.
func NewRegisterIntakeHandler(registry *application.Registry, repo domain.Repository, logger *slog.Logger) *RegisterIntakeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterIntakeHandler{
		registry: registry,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the RegisterIntakeCommand. The intake is persisted only for
// medications the scheduler already knows.
func (h *RegisterIntakeHandler) Handle(ctx context.Context, cmd RegisterIntakeCommand) (*RegisterIntakeResult, error) {
	id := domain.MedicationID(strings.TrimSpace(cmd.MedicationID))
	if id == "" {
		return nil, fmt.Errorf("%w: medication id is required", ErrInvalidCommand)
	}

	intake := domain.IntakeEvent{When: cmd.When, Type: cmd.Type}
	if intake.When.IsZero() {
		intake.When = h.now()
	}
	if intake.Type == "" {
		intake.Type = domain.DefaultIntakeType
	}

	result := &RegisterIntakeResult{ID: id, Intake: intake}
	err := h.registry.Update(func(s *domain.Scheduler) error {
		if !s.Has(id) {
			// Produces the error listing the registered ids.
			return s.RegisterIntake(id, intake)
		}
		if err := h.repo.AppendIntake(ctx, id, intake); err != nil {
			return err
		}
		if err := s.RegisterIntake(id, intake); err != nil {
			return err
		}

		next, err := s.NextMedicineByID(id)
		if err != nil {
			result.NextError = err.Error()
			return nil
		}
		result.Next = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Next == nil {
		h.logger.WarnContext(ctx, "intake recorded without next dose",
			"medication_id", id.String(),
			"error", result.NextError,
		)
	} else {
		h.logger.InfoContext(ctx, "intake recorded",
			"medication_id", id.String(),
			"type", intake.Type,
			"next_due", result.Next.When,
		)
	}
	return result, nil
}
