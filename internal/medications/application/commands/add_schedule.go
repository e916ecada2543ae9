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

// AddScheduleCommand contains the data needed to schedule a medication.
type AddScheduleCommand struct {
	MedicationID string
	Tags         []string
	From         time.Time // zero means now
	Every        string    // "<n> hour"
	Type         string    // defaults to PRN
}

// AddScheduleResult contains the schedule that was stored and the resulting
// next due dose.
type AddScheduleResult struct {
	Entry domain.ScheduleEntry
	Next  domain.ScheduledMedication
}

// AddScheduleHandler handles the AddScheduleCommand.
type AddScheduleHandler struct {
	registry *application.Registry
	repo     domain.Repository
	logger   *slog.Logger
	now      func() time.Time
}

// NewAddScheduleHandler creates a new AddScheduleHandler.
func NewAddScheduleHandler(registry *application.Registry, repo domain.Repository, logger *slog.Logger) *AddScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddScheduleHandler{
		registry: registry,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the AddScheduleCommand.
func (h *AddScheduleHandler) Handle(ctx context.Context, cmd AddScheduleCommand) (*AddScheduleResult, error) {
	id := domain.MedicationID(strings.TrimSpace(cmd.MedicationID))
	if id == "" {
		return nil, fmt.Errorf("%w: medication id is required", ErrInvalidCommand)
	}
	interval, err := domain.ParseInterval(cmd.Every)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: interval %q must be at least 1 hour", ErrInvalidCommand, cmd.Every)
	}

	entry := domain.ScheduleEntry{
		From: cmd.From,
		Next: strings.TrimSpace(cmd.Every),
		Type: cmd.Type,
	}
	if entry.From.IsZero() {
		entry.From = h.now()
	}
	if entry.Type == "" {
		entry.Type = domain.DefaultIntakeType
	}

	var result *AddScheduleResult
	err = h.registry.Update(func(s *domain.Scheduler) error {
		if err := h.repo.AppendSchedule(ctx, id, cmd.Tags, entry); err != nil {
			return err
		}
		s.AddMedicine(id, cmd.Tags, entry)

		next, err := s.NextMedicineByID(id)
		if err != nil {
			return err
		}
		result = &AddScheduleResult{Entry: entry, Next: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "schedule added",
		"medication_id", id.String(),
		"every", entry.Next,
		"type", entry.Type,
		"next_due", result.Next.When,
	)
	return result, nil
}
