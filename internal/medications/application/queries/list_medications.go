package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/nextdose/internal/medications/application"
	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
)

// MedicationDTO is a data transfer object for a medication record.
type MedicationDTO struct {
	ID            string     `json:"id"`
	Tags          []string   `json:"tags"`
	ScheduleCount int        `json:"schedule_count"`
	IntakeCount   int        `json:"intake_count"`
	Every         string     `json:"every,omitempty"` // interval of the active schedule
	LastIntake    *time.Time `json:"last_intake,omitempty"`
	NextDue       *DoseDTO   `json:"next_due,omitempty"`
	NextError     string     `json:"next_error,omitempty"` // set when NextDue cannot be computed
}

// ListMedicationsQuery contains the parameters for listing medications.
type ListMedicationsQuery struct {
	Tag string // only medications carrying this tag
}

// ListMedicationsHandler handles the ListMedicationsQuery.
type ListMedicationsHandler struct {
	registry *application.Registry
}

// NewListMedicationsHandler creates a new ListMedicationsHandler.
func NewListMedicationsHandler(registry *application.Registry) *ListMedicationsHandler {
	return &ListMedicationsHandler{registry: registry}
}

// Handle executes the ListMedicationsQuery. Results are ordered by id.
func (h *ListMedicationsHandler) Handle(ctx context.Context, query ListMedicationsQuery) ([]MedicationDTO, error) {
	var dtos []MedicationDTO

	err := h.registry.View(func(s *domain.Scheduler) error {
		for _, id := range s.IDs() {
			record, ok := s.Record(id)
			if !ok {
				continue
			}
			if query.Tag != "" && !record.HasTag(query.Tag) {
				continue
			}

			dto := MedicationDTO{
				ID:            id.String(),
				Tags:          record.Tags(),
				ScheduleCount: len(record.Schedules()),
				IntakeCount:   len(record.Intakes()),
			}
			if schedule, ok := record.LastSchedule(); ok {
				dto.Every = schedule.Next
			}
			if intake, ok := record.LastIntake(); ok {
				when := intake.When
				dto.LastIntake = &when
			}

			next, err := s.NextMedicineByID(id)
			if err != nil {
				dto.NextError = err.Error()
			} else {
				due := toDoseDTO(next)
				dto.NextDue = &due
			}

			dtos = append(dtos, dto)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dtos, nil
}
