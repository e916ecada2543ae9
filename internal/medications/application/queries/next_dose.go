package queries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/nextdose/internal/medications/application"
	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
)

// ErrInvalidQuery is returned when a query cannot be resolved as given.
var ErrInvalidQuery = errors.New("invalid query")

// DoseDTO is a data transfer object for a due dose.
type DoseDTO struct {
	MedicationID string    `json:"medication_id"`
	When         time.Time `json:"when"`
	Type         string    `json:"type"`
}

func toDoseDTO(s domain.ScheduledMedication) DoseDTO {
	return DoseDTO{MedicationID: s.ID.String(), When: s.When, Type: s.Type}
}

// NextDoseQuery selects a medication by id or by tag. Exactly one must be set.
type NextDoseQuery struct {
	MedicationID string
	Tag          string
}

// NextDoseHandler handles the NextDoseQuery.
type NextDoseHandler struct {
	registry *application.Registry
}

// NewNextDoseHandler creates a new NextDoseHandler.
func NewNextDoseHandler(registry *application.Registry) *NextDoseHandler {
	return &NextDoseHandler{registry: registry}
}

// Handle executes the NextDoseQuery.
func (h *NextDoseHandler) Handle(ctx context.Context, query NextDoseQuery) (*DoseDTO, error) {
	id := strings.TrimSpace(query.MedicationID)
	tag := query.Tag

	switch {
	case id == "" && tag == "":
		return nil, fmt.Errorf("%w: a medication id or a tag is required", ErrInvalidQuery)
	case id != "" && tag != "":
		return nil, fmt.Errorf("%w: medication id and tag are mutually exclusive", ErrInvalidQuery)
	}

	var next domain.ScheduledMedication
	err := h.registry.View(func(s *domain.Scheduler) error {
		var err error
		if id != "" {
			next, err = s.NextMedicineByID(domain.MedicationID(id))
		} else {
			next, err = s.NextMedicineByTag(tag)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	dto := toDoseDTO(next)
	return &dto, nil
}
