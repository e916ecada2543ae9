package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nextdose/internal/medications/application"
	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
)

var testAnchor = time.Date(2024, 1, 5, 11, 38, 0, 0, time.FixedZone("+04", 4*60*60))

func newTestRegistry() *application.Registry {
	s := domain.NewScheduler(nil)
	s.AddMedicine("ibuprofen", []string{"pain", "shared"}, domain.ScheduleEntry{From: testAnchor, Next: "4 hour", Type: "PRN"})
	s.AddMedicine("salbutamol", []string{"asthma", "shared"}, domain.ScheduleEntry{From: testAnchor, Next: "6 hour", Type: "inhaler"})
	s.AddMedicine("legacy", nil, domain.ScheduleEntry{From: testAnchor, Next: "3 days", Type: "PRN"})
	_ = s.RegisterIntake("ibuprofen", domain.IntakeEvent{When: testAnchor.Add(time.Hour), Type: "PRN"})
	return application.NewRegistry(s)
}

func TestNextDoseHandler_Handle(t *testing.T) {
	handler := NewNextDoseHandler(newTestRegistry())
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		dose, err := handler.Handle(ctx, NextDoseQuery{MedicationID: "ibuprofen"})

		require.NoError(t, err)
		assert.Equal(t, "ibuprofen", dose.MedicationID)
		assert.Equal(t, testAnchor.Add(5*time.Hour), dose.When)
		assert.Equal(t, "PRN", dose.Type)
	})

	t.Run("by tag", func(t *testing.T) {
		dose, err := handler.Handle(ctx, NextDoseQuery{Tag: "asthma"})

		require.NoError(t, err)
		assert.Equal(t, "salbutamol", dose.MedicationID)
		assert.Equal(t, testAnchor.Add(6*time.Hour), dose.When)
		assert.Equal(t, "inhaler", dose.Type)
	})

	t.Run("ambiguous tag", func(t *testing.T) {
		_, err := handler.Handle(ctx, NextDoseQuery{Tag: "shared"})

		assert.ErrorIs(t, err, domain.ErrAmbiguousTag)
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := handler.Handle(ctx, NextDoseQuery{Tag: "sleep"})

		assert.ErrorIs(t, err, domain.ErrTagNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := handler.Handle(ctx, NextDoseQuery{MedicationID: "aspirin"})

		assert.ErrorIs(t, err, domain.ErrUnknownMedication)
	})

	t.Run("neither id nor tag", func(t *testing.T) {
		_, err := handler.Handle(ctx, NextDoseQuery{})

		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("both id and tag", func(t *testing.T) {
		_, err := handler.Handle(ctx, NextDoseQuery{MedicationID: "ibuprofen", Tag: "pain"})

		assert.ErrorIs(t, err, ErrInvalidQuery)
	})
}
