package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nextdose/internal/medications/application"
)

func TestListMedicationsHandler_Handle(t *testing.T) {
	handler := NewListMedicationsHandler(newTestRegistry())
	ctx := context.Background()

	t.Run("lists every medication ordered by id", func(t *testing.T) {
		dtos, err := handler.Handle(ctx, ListMedicationsQuery{})

		require.NoError(t, err)
		require.Len(t, dtos, 3)
		assert.Equal(t, "ibuprofen", dtos[0].ID)
		assert.Equal(t, "legacy", dtos[1].ID)
		assert.Equal(t, "salbutamol", dtos[2].ID)

		ibuprofen := dtos[0]
		assert.Equal(t, []string{"pain", "shared"}, ibuprofen.Tags)
		assert.Equal(t, 1, ibuprofen.ScheduleCount)
		assert.Equal(t, 1, ibuprofen.IntakeCount)
		assert.Equal(t, "4 hour", ibuprofen.Every)
		require.NotNil(t, ibuprofen.LastIntake)
		assert.Equal(t, testAnchor.Add(time.Hour), *ibuprofen.LastIntake)
		require.NotNil(t, ibuprofen.NextDue)
		assert.Equal(t, testAnchor.Add(5*time.Hour), ibuprofen.NextDue.When)
	})

	t.Run("reports medications whose next dose cannot be computed", func(t *testing.T) {
		dtos, err := handler.Handle(ctx, ListMedicationsQuery{})

		require.NoError(t, err)
		legacy := dtos[1]
		assert.Nil(t, legacy.NextDue)
		assert.Nil(t, legacy.LastIntake)
		assert.Contains(t, legacy.NextError, "3 days")
	})

	t.Run("filters by tag", func(t *testing.T) {
		dtos, err := handler.Handle(ctx, ListMedicationsQuery{Tag: "shared"})

		require.NoError(t, err)
		require.Len(t, dtos, 2)
		assert.Equal(t, "ibuprofen", dtos[0].ID)
		assert.Equal(t, "salbutamol", dtos[1].ID)
	})

	t.Run("empty registry", func(t *testing.T) {
		dtos, err := NewListMedicationsHandler(application.NewRegistry(nil)).Handle(ctx, ListMedicationsQuery{})

		require.NoError(t, err)
		assert.Empty(t, dtos)
	})
}
