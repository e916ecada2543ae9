package medication

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nextdose/adapter/cli"
	internalApp "github.com/felixgeelhaar/nextdose/internal/app"
	"github.com/felixgeelhaar/nextdose/pkg/config"
)

// setupTestApp wires a CLI app over a YAML store in a temp directory.
func setupTestApp(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "medications.yml")
	cfg := &config.Config{
		AppEnv:           "test",
		LogLevel:         "error",
		StorageDriver:    config.StoreYAML,
		YAMLPath:         path,
		DatabaseMaxConns: 1,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	cli.SetApp(cli.NewApp(
		cfg,
		logger,
		container.AddScheduleHandler,
		container.RegisterIntakeHandler,
		container.NextDoseHandler,
		container.ListMedicationsHandler,
	))
	t.Cleanup(func() { cli.SetApp(nil) })

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScheduleAndNext(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "schedule", "ibuprofen",
		"--from", "2024-01-05T11:38:00+04:00", "--every", "4 hour", "--tag", "pain", "--tag", "fever")
	require.NoError(t, err)
	assert.Contains(t, out, "Scheduled ibuprofen every 4 hour from 2024-01-05T11:38:00+04:00")
	assert.Contains(t, out, "Next dose: 2024-01-05T15:38:00+04:00 (PRN)")

	out, err = run(t, "next", "ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, "ibuprofen: next dose at 2024-01-05T15:38:00+04:00 (PRN)\n", out)

	out, err = run(t, "next", "--tag", "fever")
	require.NoError(t, err)
	assert.Contains(t, out, "ibuprofen: next dose at 2024-01-05T15:38:00+04:00")
}

func TestScheduleRequiresEvery(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "schedule", "ibuprofen")

	assert.Error(t, err)
}

func TestScheduleRejectsBadInterval(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "schedule", "ibuprofen", "--every", "3 days")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add schedule")
}

func TestIntakeMovesNextDose(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "schedule", "ibuprofen", "--from", "2024-01-05T11:38:00+04:00", "--every", "4 hour")
	require.NoError(t, err)

	out, err := run(t, "intake", "ibuprofen", "--at", "2024-01-05T14:51:00+03:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered PRN intake of ibuprofen at 2024-01-05T14:51:00+03:00")
	assert.Contains(t, out, "Next dose: 2024-01-05T18:51:00+03:00 (PRN)")

	out, err = run(t, "next", "ibuprofen", "--json")
	require.NoError(t, err)

	var dose map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &dose))
	assert.Equal(t, "ibuprofen", dose["medication_id"])
	assert.Equal(t, "2024-01-05T18:51:00+03:00", dose["when"])
	assert.Equal(t, "PRN", dose["type"])
}

func TestIntakeUnknownMedication(t *testing.T) {
	path := setupTestApp(t)

	_, err := run(t, "intake", "aspirin")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown medication")
	assert.NoFileExists(t, path)
}

func TestIntakeInvalidTimestamp(t *testing.T) {
	setupTestApp(t)
	_, err := run(t, "schedule", "ibuprofen", "--every", "4 hour")
	require.NoError(t, err)

	_, err = run(t, "intake", "ibuprofen", "--at", "yesterday")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
}

func TestNextRequiresSelector(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, "next")
	require.Error(t, err)

	_, err = run(t, "next", "ibuprofen", "--tag", "pain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestNextAmbiguousTag(t *testing.T) {
	setupTestApp(t)
	_, err := run(t, "schedule", "ibuprofen", "--every", "4 hour", "--tag", "pain")
	require.NoError(t, err)
	_, err = run(t, "schedule", "paracetamol", "--every", "6 hour", "--tag", "pain")
	require.NoError(t, err)

	_, err = run(t, "next", "--tag", "pain")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ibuprofen")
	assert.Contains(t, err.Error(), "paracetamol")
}

func TestList(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No medications found.")

	_, err = run(t, "schedule", "ibuprofen", "--from", "2024-01-05T11:38:00+04:00", "--every", "4 hour", "--tag", "pain")
	require.NoError(t, err)
	_, err = run(t, "schedule", "salbutamol", "--from", "2024-01-05T08:00:00+01:00", "--every", "6 hour", "--type", "puff", "--tag", "asthma")
	require.NoError(t, err)

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "ibuprofen")
	assert.Contains(t, out, "2024-01-05T14:00:00+01:00 (puff)")

	out, err = run(t, "list", "--tag", "asthma", "--json")
	require.NoError(t, err)

	var meds []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &meds))
	require.Len(t, meds, 1)
	assert.Equal(t, "salbutamol", meds[0]["id"])
	assert.Equal(t, "6 hour", meds[0]["every"])
}

func TestLoadAppWithoutBootstrap(t *testing.T) {
	cli.SetApp(nil)

	_, err := run(t, "list")

	assert.Error(t, err)
}
