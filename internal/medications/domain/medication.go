package domain

import (
	"slices"
	"time"
)

// DefaultIntakeType labels intakes recorded without an explicit dose type.
const DefaultIntakeType = "PRN"

// MedicationID identifies a tracked medication.
type MedicationID string

// String returns the raw identifier.
func (id MedicationID) String() string { return string(id) }

// ScheduleEntry is one dosing regimen: starting at From, repeating every
// Next (interval text, see ParseInterval), with a dose label.
type ScheduleEntry struct {
	From time.Time
	Next string
	Type string
}

// IntakeEvent is one dose actually taken.
type IntakeEvent struct {
	When time.Time
	Type string
}

// ScheduledMedication is the computed next due dose of a medication.
type ScheduledMedication struct {
	ID   MedicationID
	When time.Time
	Type string
}

// Equal reports whether both results name the same medication, instant and type.
func (s ScheduledMedication) Equal(other ScheduledMedication) bool {
	return s.ID == other.ID && s.When.Equal(other.When) && s.Type == other.Type
}

// MedicationRecord aggregates everything known about one medication.
// Schedules and intakes are kept in insertion order and are append-only.
type MedicationRecord struct {
	id        MedicationID
	tags      []string
	schedules []ScheduleEntry
	intakes   []IntakeEvent
}

// NewMedicationRecord creates a record with empty histories. Repeated tags
// are kept once, in first-seen order.
func NewMedicationRecord(id MedicationID, tags []string) *MedicationRecord {
	return &MedicationRecord{
		id:        id,
		tags:      uniqueTags(tags),
		schedules: make([]ScheduleEntry, 0),
		intakes:   make([]IntakeEvent, 0),
	}
}

// RehydrateMedicationRecord recreates a record from persisted state.
func RehydrateMedicationRecord(id MedicationID, tags []string, schedules []ScheduleEntry, intakes []IntakeEvent) *MedicationRecord {
	r := NewMedicationRecord(id, tags)
	r.schedules = append(r.schedules, schedules...)
	r.intakes = append(r.intakes, intakes...)
	return r
}

// Getters
func (r *MedicationRecord) ID() MedicationID           { return r.id }
func (r *MedicationRecord) Tags() []string             { return slices.Clone(r.tags) }
func (r *MedicationRecord) Schedules() []ScheduleEntry { return slices.Clone(r.schedules) }
func (r *MedicationRecord) Intakes() []IntakeEvent     { return slices.Clone(r.intakes) }

// HasTag reports whether the record carries tag.
func (r *MedicationRecord) HasTag(tag string) bool {
	return slices.Contains(r.tags, tag)
}

// LastSchedule returns the authoritative (most recently added) schedule entry.
func (r *MedicationRecord) LastSchedule() (ScheduleEntry, bool) {
	if len(r.schedules) == 0 {
		return ScheduleEntry{}, false
	}
	return r.schedules[len(r.schedules)-1], true
}

// LastIntake returns the most recently recorded intake.
func (r *MedicationRecord) LastIntake() (IntakeEvent, bool) {
	if len(r.intakes) == 0 {
		return IntakeEvent{}, false
	}
	return r.intakes[len(r.intakes)-1], true
}

func (r *MedicationRecord) clone() *MedicationRecord {
	return RehydrateMedicationRecord(r.id, r.tags, r.schedules, r.intakes)
}

func uniqueTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
