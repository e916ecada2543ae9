package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Scheduler is the in-memory registry of medication records. It owns every
// record it holds and is not safe for concurrent use; callers that share a
// Scheduler across goroutines must serialize access to it.
type Scheduler struct {
	records map[MedicationID]*MedicationRecord
}

// NewScheduler creates a scheduler seeded with records, typically the output
// of a Reader. The map is copied; a nil map yields an empty scheduler.
func NewScheduler(records map[MedicationID]*MedicationRecord) *Scheduler {
	s := &Scheduler{records: make(map[MedicationID]*MedicationRecord, len(records))}
	for id, record := range records {
		if record == nil {
			continue
		}
		owned := record.clone()
		owned.id = id
		s.records[id] = owned
	}
	return s
}

// AddMedicine appends a schedule entry for id, creating the record with tags
// on first use. Tags passed for an already registered id are ignored.
func (s *Scheduler) AddMedicine(id MedicationID, tags []string, entry ScheduleEntry) {
	record, ok := s.records[id]
	if !ok {
		record = NewMedicationRecord(id, tags)
		s.records[id] = record
	}
	record.schedules = append(record.schedules, entry)
}

// RegisterIntake appends an intake to an already registered medication.
func (s *Scheduler) RegisterIntake(id MedicationID, intake IntakeEvent) error {
	record, ok := s.records[id]
	if !ok {
		return s.unknown(id)
	}
	record.intakes = append(record.intakes, intake)
	return nil
}

// NextMedicineByID computes the next due dose from the latest schedule entry
// and the latest intake. The later of "last intake + interval" and
// "schedule start + interval" wins, so a stale intake never pulls the due
// time behind the active schedule.
func (s *Scheduler) NextMedicineByID(id MedicationID) (ScheduledMedication, error) {
	record, ok := s.records[id]
	if !ok {
		return ScheduledMedication{}, s.unknown(id)
	}

	schedule, ok := record.LastSchedule()
	if !ok {
		return ScheduledMedication{}, fmt.Errorf("%w: %q", ErrNoSchedule, id)
	}

	interval, err := ParseInterval(schedule.Next)
	if err != nil {
		return ScheduledMedication{}, err
	}

	due := schedule.From.Add(interval)
	if intake, ok := record.LastIntake(); ok {
		if fromIntake := intake.When.Add(interval); fromIntake.After(due) {
			due = fromIntake
		}
	}

	return ScheduledMedication{
		ID:   id,
		When: due,
		Type: schedule.Type,
	}, nil
}

// NextMedicineByTag resolves tag to exactly one medication and computes its
// next due dose.
func (s *Scheduler) NextMedicineByTag(tag string) (ScheduledMedication, error) {
	var matches []MedicationID
	for id, record := range s.records {
		if record.HasTag(tag) {
			matches = append(matches, id)
		}
	}
	slices.Sort(matches)

	switch len(matches) {
	case 0:
		return ScheduledMedication{}, fmt.Errorf("%w: %q not in %v", ErrTagNotFound, tag, s.tags())
	case 1:
		return s.NextMedicineByID(matches[0])
	default:
		return ScheduledMedication{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousTag, tag, joinIDs(matches))
	}
}

// Has reports whether id is registered.
func (s *Scheduler) Has(id MedicationID) bool {
	_, ok := s.records[id]
	return ok
}

// Record returns a copy of the record for id.
func (s *Scheduler) Record(id MedicationID) (*MedicationRecord, bool) {
	record, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return record.clone(), true
}

// IDs returns the registered ids in lexical order.
func (s *Scheduler) IDs() []MedicationID {
	ids := make([]MedicationID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered medications.
func (s *Scheduler) Len() int { return len(s.records) }

func (s *Scheduler) unknown(id MedicationID) error {
	return fmt.Errorf("%w: %q, currently registered: [%s]", ErrUnknownMedication, id, joinIDs(s.IDs()))
}

// tags returns the sorted, de-duplicated set of every registered tag.
func (s *Scheduler) tags() []string {
	var all []string
	for _, record := range s.records {
		all = append(all, record.tags...)
	}
	slices.Sort(all)
	return slices.Compact(all)
}

func joinIDs(ids []MedicationID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%q", id)
	}
	return strings.Join(parts, ", ")
}
