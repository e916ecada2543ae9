package domain

import "context"

// Reader loads the persisted medication records used to seed a Scheduler.
type Reader interface {
	Read(ctx context.Context) (map[MedicationID]*MedicationRecord, error)
}

// Repository persists schedule and intake appends alongside the Scheduler.
// AppendSchedule stores tags only when it creates the medication.
type Repository interface {
	Reader
	AppendSchedule(ctx context.Context, id MedicationID, tags []string, entry ScheduleEntry) error
	AppendIntake(ctx context.Context, id MedicationID, intake IntakeEvent) error
}
