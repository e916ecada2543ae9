package persistence

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/database"
)

// SQLMedicationRepository implements domain.Repository on top of a
// database.Connection. It works with both the SQLite and PostgreSQL drivers.
type SQLMedicationRepository struct {
	conn database.Connection
}

// NewSQLMedicationRepository creates a new SQL medication repository.
func NewSQLMedicationRepository(conn database.Connection) *SQLMedicationRepository {
	return &SQLMedicationRepository{conn: conn}
}

func (r *SQLMedicationRepository) executor(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *SQLMedicationRepository) bind(query string) string {
	return r.conn.Driver().Rebind(query)
}

// Read loads every medication with its tags, schedules and intakes.
func (r *SQLMedicationRepository) Read(ctx context.Context) (map[domain.MedicationID]*domain.MedicationRecord, error) {
	type parts struct {
		tags      []string
		schedules []domain.ScheduleEntry
		intakes   []domain.IntakeEvent
	}

	byID := make(map[domain.MedicationID]*parts)
	var order []domain.MedicationID

	err := database.InTransaction(ctx, r.conn, func(txCtx context.Context) error {
		q := r.executor(txCtx)

		if err := scanAll(txCtx, q, `SELECT id FROM medications ORDER BY id`, nil, func(row database.Rows) error {
			var id string
			if err := row.Scan(&id); err != nil {
				return err
			}
			mid := domain.MedicationID(id)
			byID[mid] = &parts{}
			order = append(order, mid)
			return nil
		}); err != nil {
			return fmt.Errorf("failed to read medications: %w", err)
		}

		if err := scanAll(txCtx, q, `SELECT medication_id, tag FROM medication_tags ORDER BY medication_id, position`, nil, func(row database.Rows) error {
			var id, tag string
			if err := row.Scan(&id, &tag); err != nil {
				return err
			}
			if p, ok := byID[domain.MedicationID(id)]; ok {
				p.tags = append(p.tags, tag)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to read medication tags: %w", err)
		}

		if err := scanAll(txCtx, q, `SELECT medication_id, starts_at, every, dose_type FROM medication_schedules ORDER BY medication_id, seq`, nil, func(row database.Rows) error {
			var id, startsAt, every, doseType string
			if err := row.Scan(&id, &startsAt, &every, &doseType); err != nil {
				return err
			}
			from, err := convert.ParseISOTime(startsAt, nil)
			if err != nil {
				return fmt.Errorf("medication %q: %w", id, err)
			}
			if p, ok := byID[domain.MedicationID(id)]; ok {
				p.schedules = append(p.schedules, domain.ScheduleEntry{From: from, Next: every, Type: doseType})
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to read medication schedules: %w", err)
		}

		if err := scanAll(txCtx, q, `SELECT medication_id, taken_at, dose_type FROM medication_intakes ORDER BY medication_id, seq`, nil, func(row database.Rows) error {
			var id, takenAt, doseType string
			if err := row.Scan(&id, &takenAt, &doseType); err != nil {
				return err
			}
			when, err := convert.ParseISOTime(takenAt, nil)
			if err != nil {
				return fmt.Errorf("medication %q: %w", id, err)
			}
			if p, ok := byID[domain.MedicationID(id)]; ok {
				p.intakes = append(p.intakes, domain.IntakeEvent{When: when, Type: doseType})
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to read medication intakes: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make(map[domain.MedicationID]*domain.MedicationRecord, len(order))
	for _, id := range order {
		p := byID[id]
		records[id] = domain.RehydrateMedicationRecord(id, p.tags, p.schedules, p.intakes)
	}
	return records, nil
}

// AppendSchedule adds entry to the medication, creating it with tags if needed.
func (r *SQLMedicationRepository) AppendSchedule(ctx context.Context, id domain.MedicationID, tags []string, entry domain.ScheduleEntry) error {
	return database.InTransaction(ctx, r.conn, func(txCtx context.Context) error {
		q := r.executor(txCtx)

		result, err := q.Exec(txCtx, r.bind(`INSERT INTO medications (id) VALUES (?) ON CONFLICT (id) DO NOTHING`), id.String())
		if err != nil {
			return fmt.Errorf("failed to create medication: %w", err)
		}
		created, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if created > 0 {
			if err := r.insertTags(txCtx, q, id, tags); err != nil {
				return err
			}
		}

		seq, err := r.nextSeq(txCtx, q, "medication_schedules", id)
		if err != nil {
			return err
		}

		_, err = q.Exec(txCtx, r.bind(`
			INSERT INTO medication_schedules (id, medication_id, seq, starts_at, every, dose_type)
			VALUES (?, ?, ?, ?, ?, ?)`),
			uuid.New().String(), id.String(), seq, convert.FormatISOTime(entry.From), entry.Next, entry.Type,
		)
		if err != nil {
			return fmt.Errorf("failed to append schedule: %w", err)
		}
		return nil
	})
}

// AppendIntake adds intake to an existing medication.
func (r *SQLMedicationRepository) AppendIntake(ctx context.Context, id domain.MedicationID, intake domain.IntakeEvent) error {
	return database.InTransaction(ctx, r.conn, func(txCtx context.Context) error {
		q := r.executor(txCtx)

		var found string
		err := q.QueryRow(txCtx, r.bind(`SELECT id FROM medications WHERE id = ?`), id.String()).Scan(&found)
		if err != nil {
			if database.IsNoRows(err) {
				return fmt.Errorf("%w: %q", domain.ErrUnknownMedication, id)
			}
			return err
		}

		seq, err := r.nextSeq(txCtx, q, "medication_intakes", id)
		if err != nil {
			return err
		}

		_, err = q.Exec(txCtx, r.bind(`
			INSERT INTO medication_intakes (id, medication_id, seq, taken_at, dose_type)
			VALUES (?, ?, ?, ?, ?)`),
			uuid.New().String(), id.String(), seq, convert.FormatISOTime(intake.When), intake.Type,
		)
		if err != nil {
			return fmt.Errorf("failed to append intake: %w", err)
		}
		return nil
	})
}

func (r *SQLMedicationRepository) insertTags(ctx context.Context, q database.Executor, id domain.MedicationID, tags []string) error {
	seen := make([]string, 0, len(tags))
	for _, tag := range tags {
		if slices.Contains(seen, tag) {
			continue
		}
		seen = append(seen, tag)

		_, err := q.Exec(ctx, r.bind(`INSERT INTO medication_tags (medication_id, tag, position) VALUES (?, ?, ?)`),
			id.String(), tag, len(seen))
		if err != nil {
			return fmt.Errorf("failed to store tag %q: %w", tag, err)
		}
	}
	return nil
}

// nextSeq returns the next append position in table for id. Callers hold a
// transaction so the read and the insert are not interleaved with another
// writer's.
func (r *SQLMedicationRepository) nextSeq(ctx context.Context, q database.Executor, table string, id domain.MedicationID) (int64, error) {
	var seq int64
	query := r.bind(`SELECT COALESCE(MAX(seq), 0) + 1 FROM ` + table + ` WHERE medication_id = ?`)
	if err := q.QueryRow(ctx, query, id.String()).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence in %s: %w", table, err)
	}
	return seq, nil
}

func scanAll(ctx context.Context, q database.Executor, query string, args []any, fn func(database.Rows) error) error {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
