package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
	"github.com/felixgeelhaar/nextdose/internal/shared/infrastructure/convert"
)

// yamlDocument is the on-disk layout of a medications file.
type yamlDocument struct {
	Medications []yamlMedication `yaml:"medications"`
}

type yamlMedication struct {
	ID        string         `yaml:"id"`
	Tags      []string       `yaml:"tags"`
	Intakes   []yamlIntake   `yaml:"intakes"`
	Schedules []yamlSchedule `yaml:"schedules"`
}

type yamlSchedule struct {
	From string `yaml:"from"`
	Next string `yaml:"next"`
	Type string `yaml:"type"`
}

// yamlIntake is either a bare timestamp (a PRN dose) or a {when, type} mapping.
type yamlIntake struct {
	When string `yaml:"when"`
	Type string `yaml:"type,omitempty"`
}

func (i *yamlIntake) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		i.When = value.Value
		i.Type = domain.DefaultIntakeType
		return nil
	}

	type plain yamlIntake
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = domain.DefaultIntakeType
	}
	*i = yamlIntake(p)
	return nil
}

func (i yamlIntake) MarshalYAML() (any, error) {
	if i.Type == "" || i.Type == domain.DefaultIntakeType {
		return i.When, nil
	}
	type plain yamlIntake
	return plain(i), nil
}

// YAMLRepository stores medication records in a single YAML document.
// Appends rewrite the whole document through a temporary file.
type YAMLRepository struct {
	path string
	mu   sync.Mutex
}

// NewYAMLRepository creates a repository backed by the file at path.
func NewYAMLRepository(path string) *YAMLRepository {
	return &YAMLRepository{path: path}
}

// Path returns the backing file path.
func (r *YAMLRepository) Path() string { return r.path }

// Read loads every medication in the document. A missing file is an empty
// document.
func (r *YAMLRepository) Read(ctx context.Context) (map[domain.MedicationID]*domain.MedicationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return toRecords(doc)
}

// AppendSchedule adds entry to the medication, creating it with tags if needed.
func (r *YAMLRepository) AppendSchedule(ctx context.Context, id domain.MedicationID, tags []string, entry domain.ScheduleEntry) error {
	return r.modify(func(doc *yamlDocument) error {
		med := doc.find(id)
		if med == nil {
			doc.Medications = append(doc.Medications, yamlMedication{
				ID:   id.String(),
				Tags: slices.Clone(tags),
			})
			med = &doc.Medications[len(doc.Medications)-1]
		}
		med.Schedules = append(med.Schedules, yamlSchedule{
			From: convert.FormatISOTime(entry.From),
			Next: entry.Next,
			Type: entry.Type,
		})
		return nil
	})
}

// AppendIntake adds intake to an existing medication.
func (r *YAMLRepository) AppendIntake(ctx context.Context, id domain.MedicationID, intake domain.IntakeEvent) error {
	return r.modify(func(doc *yamlDocument) error {
		med := doc.find(id)
		if med == nil {
			return fmt.Errorf("%w: %q", domain.ErrUnknownMedication, id)
		}
		med.Intakes = append(med.Intakes, yamlIntake{
			When: convert.FormatISOTime(intake.When),
			Type: intake.Type,
		})
		return nil
	})
}

func (r *YAMLRepository) modify(fn func(doc *yamlDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return r.store(doc)
}

func (r *YAMLRepository) load() (*yamlDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &yamlDocument{}, nil
		}
		return nil, fmt.Errorf("failed to read medications file: %w", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse medications file %s: %w", r.path, err)
	}
	return &doc, nil
}

func (r *YAMLRepository) store(doc *yamlDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode medications file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create medications directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write medications file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace medications file: %w", err)
	}
	return nil
}

func (d *yamlDocument) find(id domain.MedicationID) *yamlMedication {
	for i := range d.Medications {
		if d.Medications[i].ID == id.String() {
			return &d.Medications[i]
		}
	}
	return nil
}

func toRecords(doc *yamlDocument) (map[domain.MedicationID]*domain.MedicationRecord, error) {
	records := make(map[domain.MedicationID]*domain.MedicationRecord, len(doc.Medications))

	for _, med := range doc.Medications {
		if med.ID == "" {
			return nil, errors.New("medication without id")
		}
		id := domain.MedicationID(med.ID)

		schedules := make([]domain.ScheduleEntry, 0, len(med.Schedules))
		for i, s := range med.Schedules {
			from, err := convert.ParseISOTime(s.From, nil)
			if err != nil {
				return nil, fmt.Errorf("medication %q schedule %d: %w", med.ID, i, err)
			}
			schedules = append(schedules, domain.ScheduleEntry{From: from, Next: s.Next, Type: s.Type})
		}

		intakes := make([]domain.IntakeEvent, 0, len(med.Intakes))
		for i, in := range med.Intakes {
			when, err := convert.ParseISOTime(in.When, nil)
			if err != nil {
				return nil, fmt.Errorf("medication %q intake %d: %w", med.ID, i, err)
			}
			intakes = append(intakes, domain.IntakeEvent{When: when, Type: in.Type})
		}

		records[id] = domain.RehydrateMedicationRecord(id, med.Tags, schedules, intakes)
	}

	return records, nil
}
