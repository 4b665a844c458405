package student

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classcheck/internal/reconcile"
)

// Student is one enrolled student.
type Student struct {
	ID        string    `json:"id"`
	StudentID string    `json:"studentId"`
	Prefix    string    `json:"prefix"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Level     string    `json:"level"`
	Track     *string   `json:"track,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	// ErrDuplicateID means the studentId is already taken.
	ErrDuplicateID = errors.New("student id already exists")
	// ErrNotFound means no student matches the given key.
	ErrNotFound = errors.New("student not found")
	// ErrValidation covers missing required fields.
	ErrValidation = errors.New("missing required student fields")
)

// Store is the persistence surface the service works against. The
// compound mutations run the whole fan-out in one transaction.
type Store interface {
	List(ctx context.Context, level, search string) ([]Student, error)
	Get(ctx context.Context, id string) (*Student, error)
	GetByStudentID(ctx context.Context, code string) (*Student, error)
	ExistsOtherWithStudentID(ctx context.Context, code, excludeID string) (bool, error)

	// ActiveEvents returns events not yet completed.
	ActiveEvents(ctx context.Context) ([]reconcile.Event, error)
	// AttendedEventIDs returns the event ids the student has rows for.
	AttendedEventIDs(ctx context.Context, studentID string) (map[string]bool, error)

	// CreateWithAttendance inserts the student and one absent row per
	// event id, atomically.
	CreateWithAttendance(ctx context.Context, s Student, eventIDs []string) (Student, error)
	// UpdateWithPlan updates the student and applies the attendance
	// diff, atomically.
	UpdateWithPlan(ctx context.Context, s Student, plan reconcile.Plan) (Student, error)
	Delete(ctx context.Context, id string) error
}

// Metrics receives reconciliation row counts.
type Metrics interface {
	AttendanceRows(trigger string, inserted, deleted int)
}

// Service owns student CRUD and the attendance reconciliation that
// rides along with it.
type Service struct {
	store   Store
	metrics Metrics
}

// NewService creates a service backed by a store.
func NewService(store Store, metrics Metrics) *Service {
	return &Service{store: store, metrics: metrics}
}

// List returns students filtered by level and free-text search, sorted
// by studentId.
func (s *Service) List(ctx context.Context, level, search string) ([]Student, error) {
	return s.store.List(ctx, level, search)
}

// Get returns one student.
func (s *Service) Get(ctx context.Context, id string) (*Student, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, ErrNotFound
	}
	return st, nil
}

// Create inserts a student and fans out absent attendance rows for every
// non-completed event whose levels admit the student's level.
func (s *Service) Create(ctx context.Context, in Student) (Student, error) {
	if in.StudentID == "" || in.Prefix == "" || in.FirstName == "" || in.LastName == "" || in.Level == "" {
		return Student{}, ErrValidation
	}

	existing, err := s.store.GetByStudentID(ctx, in.StudentID)
	if err != nil {
		return Student{}, err
	}
	if existing != nil {
		return Student{}, ErrDuplicateID
	}

	events, err := s.store.ActiveEvents(ctx)
	if err != nil {
		return Student{}, err
	}
	var eventIDs []string
	for _, e := range events {
		if reconcile.Eligible(in.Level, e.Levels) {
			eventIDs = append(eventIDs, e.ID)
		}
	}

	created, err := s.store.CreateWithAttendance(ctx, in, eventIDs)
	if err != nil {
		return Student{}, fmt.Errorf("create student: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AttendanceRows("student_create", len(eventIDs), 0)
	}
	return created, nil
}

// Update edits a student. When the level changed, stale attendance rows
// on non-completed events are deleted and missing eligible ones created.
// Rows on completed events are never touched.
func (s *Service) Update(ctx context.Context, in Student) (Student, error) {
	if in.ID == "" || in.StudentID == "" || in.Prefix == "" || in.FirstName == "" || in.LastName == "" || in.Level == "" {
		return Student{}, ErrValidation
	}

	taken, err := s.store.ExistsOtherWithStudentID(ctx, in.StudentID, in.ID)
	if err != nil {
		return Student{}, err
	}
	if taken {
		return Student{}, ErrDuplicateID
	}

	current, err := s.store.Get(ctx, in.ID)
	if err != nil {
		return Student{}, err
	}
	if current == nil {
		return Student{}, ErrNotFound
	}

	var plan reconcile.Plan
	if current.Level != in.Level {
		events, err := s.store.ActiveEvents(ctx)
		if err != nil {
			return Student{}, err
		}
		hasRow, err := s.store.AttendedEventIDs(ctx, in.ID)
		if err != nil {
			return Student{}, err
		}
		plan = reconcile.StudentPlan(in.Level, events, hasRow)
	}

	updated, err := s.store.UpdateWithPlan(ctx, in, plan)
	if err != nil {
		return Student{}, fmt.Errorf("update student: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AttendanceRows("student_level_change", len(plan.CreateEventIDs), len(plan.DeleteEventIDs))
	}
	return updated, nil
}

// Delete removes a student; their attendance rows cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrValidation
	}
	return s.store.Delete(ctx, id)
}
