package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classcheck/internal/reconcile"
	"classcheck/internal/student"
)

// Event is one school activity students get checked into.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Status      string    `json:"status"`
	Levels      []string  `json:"levels"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Attendance is one (event, student) check-in row.
type Attendance struct {
	ID        string           `json:"id"`
	EventID   string           `json:"eventId"`
	StudentID string           `json:"studentId"`
	Status    string           `json:"status"`
	Student   *student.Student `json:"student,omitempty"`
}

var (
	// ErrNotFound means no event (or attendance row) matches.
	ErrNotFound = errors.New("event not found")
	// ErrValidation covers missing or malformed request fields.
	ErrValidation = errors.New("missing required event fields")
	// ErrBadStatus means the attendance status is not one of the three
	// legal values.
	ErrBadStatus = errors.New("invalid attendance status")
)

var eventStatuses = map[string]bool{"upcoming": true, "ongoing": true, "completed": true}
var attendanceStatuses = map[string]bool{"present": true, "absent": true, "late": true}

// Store is the persistence surface for events and their attendance.
type Store interface {
	List(ctx context.Context, search string) ([]Event, error)
	Get(ctx context.Context, id string) (*Event, error)
	// StudentLevels returns id+level for the whole roster.
	StudentLevels(ctx context.Context) ([]reconcile.Student, error)
	// CreateWithRoster inserts the event plus one absent row per student,
	// atomically.
	CreateWithRoster(ctx context.Context, e Event, studentIDs []string) (Event, error)
	// UpdateWithRoster rewrites the event, drops every attendance row it
	// had and fans out fresh absent rows, atomically. Returns the number
	// of rows dropped.
	UpdateWithRoster(ctx context.Context, e Event, studentIDs []string) (Event, int, error)
	Delete(ctx context.Context, id string) error
	// Attendance lists rows for an event. eventLevels restricts by the
	// joined student's level; nil means no restriction.
	Attendance(ctx context.Context, eventID string, eventLevels []string, level, search string) ([]Attendance, error)
	SetStatus(ctx context.Context, eventID, studentID, status string) (*Attendance, error)
}

// Metrics receives reconciliation row counts.
type Metrics interface {
	AttendanceRows(trigger string, inserted, deleted int)
}

// Service owns event CRUD and the roster fan-out tied to it.
type Service struct {
	store   Store
	metrics Metrics
}

// NewService creates a service backed by a store.
func NewService(store Store, metrics Metrics) *Service {
	return &Service{store: store, metrics: metrics}
}

// List returns events sorted by date, newest first.
func (s *Service) List(ctx context.Context, search string) ([]Event, error) {
	return s.store.List(ctx, search)
}

// Get returns one event.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

// Create validates and inserts an event, fanning out absent rows for
// every student its levels admit.
func (s *Service) Create(ctx context.Context, in Event) (Event, error) {
	if in.Title == "" || in.Description == "" || in.Date.IsZero() || in.StartTime == "" || in.EndTime == "" {
		return Event{}, ErrValidation
	}
	levels, err := reconcile.NormalizeLevels(in.Levels)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	in.Levels = levels
	if in.Status == "" {
		in.Status = "upcoming"
	}
	if !eventStatuses[in.Status] {
		return Event{}, ErrValidation
	}

	students, err := s.store.StudentLevels(ctx)
	if err != nil {
		return Event{}, err
	}
	ids := eligibleIDs(students, in.Levels)

	created, err := s.store.CreateWithRoster(ctx, in, ids)
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AttendanceRows("event_create", len(ids), 0)
	}
	return created, nil
}

// Update rewrites an event. Its attendance sheet is rebuilt from
// scratch for the current eligible set: any recorded statuses are lost.
// That full rebuild is the store's historical behavior; keep it until
// the wipe-on-edit question is settled with the staff.
func (s *Service) Update(ctx context.Context, in Event) (Event, error) {
	if in.ID == "" || in.Title == "" || in.Description == "" || in.Date.IsZero() || in.StartTime == "" || in.EndTime == "" {
		return Event{}, ErrValidation
	}
	levels, err := reconcile.NormalizeLevels(in.Levels)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	in.Levels = levels
	if in.Status == "" {
		in.Status = "upcoming"
	}
	if !eventStatuses[in.Status] {
		return Event{}, ErrValidation
	}

	current, err := s.store.Get(ctx, in.ID)
	if err != nil {
		return Event{}, err
	}
	if current == nil {
		return Event{}, ErrNotFound
	}

	students, err := s.store.StudentLevels(ctx)
	if err != nil {
		return Event{}, err
	}
	ids := eligibleIDs(students, in.Levels)

	updated, deleted, err := s.store.UpdateWithRoster(ctx, in, ids)
	if err != nil {
		return Event{}, fmt.Errorf("update event: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AttendanceRows("event_update", len(ids), deleted)
	}
	return updated, nil
}

// Delete removes an event and (via the store) its attendance rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrValidation
	}
	return s.store.Delete(ctx, id)
}

// Attendance lists an event's rows, restricted to the event's levels
// unless it targets everyone, with optional level/search filters on top.
func (s *Service) Attendance(ctx context.Context, eventID, level, search string) ([]Attendance, error) {
	e, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var restrict []string
	if !hasWildcard(e.Levels) {
		restrict = e.Levels
	}
	return s.store.Attendance(ctx, eventID, restrict, level, search)
}

// AttendanceUnfiltered lists every row an event has, used by the detail
// view which shows the full sheet.
func (s *Service) AttendanceUnfiltered(ctx context.Context, eventID string) ([]Attendance, error) {
	return s.store.Attendance(ctx, eventID, nil, "", "")
}

// SetAttendanceStatus overwrites one row's status. The row must already
// exist from the fan-out; nothing is created here.
func (s *Service) SetAttendanceStatus(ctx context.Context, eventID, studentID, status string) (*Attendance, error) {
	if eventID == "" || studentID == "" || status == "" {
		return nil, ErrValidation
	}
	if !attendanceStatuses[status] {
		return nil, ErrBadStatus
	}
	a, err := s.store.SetStatus(ctx, eventID, studentID, status)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func hasWildcard(levels []string) bool {
	for _, l := range levels {
		if l == reconcile.LevelAll {
			return true
		}
	}
	return false
}

func eligibleIDs(students []reconcile.Student, levels []string) []string {
	var ids []string
	for _, st := range reconcile.EligibleStudents(students, levels) {
		ids = append(ids, st.ID)
	}
	return ids
}
