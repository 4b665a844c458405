package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"classcheck/internal/reconcile"
)

type fakeStore struct {
	events   map[string]Event
	students []reconcile.Student
	rows     map[string]*Attendance // keyed by eventID+"/"+studentID

	createdRoster []string
	updatedRoster []string
	wipedRows     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[string]Event{}, rows: map[string]*Attendance{}}
}

func (f *fakeStore) List(ctx context.Context, search string) ([]Event, error) {
	var out []Event
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Event, error) {
	if e, ok := f.events[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeStore) StudentLevels(ctx context.Context) ([]reconcile.Student, error) {
	return f.students, nil
}

func (f *fakeStore) CreateWithRoster(ctx context.Context, e Event, studentIDs []string) (Event, error) {
	f.createdRoster = studentIDs
	e.ID = "new-event"
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeStore) UpdateWithRoster(ctx context.Context, e Event, studentIDs []string) (Event, int, error) {
	f.updatedRoster = studentIDs
	f.events[e.ID] = e
	return e, f.wipedRows, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.events, id)
	return nil
}

func (f *fakeStore) Attendance(ctx context.Context, eventID string, eventLevels []string, level, search string) ([]Attendance, error) {
	var out []Attendance
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, eventID, studentID, status string) (*Attendance, error) {
	r, ok := f.rows[eventID+"/"+studentID]
	if !ok {
		return nil, nil
	}
	r.Status = status
	return r, nil
}

func baseEvent() Event {
	return Event{
		Title:       "กีฬาสี",
		Description: "กิจกรรมกีฬาสีประจำปี",
		Date:        time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC),
		StartTime:   "08:00",
		EndTime:     "16:00",
		Levels:      []string{"ปวช.1"},
	}
}

func TestCreateFansOutToEligibleStudents(t *testing.T) {
	store := newFakeStore()
	store.students = []reconcile.Student{
		{ID: "s1", Level: "ปวช.1"},
		{ID: "s2", Level: "ปวช.2"},
		{ID: "s3", Level: "ปวช.1"},
	}
	svc := NewService(store, nil)

	created, err := svc.Create(context.Background(), baseEvent())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != "upcoming" {
		t.Errorf("default status = %q, want upcoming", created.Status)
	}
	if len(store.createdRoster) != 2 {
		t.Fatalf("roster = %v, want s1 and s3", store.createdRoster)
	}
}

func TestCreateWildcardCollapsesLevels(t *testing.T) {
	store := newFakeStore()
	store.students = []reconcile.Student{
		{ID: "s1", Level: "ปวช.1"},
		{ID: "s2", Level: "ปวส.2 ม.6"},
	}
	svc := NewService(store, nil)

	in := baseEvent()
	in.Levels = []string{"ปวช.1", "all", "ปวช.2"}
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.Levels) != 1 || created.Levels[0] != reconcile.LevelAll {
		t.Errorf("levels = %v, want [all]", created.Levels)
	}
	if len(store.createdRoster) != 2 {
		t.Fatalf("roster = %v, want every student", store.createdRoster)
	}
}

func TestCreateRejectsEmptyLevels(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	in := baseEvent()
	in.Levels = nil
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	in := baseEvent()
	in.Status = "cancelled"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateRebuildsRosterFromScratch(t *testing.T) {
	store := newFakeStore()
	store.events["e1"] = Event{ID: "e1", Title: "เดิม", Status: "upcoming", Levels: []string{"ปวช.1"}}
	store.students = []reconcile.Student{
		{ID: "s1", Level: "ปวช.1"},
		{ID: "s2", Level: "ปวช.2"},
	}
	store.wipedRows = 1
	svc := NewService(store, nil)

	in := baseEvent()
	in.ID = "e1"
	in.Levels = []string{"ปวช.2"}
	_, err := svc.Update(context.Background(), in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(store.updatedRoster) != 1 || store.updatedRoster[0] != "s2" {
		t.Fatalf("rebuilt roster = %v, want [s2]", store.updatedRoster)
	}
}

func TestUpdateUnknownEvent(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	in := baseEvent()
	in.ID = "missing"
	_, err := svc.Update(context.Background(), in)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetAttendanceStatus(t *testing.T) {
	store := newFakeStore()
	store.rows["e1/s1"] = &Attendance{ID: "a1", EventID: "e1", StudentID: "s1", Status: "absent"}
	svc := NewService(store, nil)

	row, err := svc.SetAttendanceStatus(context.Background(), "e1", "s1", "late")
	if err != nil {
		t.Fatalf("SetAttendanceStatus: %v", err)
	}
	if row.Status != "late" {
		t.Errorf("status = %q, want late", row.Status)
	}
}

func TestSetAttendanceStatusSameValue(t *testing.T) {
	store := newFakeStore()
	store.rows["e1/s1"] = &Attendance{ID: "a1", EventID: "e1", StudentID: "s1", Status: "present"}
	svc := NewService(store, nil)

	row, err := svc.SetAttendanceStatus(context.Background(), "e1", "s1", "present")
	if err != nil {
		t.Fatalf("SetAttendanceStatus: %v", err)
	}
	if row.Status != "present" {
		t.Errorf("status = %q, want present", row.Status)
	}
}

func TestSetAttendanceStatusRejectsBadValue(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.SetAttendanceStatus(context.Background(), "e1", "s1", "maybe")
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("err = %v, want ErrBadStatus", err)
	}
}

func TestSetAttendanceStatusMissingRow(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.SetAttendanceStatus(context.Background(), "e1", "s9", "present")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
