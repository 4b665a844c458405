package club

import (
	"context"
	"errors"
	"testing"

	"classcheck/internal/student"
)

type fakeStore struct {
	clubs   map[string]Club
	members map[string][]Member // by club id
	weeks   map[string][]Week   // by club id
	rows    map[string]*WeekAttendance

	memberFanOut []string
	weekFanOut   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clubs:   map[string]Club{},
		members: map[string][]Member{},
		weeks:   map[string][]Week{},
		rows:    map[string]*WeekAttendance{},
	}
}

func (f *fakeStore) ListClubs(ctx context.Context, search string) ([]Club, error) {
	var out []Club
	for _, c := range f.clubs {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetClub(ctx context.Context, id string) (*Club, error) {
	if c, ok := f.clubs[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) ClubNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	for _, c := range f.clubs {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateClub(ctx context.Context, c Club) (Club, error) {
	c.ID = "new-club"
	f.clubs[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateClub(ctx context.Context, c Club) (Club, error) {
	f.clubs[c.ID] = c
	return c, nil
}

func (f *fakeStore) DeleteClub(ctx context.Context, id string) error {
	delete(f.clubs, id)
	return nil
}

func (f *fakeStore) AvailableStudents(ctx context.Context, clubID, level, search string) ([]student.Student, error) {
	return nil, nil
}

func (f *fakeStore) HasMember(ctx context.Context, clubID, studentID string) (bool, error) {
	for _, m := range f.members[clubID] {
		if m.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) WeekIDs(ctx context.Context, clubID string) ([]string, error) {
	var ids []string
	for _, w := range f.weeks[clubID] {
		ids = append(ids, w.ID)
	}
	return ids, nil
}

func (f *fakeStore) AddMemberWithAttendance(ctx context.Context, m Member, weekIDs []string) (Member, error) {
	f.memberFanOut = weekIDs
	m.ID = "new-member"
	f.members[m.ClubID] = append(f.members[m.ClubID], m)
	return m, nil
}

func (f *fakeStore) RemoveMember(ctx context.Context, clubID, studentID string) error {
	kept := f.members[clubID][:0]
	for _, m := range f.members[clubID] {
		if m.StudentID != studentID {
			kept = append(kept, m)
		}
	}
	f.members[clubID] = kept
	return nil
}

func (f *fakeStore) MaxWeekNumber(ctx context.Context, clubID string) (int, error) {
	max := 0
	for _, w := range f.weeks[clubID] {
		if w.WeekNumber > max {
			max = w.WeekNumber
		}
	}
	return max, nil
}

func (f *fakeStore) MemberIDs(ctx context.Context, clubID string) ([]string, error) {
	var ids []string
	for _, m := range f.members[clubID] {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (f *fakeStore) CreateWeekWithAttendance(ctx context.Context, w Week, memberIDs []string) (Week, error) {
	f.weekFanOut = memberIDs
	w.ID = "new-week"
	f.weeks[w.ClubID] = append(f.weeks[w.ClubID], w)
	return w, nil
}

func (f *fakeStore) ListWeeks(ctx context.Context, clubID string) ([]Week, error) {
	return f.weeks[clubID], nil
}

func (f *fakeStore) GetWeek(ctx context.Context, weekID, level, search string) (*Week, []WeekAttendance, error) {
	for _, weeks := range f.weeks {
		for _, w := range weeks {
			if w.ID == weekID {
				return &w, nil, nil
			}
		}
	}
	return nil, nil, nil
}

func (f *fakeStore) SetWeekStatus(ctx context.Context, weekID, memberID, status string) (*WeekAttendance, error) {
	r, ok := f.rows[weekID+"/"+memberID]
	if !ok {
		return nil, nil
	}
	r.Status = status
	return r, nil
}

func TestCreateClubRejectsDuplicateName(t *testing.T) {
	store := newFakeStore()
	store.clubs["c1"] = Club{ID: "c1", Name: "ชมรมดนตรี"}
	svc := NewService(store, nil)

	_, err := svc.Create(context.Background(), Club{Name: "ชมรมดนตรี", Description: "วงโยธวาทิต"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestUpdateClubAllowsOwnName(t *testing.T) {
	store := newFakeStore()
	store.clubs["c1"] = Club{ID: "c1", Name: "ชมรมดนตรี", Description: "เดิม"}
	svc := NewService(store, nil)

	_, err := svc.Update(context.Background(), Club{ID: "c1", Name: "ชมรมดนตรี", Description: "ใหม่"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestAddMemberFansOutExistingWeeks(t *testing.T) {
	store := newFakeStore()
	store.clubs["c1"] = Club{ID: "c1", Name: "ชมรมกีฬา"}
	store.weeks["c1"] = []Week{
		{ID: "w1", ClubID: "c1", WeekNumber: 1},
		{ID: "w2", ClubID: "c1", WeekNumber: 2},
	}
	svc := NewService(store, nil)

	_, err := svc.AddMember(context.Background(), "c1", "s1")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if len(store.memberFanOut) != 2 {
		t.Fatalf("fan-out weeks = %v, want w1 and w2", store.memberFanOut)
	}
}

func TestAddMemberNoWeeksNoRows(t *testing.T) {
	store := newFakeStore()
	store.clubs["c1"] = Club{ID: "c1", Name: "ชมรมกีฬา"}
	svc := NewService(store, nil)

	_, err := svc.AddMember(context.Background(), "c1", "s1")
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if len(store.memberFanOut) != 0 {
		t.Fatalf("fan-out weeks = %v, want none", store.memberFanOut)
	}
}

func TestAddMemberRejectsDuplicate(t *testing.T) {
	store := newFakeStore()
	store.members["c1"] = []Member{{ID: "m1", ClubID: "c1", StudentID: "s1"}}
	svc := NewService(store, nil)

	_, err := svc.AddMember(context.Background(), "c1", "s1")
	if !errors.Is(err, ErrDuplicateMember) {
		t.Fatalf("err = %v, want ErrDuplicateMember", err)
	}
}

func TestCreateWeekNumbersSequentially(t *testing.T) {
	store := newFakeStore()
	store.members["c1"] = []Member{
		{ID: "m1", ClubID: "c1", StudentID: "s1"},
		{ID: "m2", ClubID: "c1", StudentID: "s2"},
	}
	store.weeks["c1"] = []Week{
		{ID: "w1", ClubID: "c1", WeekNumber: 1},
		{ID: "w2", ClubID: "c1", WeekNumber: 2},
	}
	svc := NewService(store, nil)

	w, err := svc.CreateWeek(context.Background(), "c1")
	if err != nil {
		t.Fatalf("CreateWeek: %v", err)
	}
	if w.WeekNumber != 3 {
		t.Errorf("week number = %d, want 3", w.WeekNumber)
	}
	if len(store.weekFanOut) != 2 {
		t.Errorf("fan-out members = %v, want m1 and m2", store.weekFanOut)
	}
}

// staleMaxStore freezes MaxWeekNumber the way two concurrent creators
// would each read it before either insert lands.
type staleMaxStore struct {
	*fakeStore
	max int
}

func (s *staleMaxStore) MaxWeekNumber(ctx context.Context, clubID string) (int, error) {
	return s.max, nil
}

func TestCreateWeekStaleMaxAdmitsDuplicateNumber(t *testing.T) {
	inner := newFakeStore()
	inner.weeks["c1"] = []Week{
		{ID: "w1", ClubID: "c1", WeekNumber: 1},
		{ID: "w2", ClubID: "c1", WeekNumber: 2},
	}
	store := &staleMaxStore{fakeStore: inner, max: 2}
	svc := NewService(store, nil)

	first, err := svc.CreateWeek(context.Background(), "c1")
	if err != nil {
		t.Fatalf("first CreateWeek: %v", err)
	}
	second, err := svc.CreateWeek(context.Background(), "c1")
	if err != nil {
		t.Fatalf("second CreateWeek: %v", err)
	}

	// Nothing rejects the second insert: no unique constraint on
	// (club_id, week_number), so both weeks keep the same number.
	if first.WeekNumber != 3 || second.WeekNumber != 3 {
		t.Fatalf("week numbers = %d and %d, want both 3", first.WeekNumber, second.WeekNumber)
	}
	if len(inner.weeks["c1"]) != 4 {
		t.Fatalf("stored %d weeks, want 4", len(inner.weeks["c1"]))
	}
}

func TestCreateFirstWeek(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	w, err := svc.CreateWeek(context.Background(), "c1")
	if err != nil {
		t.Fatalf("CreateWeek: %v", err)
	}
	if w.WeekNumber != 1 {
		t.Errorf("week number = %d, want 1", w.WeekNumber)
	}
}

func TestSetWeekStatus(t *testing.T) {
	store := newFakeStore()
	store.rows["w1/m1"] = &WeekAttendance{ID: "a1", WeekID: "w1", MemberID: "m1", Status: "absent"}
	svc := NewService(store, nil)

	row, err := svc.SetWeekStatus(context.Background(), "w1", "m1", "present")
	if err != nil {
		t.Fatalf("SetWeekStatus: %v", err)
	}
	if row.Status != "present" {
		t.Errorf("status = %q, want present", row.Status)
	}
}

func TestSetWeekStatusSameValue(t *testing.T) {
	store := newFakeStore()
	store.rows["w1/m1"] = &WeekAttendance{ID: "a1", WeekID: "w1", MemberID: "m1", Status: "late"}
	svc := NewService(store, nil)

	row, err := svc.SetWeekStatus(context.Background(), "w1", "m1", "late")
	if err != nil {
		t.Fatalf("SetWeekStatus: %v", err)
	}
	if row.Status != "late" {
		t.Errorf("status = %q, want late", row.Status)
	}
}

func TestSetWeekStatusRejectsBadValue(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.SetWeekStatus(context.Background(), "w1", "m1", "excused")
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("err = %v, want ErrBadStatus", err)
	}
}

func TestSetWeekStatusMissingRow(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.SetWeekStatus(context.Background(), "w1", "m9", "present")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
