package club

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classcheck/internal/reconcile"
	"classcheck/internal/student"
)

// Club is a student club tracked week by week.
type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon,omitempty"`
	MemberCount int       `json:"memberCount"`
	WeekCount   int       `json:"weekCount"`
	Members     []Member  `json:"members,omitempty"`
	Weeks       []Week    `json:"weeks,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member ties a student to a club.
type Member struct {
	ID        string           `json:"id"`
	ClubID    string           `json:"clubId"`
	StudentID string           `json:"studentId"`
	Student   *student.Student `json:"student,omitempty"`
}

// Week is one meeting of a club, numbered sequentially from 1.
type Week struct {
	ID         string    `json:"id"`
	ClubID     string    `json:"clubId"`
	WeekNumber int       `json:"weekNumber"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WeekAttendance is one (week, member) check-in row.
type WeekAttendance struct {
	ID       string  `json:"id"`
	WeekID   string  `json:"weekId"`
	MemberID string  `json:"memberId"`
	Status   string  `json:"status"`
	Member   *Member `json:"member,omitempty"`
}

var (
	// ErrNotFound means no club/week/attendance row matches.
	ErrNotFound = errors.New("club record not found")
	// ErrValidation covers missing required fields.
	ErrValidation = errors.New("missing required club fields")
	// ErrDuplicateName means the club name is already taken.
	ErrDuplicateName = errors.New("club name already exists")
	// ErrDuplicateMember means the student already belongs to the club.
	ErrDuplicateMember = errors.New("student is already a member")
	// ErrBadStatus means the attendance status is not a legal value.
	ErrBadStatus = errors.New("invalid attendance status")
)

var attendanceStatuses = map[string]bool{"present": true, "absent": true, "late": true}

// Store is the persistence surface for clubs, members, weeks and weekly
// attendance.
type Store interface {
	ListClubs(ctx context.Context, search string) ([]Club, error)
	GetClub(ctx context.Context, id string) (*Club, error)
	ClubNameTaken(ctx context.Context, name, excludeID string) (bool, error)
	CreateClub(ctx context.Context, c Club) (Club, error)
	UpdateClub(ctx context.Context, c Club) (Club, error)
	DeleteClub(ctx context.Context, id string) error

	AvailableStudents(ctx context.Context, clubID, level, search string) ([]student.Student, error)
	HasMember(ctx context.Context, clubID, studentID string) (bool, error)
	WeekIDs(ctx context.Context, clubID string) ([]string, error)
	// AddMemberWithAttendance inserts the member plus one absent row per
	// existing week, atomically.
	AddMemberWithAttendance(ctx context.Context, m Member, weekIDs []string) (Member, error)
	RemoveMember(ctx context.Context, clubID, studentID string) error

	MaxWeekNumber(ctx context.Context, clubID string) (int, error)
	MemberIDs(ctx context.Context, clubID string) ([]string, error)
	// CreateWeekWithAttendance inserts the week plus one absent row per
	// current member, atomically.
	CreateWeekWithAttendance(ctx context.Context, w Week, memberIDs []string) (Week, error)
	ListWeeks(ctx context.Context, clubID string) ([]Week, error)
	GetWeek(ctx context.Context, weekID, level, search string) (*Week, []WeekAttendance, error)
	SetWeekStatus(ctx context.Context, weekID, memberID, status string) (*WeekAttendance, error)
}

// Metrics receives reconciliation row counts.
type Metrics interface {
	AttendanceRows(trigger string, inserted, deleted int)
}

// Service owns club CRUD, membership and the week fan-out.
type Service struct {
	store   Store
	metrics Metrics
}

// NewService creates a service backed by a store.
func NewService(store Store, metrics Metrics) *Service {
	return &Service{store: store, metrics: metrics}
}

// List returns clubs sorted by name with member/week counts.
func (s *Service) List(ctx context.Context, search string) ([]Club, error) {
	return s.store.ListClubs(ctx, search)
}

// Get returns one club with its members and weeks.
func (s *Service) Get(ctx context.Context, id string) (*Club, error) {
	c, err := s.store.GetClub(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// Create inserts a club after checking the name is free.
func (s *Service) Create(ctx context.Context, in Club) (Club, error) {
	if in.Name == "" || in.Description == "" {
		return Club{}, ErrValidation
	}
	taken, err := s.store.ClubNameTaken(ctx, in.Name, "")
	if err != nil {
		return Club{}, err
	}
	if taken {
		return Club{}, ErrDuplicateName
	}
	return s.store.CreateClub(ctx, in)
}

// Update edits a club after checking the name is free elsewhere.
func (s *Service) Update(ctx context.Context, in Club) (Club, error) {
	if in.ID == "" || in.Name == "" || in.Description == "" {
		return Club{}, ErrValidation
	}
	taken, err := s.store.ClubNameTaken(ctx, in.Name, in.ID)
	if err != nil {
		return Club{}, err
	}
	if taken {
		return Club{}, ErrDuplicateName
	}
	return s.store.UpdateClub(ctx, in)
}

// Delete removes a club; members, weeks and weekly rows cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrValidation
	}
	return s.store.DeleteClub(ctx, id)
}

// AvailableStudents lists students not yet in the club, sorted by level
// then studentId.
func (s *Service) AvailableStudents(ctx context.Context, clubID, level, search string) ([]student.Student, error) {
	if clubID == "" {
		return nil, ErrValidation
	}
	return s.store.AvailableStudents(ctx, clubID, level, search)
}

// AddMember enrolls a student, fanning out absent rows for every week
// the club already has. A club with no weeks yet gets no rows; the next
// week creation covers the new member.
func (s *Service) AddMember(ctx context.Context, clubID, studentID string) (Member, error) {
	if clubID == "" || studentID == "" {
		return Member{}, ErrValidation
	}
	exists, err := s.store.HasMember(ctx, clubID, studentID)
	if err != nil {
		return Member{}, err
	}
	if exists {
		return Member{}, ErrDuplicateMember
	}
	weekIDs, err := s.store.WeekIDs(ctx, clubID)
	if err != nil {
		return Member{}, err
	}
	m, err := s.store.AddMemberWithAttendance(ctx, Member{ClubID: clubID, StudentID: studentID}, weekIDs)
	if err != nil {
		return Member{}, fmt.Errorf("add member: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AttendanceRows("member_add", len(weekIDs), 0)
	}
	return m, nil
}

// RemoveMember drops the membership. Weekly attendance rows are kept as
// history.
func (s *Service) RemoveMember(ctx context.Context, clubID, studentID string) error {
	if clubID == "" || studentID == "" {
		return ErrValidation
	}
	return s.store.RemoveMember(ctx, clubID, studentID)
}

// ListWeeks returns a club's weeks in order.
func (s *Service) ListWeeks(ctx context.Context, clubID string) ([]Week, error) {
	if clubID == "" {
		return nil, ErrValidation
	}
	return s.store.ListWeeks(ctx, clubID)
}

// CreateWeek appends the next week and fans out absent rows for every
// current member. The number is read-then-incremented without a lock;
// concurrent calls for one club can both land on the same number.
func (s *Service) CreateWeek(ctx context.Context, clubID string) (Week, error) {
	if clubID == "" {
		return Week{}, ErrValidation
	}
	max, err := s.store.MaxWeekNumber(ctx, clubID)
	if err != nil {
		return Week{}, err
	}
	memberIDs, err := s.store.MemberIDs(ctx, clubID)
	if err != nil {
		return Week{}, err
	}
	w, err := s.store.CreateWeekWithAttendance(ctx, Week{
		ClubID:     clubID,
		WeekNumber: reconcile.NextWeekNumber(max),
	}, memberIDs)
	if err != nil {
		return Week{}, fmt.Errorf("create week: %w", err)
	}
	if s.metrics != nil {
		s.metrics.AttendanceRows("week_add", len(memberIDs), 0)
	}
	return w, nil
}

// GetWeek returns one week and its attendance rows, filtered by the
// joined student's level and a free-text search.
func (s *Service) GetWeek(ctx context.Context, weekID, level, search string) (*Week, []WeekAttendance, error) {
	if weekID == "" {
		return nil, nil, ErrValidation
	}
	w, rows, err := s.store.GetWeek(ctx, weekID, level, search)
	if err != nil {
		return nil, nil, err
	}
	if w == nil {
		return nil, nil, ErrNotFound
	}
	return w, rows, nil
}

// SetWeekStatus overwrites one weekly row's status. The row must exist
// from the fan-out.
func (s *Service) SetWeekStatus(ctx context.Context, weekID, memberID, status string) (*WeekAttendance, error) {
	if weekID == "" || memberID == "" || status == "" {
		return nil, ErrValidation
	}
	if !attendanceStatuses[status] {
		return nil, ErrBadStatus
	}
	a, err := s.store.SetWeekStatus(ctx, weekID, memberID, status)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}
