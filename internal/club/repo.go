package club

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"classcheck/internal/store"
	"classcheck/internal/student"
)

// Repository persists clubs, members, weeks and weekly attendance in
// Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListClubs returns clubs sorted by name with member and week counts.
func (r *Repository) ListClubs(ctx context.Context, search string) ([]Club, error) {
	query := `
		SELECT c.id, c.name, c.description, c.icon, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM club_members m WHERE m.club_id = c.id),
		       (SELECT COUNT(*) FROM weeks w WHERE w.club_id = c.id)
		FROM clubs c`
	args := []any{}
	if search != "" {
		query += " WHERE c.name ILIKE $1 OR c.description ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY c.name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Club
	for rows.Next() {
		var c Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.CreatedAt, &c.UpdatedAt, &c.MemberCount, &c.WeekCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetClub returns one club with its members (joined with students) and
// weeks in order, nil when absent.
func (r *Repository) GetClub(ctx context.Context, id string) (*Club, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, description, icon, created_at, updated_at FROM clubs WHERE id = $1", id)
	var c Club
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	memberRows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.club_id, m.student_id,
		       s.id, s.student_id, s.prefix, s.first_name, s.last_name, s.level, s.track, s.created_at, s.updated_at
		FROM club_members m
		JOIN students s ON s.id = m.student_id
		WHERE m.club_id = $1
		ORDER BY s.level ASC, s.student_id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var m Member
		var st student.Student
		if err := memberRows.Scan(&m.ID, &m.ClubID, &m.StudentID,
			&st.ID, &st.StudentID, &st.Prefix, &st.FirstName, &st.LastName, &st.Level, &st.Track, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		m.Student = &st
		c.Members = append(c.Members, m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	weeks, err := r.ListWeeks(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Weeks = weeks
	c.MemberCount = len(c.Members)
	c.WeekCount = len(c.Weeks)
	return &c, nil
}

// ClubNameTaken reports whether another club holds the name.
func (r *Repository) ClubNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM clubs WHERE name = $1 AND id <> $2)",
		name, excludeID).Scan(&exists)
	return exists, err
}

// CreateClub inserts a club.
func (r *Repository) CreateClub(ctx context.Context, c Club) (Club, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO clubs (id, name, description, icon)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Description, c.Icon)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return Club{}, err
	}
	return c, nil
}

// UpdateClub edits a club.
func (r *Repository) UpdateClub(ctx context.Context, c Club) (Club, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE clubs SET name = $2, description = $3, icon = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Description, c.Icon)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Club{}, ErrNotFound
		}
		return Club{}, err
	}
	return c, nil
}

// DeleteClub removes a club; members, weeks and weekly rows cascade.
func (r *Repository) DeleteClub(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clubs WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AvailableStudents lists students who are not members of the club yet.
func (r *Repository) AvailableStudents(ctx context.Context, clubID, level, search string) ([]student.Student, error) {
	query := `
		SELECT s.id, s.student_id, s.prefix, s.first_name, s.last_name, s.level, s.track, s.created_at, s.updated_at
		FROM students s
		WHERE NOT EXISTS (SELECT 1 FROM club_members m WHERE m.club_id = $1 AND m.student_id = s.id)`
	args := []any{clubID}
	if level != "" {
		args = append(args, level)
		query += fmt.Sprintf(" AND s.level = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (s.student_id ILIKE $%d OR s.first_name ILIKE $%d OR s.last_name ILIKE $%d)", n, n, n)
	}
	query += " ORDER BY s.level ASC, s.student_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []student.Student
	for rows.Next() {
		var st student.Student
		if err := rows.Scan(&st.ID, &st.StudentID, &st.Prefix, &st.FirstName, &st.LastName, &st.Level, &st.Track, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// HasMember reports whether the (club, student) pair exists.
func (r *Repository) HasMember(ctx context.Context, clubID, studentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM club_members WHERE club_id = $1 AND student_id = $2)",
		clubID, studentID).Scan(&exists)
	return exists, err
}

// WeekIDs returns the ids of all weeks of a club.
func (r *Repository) WeekIDs(ctx context.Context, clubID string) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM weeks WHERE club_id = $1", clubID)
}

// MemberIDs returns the ids of all members of a club.
func (r *Repository) MemberIDs(ctx context.Context, clubID string) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM club_members WHERE club_id = $1", clubID)
}

func (r *Repository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AddMemberWithAttendance inserts the member and one absent row per week
// in a single transaction. The joined student comes back on the member.
func (r *Repository) AddMemberWithAttendance(ctx context.Context, m Member, weekIDs []string) (Member, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO club_members (id, club_id, student_id) VALUES ($1,$2,$3)",
			m.ID, m.ClubID, m.StudentID); err != nil {
			return err
		}
		if len(weekIDs) == 0 {
			return nil
		}
		values := make([]string, 0, len(weekIDs))
		args := make([]any, 0, len(weekIDs)*3)
		for _, weekID := range weekIDs {
			n := len(args)
			values = append(values, fmt.Sprintf("($%d,$%d,$%d,'absent')", n+1, n+2, n+3))
			args = append(args, uuid.NewString(), weekID, m.ID)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO club_attendance (id, week_id, member_id, status) VALUES "+strings.Join(values, ","),
			args...)
		return err
	})
	if err != nil {
		return Member{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_id, prefix, first_name, last_name, level, track, created_at, updated_at
		FROM students WHERE id = $1
	`, m.StudentID)
	var st student.Student
	if err := row.Scan(&st.ID, &st.StudentID, &st.Prefix, &st.FirstName, &st.LastName, &st.Level, &st.Track, &st.CreatedAt, &st.UpdatedAt); err == nil {
		m.Student = &st
	}
	return m, nil
}

// RemoveMember drops the membership row only; weekly attendance rows are
// kept as history.
func (r *Repository) RemoveMember(ctx context.Context, clubID, studentID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM club_members WHERE club_id = $1 AND student_id = $2",
		clubID, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxWeekNumber returns the highest week number for a club, 0 when the
// club has no weeks.
func (r *Repository) MaxWeekNumber(ctx context.Context, clubID string) (int, error) {
	var max int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(week_number), 0) FROM weeks WHERE club_id = $1",
		clubID).Scan(&max)
	return max, err
}

// CreateWeekWithAttendance inserts the week and one absent row per
// member in a single transaction.
func (r *Repository) CreateWeekWithAttendance(ctx context.Context, w Week, memberIDs []string) (Week, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"INSERT INTO weeks (id, club_id, week_number) VALUES ($1,$2,$3) RETURNING created_at",
			w.ID, w.ClubID, w.WeekNumber)
		if err := row.Scan(&w.CreatedAt); err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}
		values := make([]string, 0, len(memberIDs))
		args := make([]any, 0, len(memberIDs)*3)
		for _, memberID := range memberIDs {
			n := len(args)
			values = append(values, fmt.Sprintf("($%d,$%d,$%d,'absent')", n+1, n+2, n+3))
			args = append(args, uuid.NewString(), w.ID, memberID)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO club_attendance (id, week_id, member_id, status) VALUES "+strings.Join(values, ","),
			args...)
		return err
	})
	if err != nil {
		return Week{}, err
	}
	return w, nil
}

// ListWeeks returns a club's weeks ordered by number.
func (r *Repository) ListWeeks(ctx context.Context, clubID string) ([]Week, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, club_id, week_number, created_at FROM weeks WHERE club_id = $1 ORDER BY week_number ASC",
		clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Week
	for rows.Next() {
		var w Week
		if err := rows.Scan(&w.ID, &w.ClubID, &w.WeekNumber, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWeek returns one week and its attendance rows joined down to the
// student, with optional level/search filters. Rows of removed members
// drop out of the join.
func (r *Repository) GetWeek(ctx context.Context, weekID, level, search string) (*Week, []WeekAttendance, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, club_id, week_number, created_at FROM weeks WHERE id = $1", weekID)
	var w Week
	if err := row.Scan(&w.ID, &w.ClubID, &w.WeekNumber, &w.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	query := `
		SELECT a.id, a.week_id, a.member_id, a.status,
		       m.id, m.club_id, m.student_id,
		       s.id, s.student_id, s.prefix, s.first_name, s.last_name, s.level, s.track, s.created_at, s.updated_at
		FROM club_attendance a
		JOIN club_members m ON m.id = a.member_id
		JOIN students s ON s.id = m.student_id
		WHERE a.week_id = $1`
	args := []any{weekID}
	if level != "" {
		args = append(args, level)
		query += fmt.Sprintf(" AND s.level = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (s.student_id ILIKE $%d OR s.first_name ILIKE $%d OR s.last_name ILIKE $%d)", n, n, n)
	}
	query += " ORDER BY s.level ASC, s.student_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var out []WeekAttendance
	for rows.Next() {
		var a WeekAttendance
		var m Member
		var st student.Student
		if err := rows.Scan(&a.ID, &a.WeekID, &a.MemberID, &a.Status,
			&m.ID, &m.ClubID, &m.StudentID,
			&st.ID, &st.StudentID, &st.Prefix, &st.FirstName, &st.LastName, &st.Level, &st.Track, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, nil, err
		}
		m.Student = &st
		a.Member = &m
		out = append(out, a)
	}
	return &w, out, rows.Err()
}

// SetWeekStatus overwrites one weekly row's status; nil when no row
// exists.
func (r *Repository) SetWeekStatus(ctx context.Context, weekID, memberID, status string) (*WeekAttendance, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE club_attendance SET status = $3, updated_at = NOW()
		WHERE week_id = $1 AND member_id = $2
		RETURNING id, week_id, member_id, status
	`, weekID, memberID, status)
	var a WeekAttendance
	if err := row.Scan(&a.ID, &a.WeekID, &a.MemberID, &a.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
