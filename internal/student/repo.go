package student

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"classcheck/internal/reconcile"
	"classcheck/internal/store"
)

// Repository persists students and their event attendance in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const studentCols = "id, student_id, prefix, first_name, last_name, level, track, created_at, updated_at"

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.StudentID, &s.Prefix, &s.FirstName, &s.LastName, &s.Level, &s.Track, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns students ordered by studentId with optional level and
// search filters.
func (r *Repository) List(ctx context.Context, level, search string) ([]Student, error) {
	query := "SELECT " + studentCols + " FROM students"
	args := []any{}
	clauses := []string{}
	if level != "" {
		args = append(args, level)
		clauses = append(clauses, fmt.Sprintf("level = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(student_id ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)", n, n, n))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY student_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get returns a student by id, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+studentCols+" FROM students WHERE id = $1", id)
	s, err := scanStudent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetByStudentID looks a student up by the human-facing code.
func (r *Repository) GetByStudentID(ctx context.Context, code string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+studentCols+" FROM students WHERE student_id = $1", code)
	s, err := scanStudent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ExistsOtherWithStudentID reports whether another student already holds
// the code. Exact, case-sensitive match.
func (r *Repository) ExistsOtherWithStudentID(ctx context.Context, code, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE student_id = $1 AND id <> $2)",
		code, excludeID).Scan(&exists)
	return exists, err
}

// ActiveEvents returns id/status/levels for every event not yet completed.
func (r *Repository) ActiveEvents(ctx context.Context) ([]reconcile.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, status, levels FROM events WHERE status <> 'completed'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reconcile.Event
	for rows.Next() {
		var e reconcile.Event
		var raw []byte
		if err := rows.Scan(&e.ID, &e.Status, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &e.Levels); err != nil {
			return nil, fmt.Errorf("decode event levels: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AttendedEventIDs returns the set of event ids the student has
// attendance rows for.
func (r *Repository) AttendedEventIDs(ctx context.Context, studentID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT event_id FROM attendance WHERE student_id = $1", studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// CreateWithAttendance inserts the student and one absent attendance row
// per event, in a single transaction.
func (r *Repository) CreateWithAttendance(ctx context.Context, s Student, eventIDs []string) (Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO students (id, student_id, prefix, first_name, last_name, level, track)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at, updated_at
		`, s.ID, s.StudentID, s.Prefix, s.FirstName, s.LastName, s.Level, s.Track)
		if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		return insertAbsentRows(ctx, tx, eventIDs, s.ID)
	})
	if err != nil {
		return Student{}, err
	}
	return s, nil
}

// UpdateWithPlan updates the student row and applies the attendance
// diff in the same transaction.
func (r *Repository) UpdateWithPlan(ctx context.Context, s Student, plan reconcile.Plan) (Student, error) {
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE students
			SET student_id = $2, prefix = $3, first_name = $4, last_name = $5, level = $6, track = $7, updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at
		`, s.ID, s.StudentID, s.Prefix, s.FirstName, s.LastName, s.Level, s.Track)
		if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		for _, eventID := range plan.DeleteEventIDs {
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM attendance WHERE event_id = $1 AND student_id = $2",
				eventID, s.ID); err != nil {
				return err
			}
		}
		return insertAbsentRows(ctx, tx, plan.CreateEventIDs, s.ID)
	})
	if err != nil {
		return Student{}, err
	}
	return s, nil
}

// Delete removes a student; attendance rows cascade via FK.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertAbsentRows bulk-inserts default absent attendance rows for one
// student across the given events.
func insertAbsentRows(ctx context.Context, tx *sql.Tx, eventIDs []string, studentID string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	values := make([]string, 0, len(eventIDs))
	args := make([]any, 0, len(eventIDs)*3)
	for _, eventID := range eventIDs {
		n := len(args)
		values = append(values, fmt.Sprintf("($%d,$%d,$%d,'absent')", n+1, n+2, n+3))
		args = append(args, uuid.NewString(), eventID, studentID)
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO attendance (id, event_id, student_id, status) VALUES "+strings.Join(values, ","),
		args...)
	return err
}
