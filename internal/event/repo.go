package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"classcheck/internal/reconcile"
	"classcheck/internal/store"
	"classcheck/internal/student"
)

// Repository persists events and event attendance in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const eventCols = "id, title, description, date, start_time, end_time, status, levels, created_at, updated_at"

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	var raw []byte
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.StartTime, &e.EndTime, &e.Status, &raw, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Event{}, err
	}
	if err := json.Unmarshal(raw, &e.Levels); err != nil {
		return Event{}, fmt.Errorf("decode event levels: %w", err)
	}
	return e, nil
}

// List returns events newest first with an optional title/description search.
func (r *Repository) List(ctx context.Context, search string) ([]Event, error) {
	query := "SELECT " + eventCols + " FROM events"
	args := []any{}
	if search != "" {
		query += " WHERE title ILIKE $1 OR description ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns an event by id, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Event, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+eventCols+" FROM events WHERE id = $1", id)
	e, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// StudentLevels returns the whole roster as (id, level) pairs.
func (r *Repository) StudentLevels(ctx context.Context) ([]reconcile.Student, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, level FROM students")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []reconcile.Student
	for rows.Next() {
		var s reconcile.Student
		if err := rows.Scan(&s.ID, &s.Level); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateWithRoster inserts the event and one absent row per eligible
// student in a single transaction.
func (r *Repository) CreateWithRoster(ctx context.Context, e Event, studentIDs []string) (Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	levels, err := json.Marshal(e.Levels)
	if err != nil {
		return Event{}, err
	}
	err = store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO events (id, title, description, date, start_time, end_time, status, levels)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING created_at, updated_at
		`, e.ID, e.Title, e.Description, e.Date, e.StartTime, e.EndTime, e.Status, levels)
		if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		return insertAbsentRows(ctx, tx, e.ID, studentIDs)
	})
	if err != nil {
		return Event{}, err
	}
	return e, nil
}

// UpdateWithRoster rewrites the event, wipes its attendance sheet and
// fans out fresh absent rows, all in one transaction.
func (r *Repository) UpdateWithRoster(ctx context.Context, e Event, studentIDs []string) (Event, int, error) {
	levels, err := json.Marshal(e.Levels)
	if err != nil {
		return Event{}, 0, err
	}
	var deleted int64
	err = store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE events
			SET title = $2, description = $3, date = $4, start_time = $5, end_time = $6, status = $7, levels = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING created_at, updated_at
		`, e.ID, e.Title, e.Description, e.Date, e.StartTime, e.EndTime, e.Status, levels)
		if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM attendance WHERE event_id = $1", e.ID)
		if err != nil {
			return err
		}
		deleted, _ = res.RowsAffected()
		return insertAbsentRows(ctx, tx, e.ID, studentIDs)
	})
	if err != nil {
		return Event{}, 0, err
	}
	return e, int(deleted), nil
}

// Delete removes an event; attendance rows cascade via FK.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Attendance lists an event's rows joined with students, ordered by
// studentId.
func (r *Repository) Attendance(ctx context.Context, eventID string, eventLevels []string, level, search string) ([]Attendance, error) {
	query := `
		SELECT a.id, a.event_id, a.student_id, a.status,
		       s.id, s.student_id, s.prefix, s.first_name, s.last_name, s.level, s.track, s.created_at, s.updated_at
		FROM attendance a
		JOIN students s ON s.id = a.student_id
		WHERE a.event_id = $1`
	args := []any{eventID}
	if len(eventLevels) > 0 {
		ph := make([]string, 0, len(eventLevels))
		for _, l := range eventLevels {
			args = append(args, l)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		query += " AND s.level IN (" + strings.Join(ph, ",") + ")"
	}
	if level != "" {
		args = append(args, level)
		query += fmt.Sprintf(" AND s.level = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (s.student_id ILIKE $%d OR s.first_name ILIKE $%d OR s.last_name ILIKE $%d)", n, n, n)
	}
	query += " ORDER BY s.student_id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attendance
	for rows.Next() {
		var a Attendance
		var st student.Student
		if err := rows.Scan(&a.ID, &a.EventID, &a.StudentID, &a.Status,
			&st.ID, &st.StudentID, &st.Prefix, &st.FirstName, &st.LastName, &st.Level, &st.Track, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		a.Student = &st
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetStatus overwrites one row's status; nil when no row exists.
func (r *Repository) SetStatus(ctx context.Context, eventID, studentID, status string) (*Attendance, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance SET status = $3, updated_at = NOW()
		WHERE event_id = $1 AND student_id = $2
		RETURNING id, event_id, student_id, status
	`, eventID, studentID, status)
	var a Attendance
	if err := row.Scan(&a.ID, &a.EventID, &a.StudentID, &a.Status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// insertAbsentRows bulk-inserts default absent rows for one event across
// the given students.
func insertAbsentRows(ctx context.Context, tx *sql.Tx, eventID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	values := make([]string, 0, len(studentIDs))
	args := make([]any, 0, len(studentIDs)*3)
	for _, studentID := range studentIDs {
		n := len(args)
		values = append(values, fmt.Sprintf("($%d,$%d,$%d,'absent')", n+1, n+2, n+3))
		args = append(args, uuid.NewString(), eventID, studentID)
	}
	_, err := tx.ExecContext(ctx,
		"INSERT INTO attendance (id, event_id, student_id, status) VALUES "+strings.Join(values, ","),
		args...)
	return err
}
