package user

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Repository persists staff accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userCols = "id, username, password, role, name, created_at, updated_at"

// sortColumns whitelists sortable fields; anything else falls back to
// created_at.
var sortColumns = map[string]string{
	"username":  "username",
	"name":      "name",
	"role":      "role",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns users with search/role filters and whitelisted sorting.
func (r *Repository) List(ctx context.Context, search, role, sort, order string) ([]User, error) {
	query := "SELECT " + userCols + " FROM users"
	args := []any{}
	clauses := []string{}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(username ILIKE $%d OR name ILIKE $%d)", n, n))
	}
	if role != "" {
		args = append(args, role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	col, ok := sortColumns[sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	query += " ORDER BY " + col + " " + dir

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get returns a user by id, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userCols+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername returns a user by username, nil when absent.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userCols+" FROM users WHERE username = $1", username)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ExistsOtherWithUsername reports whether another user holds the name.
func (r *Repository) ExistsOtherWithUsername(ctx context.Context, username, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)",
		username, excludeID).Scan(&exists)
	return exists, err
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, password, role, name)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Password, u.Role, u.Name)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// Update rewrites a user row.
func (r *Repository) Update(ctx context.Context, u User) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET username = $2, password = $3, role = $4, name = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Password, u.Role, u.Name)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Delete removes a user.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
