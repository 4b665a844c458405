package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a staff account. The bcrypt hash never leaves the package
// through JSON.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

var (
	// ErrNotFound means no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername means the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrBadCredentials covers unknown user or wrong password on login.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrSelfDelete rejects deleting one's own account.
	ErrSelfDelete = errors.New("cannot delete own account")
)

// ValidationError carries the first human-readable problem with a user
// payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Store is the persistence surface for users.
type Store interface {
	List(ctx context.Context, search, role, sort, order string) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsOtherWithUsername(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error
}

// Service owns staff account management and password checks.
type Service struct {
	store      Store
	bcryptCost int
}

// NewService creates a service backed by a store.
func NewService(store Store, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, bcryptCost: bcryptCost}
}

// Validate checks a user payload. On update the password may be empty
// (meaning keep the current one).
func Validate(username, password, role string, isUpdate bool) *ValidationError {
	var problems []string
	if strings.TrimSpace(username) == "" {
		problems = append(problems, "กรุณากรอกชื่อผู้ใช้")
	} else if len(username) < 4 {
		problems = append(problems, "ชื่อผู้ใช้ต้องมีความยาวอย่างน้อย 4 ตัวอักษร")
	}
	if !isUpdate && strings.TrimSpace(password) == "" {
		problems = append(problems, "กรุณากรอกรหัสผ่าน")
	} else if password != "" && len(password) < 6 {
		problems = append(problems, "รหัสผ่านต้องมีความยาวอย่างน้อย 6 ตัวอักษร")
	}
	if role != "" && role != RoleAdmin && role != RoleTeacher {
		problems = append(problems, "บทบาทไม่ถูกต้อง")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// List returns users matching the filters. Passwords are already
// excluded from serialization via the struct tag.
func (s *Service) List(ctx context.Context, search, role, sort, order string) ([]User, error) {
	return s.store.List(ctx, search, role, sort, order)
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Create adds a staff account with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, username, password, role string, name *string) (User, error) {
	if verr := Validate(username, password, role, false); verr != nil {
		return User{}, verr
	}
	existing, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return User{}, ErrDuplicateUsername
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	if role == "" {
		role = RoleTeacher
	}
	return s.store.Create(ctx, User{
		Username: username,
		Password: string(hash),
		Role:     role,
		Name:     trimName(name),
	})
}

// Update edits a staff account; an empty password keeps the current one.
func (s *Service) Update(ctx context.Context, id, username, password, role string, name *string) (User, error) {
	if id == "" {
		return User{}, ErrNotFound
	}
	target, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target == nil {
		return User{}, ErrNotFound
	}
	if verr := Validate(username, password, role, true); verr != nil {
		return User{}, verr
	}
	taken, err := s.store.ExistsOtherWithUsername(ctx, username, id)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, ErrDuplicateUsername
	}

	target.Username = username
	if role != "" {
		target.Role = role
	}
	target.Name = trimName(name)
	if strings.TrimSpace(password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		target.Password = string(hash)
	}
	return s.store.Update(ctx, *target)
}

// Delete removes an account; deleting the requesting account is refused.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if id == requesterID {
		return ErrSelfDelete
	}
	target, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

// Login checks the credentials and returns the account.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if u == nil {
		return User{}, ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return *u, nil
}

func trimName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
