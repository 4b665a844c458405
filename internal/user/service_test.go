package user

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	users map[string]User
	next  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]User{}}
}

func (f *fakeStore) List(ctx context.Context, search, role, sort, order string) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ExistsOtherWithUsername(ctx context.Context, username, excludeID string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Create(ctx context.Context, u User) (User, error) {
	f.next++
	u.ID = "u" + string(rune('0'+f.next))
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) Update(ctx context.Context, u User) (User, error) {
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		role     string
		isUpdate bool
		wantOK   bool
	}{
		{"valid create", "teacher1", "secret1", RoleTeacher, false, true},
		{"valid admin", "admin", "secret1", RoleAdmin, false, true},
		{"empty role defaults later", "teacher1", "secret1", "", false, true},
		{"missing username", "", "secret1", RoleTeacher, false, false},
		{"short username", "abc", "secret1", RoleTeacher, false, false},
		{"missing password on create", "teacher1", "", RoleTeacher, false, false},
		{"short password", "teacher1", "12345", RoleTeacher, false, false},
		{"unknown role", "teacher1", "secret1", "superuser", false, false},
		{"empty password on update keeps current", "teacher1", "", RoleTeacher, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := Validate(tt.username, tt.password, tt.role, tt.isUpdate)
			if (verr == nil) != tt.wantOK {
				t.Fatalf("Validate() = %v, want ok=%v", verr, tt.wantOK)
			}
		})
	}
}

func TestCreateHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, bcrypt.MinCost)

	created, err := svc.Create(context.Background(), "teacher1", "secret1", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Role != RoleTeacher {
		t.Errorf("default role = %q, want teacher", created.Role)
	}
	if created.Password == "secret1" {
		t.Fatal("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1")) != nil {
		t.Fatal("stored hash does not match the password")
	}
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, bcrypt.MinCost)

	if _, err := svc.Create(context.Background(), "teacher1", "secret1", "", nil); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(context.Background(), "teacher1", "another1", "", nil)
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("err = %v, want ErrDuplicateUsername", err)
	}
}

func TestUpdateEmptyPasswordKeepsHash(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, bcrypt.MinCost)

	created, err := svc.Create(context.Background(), "teacher1", "secret1", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, "teacher1", "", RoleAdmin, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Password != created.Password {
		t.Error("hash changed on empty password")
	}
	if updated.Role != RoleAdmin {
		t.Errorf("role = %q, want admin", updated.Role)
	}
}

func TestDeleteRejectsSelf(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, bcrypt.MinCost)

	created, err := svc.Create(context.Background(), "admin1", "secret1", RoleAdmin, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = svc.Delete(context.Background(), created.ID, created.ID)
	if !errors.Is(err, ErrSelfDelete) {
		t.Fatalf("err = %v, want ErrSelfDelete", err)
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, bcrypt.MinCost)

	if _, err := svc.Create(context.Background(), "teacher1", "secret1", "", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Login(context.Background(), "teacher1", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := svc.Login(context.Background(), "teacher1", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("wrong password err = %v, want ErrBadCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "secret1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user err = %v, want ErrNotFound", err)
	}
}
