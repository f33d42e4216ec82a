package store_test

import (
	"errors"
	"testing"

	"github.com/slatehq/slate/internal/store"
)

func TestCreateUserNormalizesEmail(t *testing.T) {
	s := testStore(t)
	u, err := s.CreateUser(doc(t, map[string]any{"name": "Maya", "email": "Maya@Example.COM"}))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Email != "maya@example.com" {
		t.Errorf("email = %q, want lowercase", u.Email)
	}
	if u.Role != store.RoleMember {
		t.Errorf("default role = %q, want member", u.Role)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := testStore(t)
	mustCreateUser(t, s, "Maya", "maya@example.com")

	_, err := s.CreateUser(doc(t, map[string]any{"name": "Imposter", "email": "MAYA@example.com"}))
	if !store.IsValidationError(err) {
		t.Errorf("duplicate email: error = %v, want validation error", err)
	}
}

func TestCreateUserInvalidRole(t *testing.T) {
	s := testStore(t)
	_, err := s.CreateUser(doc(t, map[string]any{"name": "X", "email": "x@example.com", "role": "owner"}))
	if !store.IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := testStore(t)
	u := mustCreateUser(t, s, "Maya", "maya@example.com")

	got, err := s.UpdateUser(u.ID, doc(t, map[string]any{"role": "manager", "avatar": "https://cdn.example.com/m.png"}))
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if got.Role != store.RoleManager || got.Avatar == "" {
		t.Errorf("updated user = %+v", got)
	}
	if got.Name != "Maya" {
		t.Errorf("name changed to %q", got.Name)
	}

	if _, err := s.UpdateUser("usr_missing", doc(t, map[string]any{"name": "X"})); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListUsersSortedByName(t *testing.T) {
	s := testStore(t)
	mustCreateUser(t, s, "zoe", "zoe@example.com")
	mustCreateUser(t, s, "Anna", "anna@example.com")

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Name != "Anna" {
		t.Errorf("user order = %v", users)
	}
}
