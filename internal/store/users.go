package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

const userColumns = "id, name, email, avatar, role, created_at, updated_at"

type userDoc struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
	Role   *string `json:"role"`
}

// CreateUser inserts a new user. Emails are stored lowercase and must be
// unique.
func (s *Store) CreateUser(doc json.RawMessage) (*User, error) {
	if err := validateDocument(userCreateSchema, doc); err != nil {
		return nil, err
	}
	var req userDoc
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	now := time.Now().UTC()
	u := &User{
		ID:        NewUserID(),
		Name:      strings.TrimSpace(*req.Name),
		Email:     strings.ToLower(strings.TrimSpace(*req.Email)),
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
	if req.Role != nil {
		u.Role = *req.Role
	}

	_, err := s.writer.Execute(
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.Avatar, u.Role, timeToString(u.CreatedAt), timeToString(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, validationf("email", "email already in use")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users sorted by name.
func (s *Store) ListUsers() ([]User, error) {
	rows, err := s.db.Read.Query("SELECT " + userColumns + " FROM users ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUser returns one user by ID.
func (s *Store) GetUser(id string) (*User, error) {
	row := s.db.Read.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// UpdateUser applies a partial update to a user.
func (s *Store) UpdateUser(id string, doc json.RawMessage) (*User, error) {
	if err := validateDocument(userUpdateSchema, doc); err != nil {
		return nil, err
	}
	var req userDoc
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, &ValidationError{Message: "invalid JSON body"}
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{timeToString(time.Now().UTC())}
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(*req.Email)))
	}
	if req.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *req.Avatar)
	}
	if req.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *req.Role)
	}
	args = append(args, id)

	res, err := s.writer.Execute("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, validationf("email", "email already in use")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(id)
}

// DeleteUser removes a user. Tasks and campaigns referencing the user keep
// a dangling weak reference which read paths resolve to null.
func (s *Store) DeleteUser(id string) error {
	res, err := s.writer.Execute("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers() (int, error) {
	var n int
	err := s.db.Read.QueryRow("SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Role, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = parseStoredTime(createdAt)
	u.UpdatedAt = parseStoredTime(updatedAt)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
