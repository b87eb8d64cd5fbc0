package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

const userColumns = `id, username, email, password_hash, profile_image, bio,
	is_admin, is_moderator, is_verified, is_banned,
	COALESCE(verification_code, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfileImage, &u.Bio,
		&u.IsAdmin, &u.IsModerator, &u.IsVerified, &u.IsBanned,
		&u.VerificationCode, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser adds a new user to the database. It returns ErrConflict when
// the username or email is already taken.
func (s *Store) CreateUser(username, email, passwordHash, verificationCode string) (*models.User, error) {
	query := `INSERT INTO users (username, email, password_hash, verification_code, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := s.db.Exec(query, username, email, passwordHash, verificationCode, now, now)
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetUserByID(id)
}

// GetUserByID retrieves a user by their primary key.
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	return scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByUsername retrieves a user by their unique username.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// GetUserByEmail retrieves a user by their unique email.
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// UpdateProfile applies the non-nil fields of the patch to a user's profile.
// Returns ErrConflict when the new username is already taken.
func (s *Store) UpdateProfile(id int64, patch models.ProfilePatch) error {
	sets := "updated_at = ?"
	args := []any{time.Now()}
	if patch.Username != nil {
		sets += ", username = ?"
		args = append(args, *patch.Username)
	}
	if patch.Bio != nil {
		sets += ", bio = ?"
		args = append(args, *patch.Bio)
	}
	if patch.ProfileImage != nil {
		sets += ", profile_image = ?"
		args = append(args, *patch.ProfileImage)
	}
	args = append(args, id)
	res, err := s.db.Exec("UPDATE users SET "+sets+" WHERE id = ?", args...)
	if err != nil {
		if isConstraintErr(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerified marks a user's account as verified and clears the code.
func (s *Store) SetVerified(id int64) error {
	res, err := s.db.Exec(
		"UPDATE users SET is_verified = 1, verification_code = NULL, updated_at = ? WHERE id = ?",
		time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVerificationCode stores a freshly generated verification code.
func (s *Store) SetVerificationCode(id int64, code string) error {
	res, err := s.db.Exec(
		"UPDATE users SET verification_code = ?, updated_at = ? WHERE id = ?",
		code, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of registered users.
func (s *Store) CountUsers() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// GrantAdmin marks a user as a full administrator and verifies the
// account. Used by first-run provisioning; there is no API route for it.
func (s *Store) GrantAdmin(id int64) error {
	res, err := s.db.Exec(
		"UPDATE users SET is_admin = 1, is_verified = 1, verification_code = NULL, updated_at = ? WHERE id = ?",
		time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers retrieves users newest-first, paginated.
func (s *Store) ListUsers(page, perPage int) ([]*models.User, *Pagination, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, nil, err
	}

	offset := (page - 1) * perPage
	rows, err := s.db.Query(
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, nil, err
		}
		users = append(users, user)
	}
	return users, newPagination(page, perPage, total), rows.Err()
}

// ToggleUserBan flips a user's banned flag and returns the new state.
func (s *Store) ToggleUserBan(id int64) (bool, error) {
	var banned bool
	err := s.db.QueryRow(
		"UPDATE users SET is_banned = NOT is_banned, updated_at = ? WHERE id = ? RETURNING is_banned",
		time.Now(), id).Scan(&banned)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return banned, err
}

// ToggleUserModerator flips a user's moderator flag and returns the new state.
func (s *Store) ToggleUserModerator(id int64) (bool, error) {
	var moderator bool
	err := s.db.QueryRow(
		"UPDATE users SET is_moderator = NOT is_moderator, updated_at = ? WHERE id = ? RETURNING is_moderator",
		time.Now(), id).Scan(&moderator)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return moderator, err
}

// DeleteUser removes a user. Cascading deletes take their comments, ratings,
// reviews, favorites and reading progress with them.
func (s *Store) DeleteUser(id int64) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
