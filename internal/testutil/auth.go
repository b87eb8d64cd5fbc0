package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blackhole-app/blackhole-go/internal/api"
	"github.com/blackhole-app/blackhole-go/internal/auth"
	"github.com/blackhole-app/blackhole-go/internal/models"
)

// CreateUser inserts a user through the store and optionally flips its
// role flags directly in the database (the public store API has no
// "create an admin" path on purpose).
func CreateUser(t *testing.T, s *api.Server, db *sql.DB, username, email, password string, admin, moderator bool) *models.User {
	t.Helper()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password for test user: %v", err)
	}
	user, err := s.Store().CreateUser(username, email, passwordHash, "123456")
	if err != nil {
		t.Fatalf("Failed to create test user '%s': %v", username, err)
	}

	if admin || moderator {
		if _, err := db.Exec("UPDATE users SET is_admin = ?, is_moderator = ? WHERE id = ?",
			admin, moderator, user.ID); err != nil {
			t.Fatalf("Failed to set role flags for test user '%s': %v", username, err)
		}
		user, err = s.Store().GetUserByID(user.ID)
		if err != nil {
			t.Fatalf("Failed to reload test user '%s': %v", username, err)
		}
	}
	return user
}

// BearerToken creates a regular user and returns the Authorization header
// value for them, logging in through the real login handler.
func BearerToken(t *testing.T, s *api.Server, db *sql.DB, username, email, password string) string {
	t.Helper()
	CreateUser(t, s, db, username, email, password, false, false)
	return LoginToken(t, s, email, password)
}

// StaffToken creates a user with the given role flags and returns their
// Authorization header value.
func StaffToken(t *testing.T, s *api.Server, db *sql.DB, username, email, password string, admin, moderator bool) string {
	t.Helper()
	CreateUser(t, s, db, username, email, password, admin, moderator)
	return LoginToken(t, s, email, password)
}

// LoginToken logs an existing user in and returns the Authorization header
// value carrying the issued access token.
func LoginToken(t *testing.T, s *api.Server, email, password string) string {
	t.Helper()

	loginPayload := map[string]string{"email": email, "password": password}
	payloadBytes, _ := json.Marshal(loginPayload)
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("Login failed within test helper for '%s': got status %d, want 200", email, status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatal("Login response did not contain an access token")
	}
	return "Bearer " + body.AccessToken
}
