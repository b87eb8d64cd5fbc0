package api

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"regexp"
	"strings"

	"github.com/blackhole-app/blackhole-go/internal/auth"
	"github.com/blackhole-app/blackhole-go/internal/models"
	"github.com/blackhole-app/blackhole-go/internal/store"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// generateVerificationCode returns a 6-digit code for email verification.
func generateVerificationCode() string {
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "000000"
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	username := strings.TrimSpace(payload.Username)
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if len(username) < 3 {
		RespondWithError(w, http.StatusBadRequest, "Username must be at least 3 characters")
		return
	}
	if !emailPattern.MatchString(email) {
		RespondWithError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(payload.Password) < 6 {
		RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	if _, err := s.store.GetUserByUsername(username); err == nil {
		RespondWithError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	if _, err := s.store.GetUserByEmail(email); err == nil {
		RespondWithError(w, http.StatusBadRequest, "Email already exists")
		return
	}

	passwordHash, err := auth.HashPassword(payload.Password)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	user, err := s.store.CreateUser(username, email, passwordHash, generateVerificationCode())
	if err != nil {
		// The uniqueness checks above raced with another registration.
		if errors.Is(err, store.ErrConflict) {
			RespondWithError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully",
		"user_id": user.ID,
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID           int64  `json:"user_id"`
		VerificationCode string `json:"verification_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	code := strings.TrimSpace(payload.VerificationCode)
	if payload.UserID == 0 || code == "" {
		RespondWithError(w, http.StatusBadRequest, "User id and verification code are required")
		return
	}

	user, err := s.store.GetUserByID(payload.UserID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if !user.IsVerified {
		if user.VerificationCode != code {
			RespondWithError(w, http.StatusBadRequest, "Invalid verification code")
			return
		}
		if err := s.store.SetVerified(user.ID); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Account verified successfully"})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		RespondWithError(w, http.StatusBadRequest, "Email is required")
		return
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	if !user.IsVerified {
		if err := s.store.SetVerificationCode(user.ID, generateVerificationCode()); err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "A new verification code has been sent"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" || payload.Password == "" {
		RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil || !auth.CheckPasswordHash(payload.Password, user.PasswordHash) {
		RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.IsBanned {
		RespondWithError(w, http.StatusForbidden, "Your account has been banned")
		return
	}

	token, err := auth.SignToken(s.jwtSecret, user.ID, s.jwtTTL)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":      "Logged in successfully",
		"access_token": token,
		"user":         user,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	RespondWithJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if len(username) < 3 {
			RespondWithError(w, http.StatusBadRequest, "Username must be at least 3 characters")
			return
		}
		if existing, err := s.store.GetUserByUsername(username); err == nil && existing.ID != user.ID {
			RespondWithError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		patch.Username = &username
	}
	if patch.Bio != nil {
		bio := strings.TrimSpace(*patch.Bio)
		patch.Bio = &bio
	}

	if err := s.store.UpdateProfile(user.ID, patch); err != nil {
		if errors.Is(err, store.ErrConflict) {
			RespondWithError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	updated, err := s.store.GetUserByID(user.ID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}
