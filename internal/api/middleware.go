package api

// This file contains the middleware for handling authentication and
// role-based authorization.

import (
	"context"
	"net/http"
	"strings"

	"github.com/blackhole-app/blackhole-go/internal/auth"
	"github.com/blackhole-app/blackhole-go/internal/models"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey string

const userContextKey = contextKey("user")

func (s *Server) userFromBearerToken(r *http.Request) *models.User {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	claims, err := auth.ParseToken(s.jwtSecret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil
	}
	user, err := s.store.GetUserByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

// AuthMiddleware verifies the caller's bearer token, resolves it to a user
// and injects the user into the request context for downstream handlers.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.userFromBearerToken(r)
		if user == nil {
			RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware resolves a bearer token when one is present and
// valid, and otherwise lets the request through with no actor attached.
// An absent or invalid token is never an error here.
func (s *Server) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := s.userFromBearerToken(r); user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// StaffOnlyMiddleware lets only admins and moderators through. It must be
// chained after AuthMiddleware.
func (s *Server) StaffOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := getUserFromContext(r)
		if user == nil {
			RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !user.IsStaff() {
			RespondWithError(w, http.StatusForbidden, "You are not allowed to access this")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getUserFromContext safely retrieves the user from the request context.
// It returns nil if no actor is attached.
func getUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
