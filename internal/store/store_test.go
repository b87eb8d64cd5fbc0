package store_test

import (
	"fmt"
	"testing"

	"github.com/blackhole-app/blackhole-go/internal/models"
	"github.com/blackhole-app/blackhole-go/internal/store"
)

// Shared seeding helpers for the store tests. Passwords are opaque hashes
// to the store, so a placeholder string is enough here.

func createTestUser(t *testing.T, s *store.Store, username string) *models.User {
	t.Helper()
	user, err := s.CreateUser(username, username+"@example.com", "not-a-real-hash", "123456")
	if err != nil {
		t.Fatalf("Failed to create test user '%s': %v", username, err)
	}
	return user
}

func createTestManga(t *testing.T, s *store.Store, title string) *models.Manga {
	t.Helper()
	manga, err := s.CreateManga(&models.Manga{
		Title:       title,
		ArabicTitle: title + " (ar)",
		Description: "Description of " + title,
		Genre:       "action",
		Status:      "ongoing",
		Author:      "Author",
		Artist:      "Artist",
	})
	if err != nil {
		t.Fatalf("Failed to create test manga '%s': %v", title, err)
	}
	return manga
}

func createTestChapter(t *testing.T, s *store.Store, mangaID int64, number float64) *models.Chapter {
	t.Helper()
	chapter, err := s.CreateChapter(mangaID, number, fmt.Sprintf("Chapter %g", number), []string{"p1.jpg", "p2.jpg"})
	if err != nil {
		t.Fatalf("Failed to create test chapter %g: %v", number, err)
	}
	return chapter
}
