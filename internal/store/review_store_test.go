package store_test

import (
	"errors"
	"testing"

	"github.com/blackhole-app/blackhole-go/internal/store"
	"github.com/blackhole-app/blackhole-go/internal/testutil"
)

func TestReviewStore_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	user := createTestUser(t, s, "reviewer")
	manga := createTestManga(t, s, "Reviewed")

	t.Run("Second Review Overwrites the First", func(t *testing.T) {
		if err := s.UpsertReview(user.ID, manga.ID, "decent start", 3); err != nil {
			t.Fatalf("UpsertReview failed: %v", err)
		}
		if err := s.UpsertReview(user.ID, manga.ID, "it grew on me", 5); err != nil {
			t.Fatalf("Second UpsertReview failed: %v", err)
		}

		reviews, err := s.ListRecentReviews(manga.ID, 10)
		if err != nil {
			t.Fatalf("ListRecentReviews failed: %v", err)
		}
		if len(reviews) != 1 {
			t.Fatalf("Expected a single review, got %d", len(reviews))
		}
		if reviews[0].Content != "it grew on me" || reviews[0].Rating != 5 {
			t.Errorf("Expected the latest review, got: %+v", reviews[0])
		}
		if reviews[0].User == nil || reviews[0].User.Username != "reviewer" {
			t.Error("Expected the reviewer to be embedded")
		}
	})

	t.Run("Review Rating Does Not Feed the Manga Average", func(t *testing.T) {
		got, err := s.GetMangaByID(manga.ID)
		if err != nil {
			t.Fatalf("GetMangaByID failed: %v", err)
		}
		if got.AverageRating != 0 {
			t.Errorf("Only the ratings table feeds the average, got %g", got.AverageRating)
		}
	})

	t.Run("Get Review", func(t *testing.T) {
		review, err := s.GetReview(user.ID, manga.ID)
		if err != nil {
			t.Fatalf("GetReview failed: %v", err)
		}
		if review.Content != "it grew on me" {
			t.Errorf("Expected latest content, got '%s'", review.Content)
		}
	})

	t.Run("Missing Review", func(t *testing.T) {
		other := createTestUser(t, s, "silent")
		if _, err := s.GetReview(other.ID, manga.ID); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got: %v", err)
		}
	})
}

func TestReviewStore_RecentLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	manga := createTestManga(t, s, "Popular")
	for _, name := range []string{"r1", "r2", "r3"} {
		user := createTestUser(t, s, name)
		if err := s.UpsertReview(user.ID, manga.ID, "review by "+name, 4); err != nil {
			t.Fatalf("UpsertReview failed: %v", err)
		}
	}

	reviews, err := s.ListRecentReviews(manga.ID, 2)
	if err != nil {
		t.Fatalf("ListRecentReviews failed: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("Expected the limit to cap results at 2, got %d", len(reviews))
	}
	// Newest first; same-second inserts fall back to id order.
	if reviews[0].ID < reviews[1].ID {
		t.Errorf("Expected newest review first, got ids %d, %d", reviews[0].ID, reviews[1].ID)
	}
}
