package store_test

import (
	"errors"
	"testing"

	"github.com/blackhole-app/blackhole-go/internal/models"
	"github.com/blackhole-app/blackhole-go/internal/store"
	"github.com/blackhole-app/blackhole-go/internal/testutil"
)

func TestMangaStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	manga := createTestManga(t, s, "Solo Leveling")

	t.Run("Derived Aggregates Start at Zero", func(t *testing.T) {
		if manga.AverageRating != 0 {
			t.Errorf("Unrated manga should have average 0, got %f", manga.AverageRating)
		}
		if manga.TotalChapters != 0 {
			t.Errorf("New manga should have 0 chapters, got %d", manga.TotalChapters)
		}
	})

	t.Run("Chapter Count Tracks Live Rows", func(t *testing.T) {
		createTestChapter(t, s, manga.ID, 1)
		createTestChapter(t, s, manga.ID, 2)

		got, err := s.GetMangaByID(manga.ID)
		if err != nil {
			t.Fatalf("GetMangaByID failed: %v", err)
		}
		if got.TotalChapters != 2 {
			t.Errorf("Expected 2 chapters, got %d", got.TotalChapters)
		}
	})

	t.Run("Title Exists", func(t *testing.T) {
		exists, err := s.MangaTitleExists("Solo Leveling", "something else")
		if err != nil {
			t.Fatalf("MangaTitleExists failed: %v", err)
		}
		if !exists {
			t.Error("Expected title to exist")
		}
		exists, _ = s.MangaTitleExists("Unknown", "Unknown")
		if exists {
			t.Error("Expected title to not exist")
		}
	})

	t.Run("Get Non-existent Manga", func(t *testing.T) {
		if _, err := s.GetMangaByID(99999); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got: %v", err)
		}
	})
}

func TestMangaStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	berserk := createTestManga(t, s, "Berserk")
	createTestManga(t, s, "One Piece")
	createTestManga(t, s, "Vagabond")
	completed := models.MangaPatch{}
	status := "completed"
	completed.Status = &status
	if _, err := s.UpdateManga(berserk.ID, completed); err != nil {
		t.Fatalf("UpdateManga failed: %v", err)
	}

	t.Run("Search Filter", func(t *testing.T) {
		list, pagination, err := s.ListManga(store.ListMangaOptions{Search: "One", Page: 1, PerPage: 20})
		if err != nil {
			t.Fatalf("ListManga failed: %v", err)
		}
		if len(list) != 1 || list[0].Title != "One Piece" {
			t.Errorf("Expected only 'One Piece', got %d results", len(list))
		}
		if pagination.Total != 1 {
			t.Errorf("Expected filtered total 1, got %d", pagination.Total)
		}
	})

	t.Run("Status Filter", func(t *testing.T) {
		list, _, err := s.ListManga(store.ListMangaOptions{Status: "completed", Page: 1, PerPage: 20})
		if err != nil {
			t.Fatalf("ListManga failed: %v", err)
		}
		if len(list) != 1 || list[0].Title != "Berserk" {
			t.Errorf("Expected only 'Berserk' to be completed, got %d results", len(list))
		}
	})

	t.Run("Sort By Title", func(t *testing.T) {
		list, _, err := s.ListManga(store.ListMangaOptions{SortBy: store.SortByTitle, Page: 1, PerPage: 20})
		if err != nil {
			t.Fatalf("ListManga failed: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("Expected 3 manga, got %d", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].ArabicTitle > list[i].ArabicTitle {
				t.Errorf("List is not sorted by arabic title: %q before %q", list[i-1].ArabicTitle, list[i].ArabicTitle)
			}
		}
	})

	t.Run("Sort By Rating Falls Back to Stable Order", func(t *testing.T) {
		list, _, err := s.ListManga(store.ListMangaOptions{SortBy: store.SortByRating, Page: 1, PerPage: 20})
		if err != nil {
			t.Fatalf("ListManga failed: %v", err)
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].ID < list[i].ID {
				t.Errorf("Fallback order should be id descending: %d before %d", list[i-1].ID, list[i].ID)
			}
		}
	})

	t.Run("Out-of-range Page Yields Empty List with Real Totals", func(t *testing.T) {
		list, pagination, err := s.ListManga(store.ListMangaOptions{Page: 3, PerPage: 2, Search: "e"})
		if err != nil {
			t.Fatalf("ListManga failed: %v", err)
		}
		if len(list) != 0 {
			t.Errorf("Expected empty page, got %d items", len(list))
		}
		if pagination.Page != 3 || pagination.HasNext || !pagination.HasPrev {
			t.Errorf("Unexpected pagination for out-of-range page: %+v", pagination)
		}
		if pagination.Total == 0 || pagination.Pages == 0 {
			t.Errorf("Totals should reflect the filtered set, got: %+v", pagination)
		}
	})
}

func TestMangaStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	manga := createTestManga(t, s, "Patchable")

	t.Run("Partial Patch", func(t *testing.T) {
		desc := "New description"
		updated, err := s.UpdateManga(manga.ID, models.MangaPatch{Description: &desc})
		if err != nil {
			t.Fatalf("UpdateManga failed: %v", err)
		}
		if updated.Description != "New description" {
			t.Errorf("Expected description to change, got '%s'", updated.Description)
		}
		if updated.Title != "Patchable" {
			t.Errorf("Title should be unchanged, got '%s'", updated.Title)
		}
	})

	t.Run("Update Non-existent Manga", func(t *testing.T) {
		title := "ghost"
		if _, err := s.UpdateManga(99999, models.MangaPatch{Title: &title}); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got: %v", err)
		}
	})
}

// Deleting a manga must take every dependent row with it in one shot.
func TestMangaStore_DeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	user := createTestUser(t, s, "reader")
	manga := createTestManga(t, s, "Doomed")
	chapter := createTestChapter(t, s, manga.ID, 1)

	if _, err := s.CreateComment(user.ID, &manga.ID, &chapter.ID, "great chapter", nil); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if err := s.Rate(user.ID, models.MangaTarget(manga.ID), 5); err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if err := s.Rate(user.ID, models.ChapterTarget(chapter.ID), 4); err != nil {
		t.Fatalf("Rate chapter failed: %v", err)
	}
	if err := s.UpsertReview(user.ID, manga.ID, "masterpiece", 5); err != nil {
		t.Fatalf("UpsertReview failed: %v", err)
	}
	if _, err := s.ToggleFavorite(user.ID, manga.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if err := s.RecordProgress(user.ID, manga.ID, 1); err != nil {
		t.Fatalf("RecordProgress failed: %v", err)
	}

	if err := s.DeleteManga(manga.ID); err != nil {
		t.Fatalf("DeleteManga failed: %v", err)
	}

	if _, err := s.GetChapterByID(chapter.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Chapter should cascade away, got: %v", err)
	}
	if comments, _ := s.ListChapterComments(chapter.ID); len(comments) != 0 {
		t.Errorf("Comments should cascade away, got %d", len(comments))
	}
	if n, _ := s.CountRatings(models.MangaTarget(manga.ID)); n != 0 {
		t.Errorf("Manga ratings should cascade away, got %d", n)
	}
	if n, _ := s.CountRatings(models.ChapterTarget(chapter.ID)); n != 0 {
		t.Errorf("Chapter ratings should cascade away, got %d", n)
	}
	if _, err := s.GetReview(user.ID, manga.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Review should cascade away, got: %v", err)
	}
	if favorites, _, _ := s.ListFavorites(user.ID, 1, 20); len(favorites) != 0 {
		t.Errorf("Favorites should cascade away, got %d", len(favorites))
	}
	if _, err := s.GetProgress(user.ID, manga.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Reading progress should cascade away, got: %v", err)
	}

	// The user is untouched by the cascade.
	if _, err := s.GetUserByID(user.ID); err != nil {
		t.Errorf("User should survive a manga delete: %v", err)
	}
}

func TestMangaStore_Annotations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	user := createTestUser(t, s, "annotated")
	manga := createTestManga(t, s, "Annotated Manga")

	t.Run("Empty Annotations", func(t *testing.T) {
		ann, err := s.GetMangaAnnotations(user.ID, manga.ID)
		if err != nil {
			t.Fatalf("GetMangaAnnotations failed: %v", err)
		}
		if ann.ReadingProgress != nil || ann.IsFavorite || ann.UserRating != nil {
			t.Errorf("Expected empty annotations, got: %+v", ann)
		}
	})

	t.Run("Populated Annotations", func(t *testing.T) {
		if err := s.RecordProgress(user.ID, manga.ID, 12); err != nil {
			t.Fatalf("RecordProgress failed: %v", err)
		}
		if _, err := s.ToggleFavorite(user.ID, manga.ID); err != nil {
			t.Fatalf("ToggleFavorite failed: %v", err)
		}
		if err := s.Rate(user.ID, models.MangaTarget(manga.ID), 4); err != nil {
			t.Fatalf("Rate failed: %v", err)
		}

		ann, err := s.GetMangaAnnotations(user.ID, manga.ID)
		if err != nil {
			t.Fatalf("GetMangaAnnotations failed: %v", err)
		}
		if ann.ReadingProgress == nil || *ann.ReadingProgress != 12 {
			t.Errorf("Expected reading progress 12, got: %v", ann.ReadingProgress)
		}
		if !ann.IsFavorite {
			t.Error("Expected manga to be favorited")
		}
		if ann.UserRating == nil || *ann.UserRating != 4 {
			t.Errorf("Expected user rating 4, got: %v", ann.UserRating)
		}
	})
}
