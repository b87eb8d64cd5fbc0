package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/blackhole-app/blackhole-go/internal/models"
	"github.com/blackhole-app/blackhole-go/internal/store"
)

func (s *Server) handleListManga(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pageParams(r)
	opts := store.ListMangaOptions{
		Search:  strings.TrimSpace(q.Get("search")),
		Genre:   strings.TrimSpace(q.Get("genre")),
		Status:  strings.TrimSpace(q.Get("status")),
		SortBy:  q.Get("sort_by"),
		Page:    page,
		PerPage: perPage,
	}

	mangaList, pagination, err := s.store.ListManga(opts)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"manga":      mangaList,
		"pagination": pagination,
	})
}

// mangaDetail decorates a manga with its chapters, recent reviews and the
// caller-specific annotations.
type mangaDetail struct {
	*models.Manga
	Chapters        []*models.Chapter `json:"chapters"`
	Reviews         []*models.Review  `json:"reviews"`
	ReadingProgress *float64          `json:"reading_progress"`
	IsFavorite      bool              `json:"is_favorite"`
	UserRating      *float64          `json:"user_rating"`
}

func (s *Server) handleGetMangaDetails(w http.ResponseWriter, r *http.Request) {
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	manga, err := s.store.GetMangaByID(mangaID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Manga not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	chapters, err := s.store.ListChaptersByManga(mangaID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	reviews, err := s.store.ListRecentReviews(mangaID, 10)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	detail := mangaDetail{Manga: manga, Chapters: chapters, Reviews: reviews}
	if user := getUserFromContext(r); user != nil {
		ann, err := s.store.GetMangaAnnotations(user.ID, mangaID)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		detail.ReadingProgress = ann.ReadingProgress
		detail.IsFavorite = ann.IsFavorite
		detail.UserRating = ann.UserRating
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{"manga": detail})
}

type chapterDetail struct {
	*models.Chapter
	Comments []*models.Comment `json:"comments"`
}

func (s *Server) handleGetChapterDetails(w http.ResponseWriter, r *http.Request) {
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}
	chapterID, err := urlID(r, "chapterID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter id")
		return
	}

	chapter, err := s.store.GetMangaChapter(mangaID, chapterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	// Reading a chapter advances the caller's progress high-water-mark as a
	// side effect. Anonymous readers skip this silently, and a failure to
	// record progress never fails the page itself.
	if user := getUserFromContext(r); user != nil {
		if err := s.store.RecordProgress(user.ID, mangaID, chapter.ChapterNumber); err != nil {
			log.Printf("Failed to record reading progress for user %d: %v", user.ID, err)
		}
	}

	comments, err := s.store.ListChapterComments(chapterID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"chapter": chapterDetail{Chapter: chapter, Comments: comments},
	})
}

func decodeRating(r *http.Request) (float64, bool) {
	var payload struct {
		Rating float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return 0, false
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		return 0, false
	}
	return payload.Rating, true
}

func (s *Server) handleRateManga(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	value, ok := decodeRating(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if _, err := s.store.GetMangaByID(mangaID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}

	if err := s.store.Rate(user.ID, models.MangaTarget(mangaID), value); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Manga rated successfully"})
}

func (s *Server) handleRateChapter(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}
	chapterID, err := urlID(r, "chapterID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter id")
		return
	}

	value, ok := decodeRating(r)
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if _, err := s.store.GetMangaChapter(mangaID, chapterID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Chapter not found")
		return
	}

	if err := s.store.Rate(user.ID, models.ChapterTarget(chapterID), value); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Chapter rated successfully"})
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	var payload struct {
		Content string  `json:"content"`
		Rating  float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		RespondWithError(w, http.StatusBadRequest, "Review content is required")
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		RespondWithError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if _, err := s.store.GetMangaByID(mangaID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}

	if err := s.store.UpsertReview(user.ID, mangaID, content, payload.Rating); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "Review added successfully"})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user.IsBanned {
		RespondWithError(w, http.StatusForbidden, "You have been banned from commenting")
		return
	}

	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}
	chapterID, err := urlID(r, "chapterID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter id")
		return
	}

	var payload struct {
		Content string   `json:"content"`
		Images  []string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		RespondWithError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	if _, err := s.store.GetMangaChapter(mangaID, chapterID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Chapter not found")
		return
	}

	comment, err := s.store.CreateComment(user.ID, &mangaID, &chapterID, content, payload.Images)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	if _, err := s.store.GetMangaByID(mangaID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}

	added, err := s.store.ToggleFavorite(user.ID, mangaID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	message := "Manga removed from favorites"
	if added {
		message = "Manga added to favorites"
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":     message,
		"is_favorite": added,
	})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	page, perPage := pageParams(r)

	favorites, pagination, err := s.store.ListFavorites(user.ID, page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"favorites":  favorites,
		"pagination": pagination,
	})
}

func (s *Server) handleListReadingProgress(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	page, perPage := pageParams(r)

	progress, pagination, err := s.store.ListProgress(user.ID, page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"reading_progress": progress,
		"pagination":       pagination,
	})
}
