package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/blackhole-app/blackhole-go/internal/models"
	"github.com/blackhole-app/blackhole-go/internal/store"
)

// handleAdminLogin implements the legacy shared-passphrase console login.
// It only compares the submitted password against the configured
// passphrase and reports success; it issues no token and bypasses none of
// the per-user role checks guarding the admin routes. Kept for behavioral
// compatibility with the original console; not a production-grade gate.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	expected := []byte(s.app.Config.Admin.Passphrase)
	if subtle.ConstantTimeCompare([]byte(payload.Password), expected) != 1 {
		RespondWithError(w, http.StatusUnauthorized, "Incorrect admin password")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Admin logged in successfully"})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleCreateManga(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		ArabicTitle string `json:"arabic_title"`
		Description string `json:"description"`
		CoverImage  string `json:"cover_image"`
		Genre       string `json:"genre"`
		Status      string `json:"status"`
		Author      string `json:"author"`
		Artist      string `json:"artist"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	title := strings.TrimSpace(payload.Title)
	arabicTitle := strings.TrimSpace(payload.ArabicTitle)
	if title == "" || arabicTitle == "" {
		RespondWithError(w, http.StatusBadRequest, "Title and arabic title are required")
		return
	}

	exists, err := s.store.MangaTitleExists(title, arabicTitle)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if exists {
		RespondWithError(w, http.StatusBadRequest, "Manga already exists")
		return
	}

	status := payload.Status
	if status == "" {
		status = "ongoing"
	}

	manga, err := s.store.CreateManga(&models.Manga{
		Title:       title,
		ArabicTitle: arabicTitle,
		Description: strings.TrimSpace(payload.Description),
		CoverImage:  payload.CoverImage,
		Genre:       strings.TrimSpace(payload.Genre),
		Status:      status,
		Author:      strings.TrimSpace(payload.Author),
		Artist:      strings.TrimSpace(payload.Artist),
	})
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Manga created successfully",
		"manga":   manga,
	})
}

func (s *Server) handleUpdateManga(w http.ResponseWriter, r *http.Request) {
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	var patch models.MangaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	manga, err := s.store.UpdateManga(mangaID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Manga not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Manga updated successfully",
		"manga":   manga,
	})
}

func (s *Server) handleDeleteManga(w http.ResponseWriter, r *http.Request) {
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	if err := s.store.DeleteManga(mangaID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Manga not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Manga deleted successfully"})
}

func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	mangaID, err := urlID(r, "mangaID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid manga id")
		return
	}

	if _, err := s.store.GetMangaByID(mangaID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Manga not found")
		return
	}

	var payload struct {
		ChapterNumber float64  `json:"chapter_number"`
		Title         string   `json:"title"`
		Pages         []string `json:"pages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if payload.ChapterNumber == 0 {
		RespondWithError(w, http.StatusBadRequest, "Chapter number is required")
		return
	}

	chapter, err := s.store.CreateChapter(mangaID, payload.ChapterNumber, strings.TrimSpace(payload.Title), payload.Pages)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			RespondWithError(w, http.StatusBadRequest, "Chapter already exists")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Chapter created successfully",
		"chapter": chapter,
	})
}

func (s *Server) handleUpdateChapter(w http.ResponseWriter, r *http.Request) {
	chapterID, err := urlID(r, "chapterID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter id")
		return
	}

	var patch models.ChapterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	chapter, err := s.store.UpdateChapter(chapterID, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			RespondWithError(w, http.StatusNotFound, "Chapter not found")
		case errors.Is(err, store.ErrConflict):
			RespondWithError(w, http.StatusBadRequest, "Chapter already exists")
		default:
			RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Chapter updated successfully",
		"chapter": chapter,
	})
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	chapterID, err := urlID(r, "chapterID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid chapter id")
		return
	}

	if err := s.store.DeleteChapter(chapterID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Chapter not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Chapter deleted successfully"})
}

func (s *Server) handleAdminListComments(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	comments, pagination, err := s.store.ListAllComments(page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"comments":   comments,
		"pagination": pagination,
	})
}

func (s *Server) handlePinComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := urlID(r, "commentID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}

	pinned, err := s.store.ToggleCommentPin(commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Comment not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	message := "Comment unpinned successfully"
	if pinned {
		message = "Comment pinned successfully"
	}
	comment, err := s.store.GetCommentByID(commentID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"comment": comment,
	})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := urlID(r, "commentID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}

	if err := s.store.DeleteComment(commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "Comment not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	users, pagination, err := s.store.ListUsers(page, perPage)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"users":      users,
		"pagination": pagination,
	})
}

func (s *Server) handleBanUser(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.IsAdmin {
		RespondWithError(w, http.StatusBadRequest, "Admins cannot be banned")
		return
	}

	banned, err := s.store.ToggleUserBan(userID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	message := "User unbanned successfully"
	if banned {
		message = "User banned successfully"
	}
	updated, err := s.store.GetUserByID(userID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"user":    updated,
	})
}

// handlePromoteUser toggles the moderator flag. Only full admins may
// promote; moderators cannot mint other moderators.
func (s *Server) handlePromoteUser(w http.ResponseWriter, r *http.Request) {
	actor := getUserFromContext(r)
	if !actor.IsAdmin {
		RespondWithError(w, http.StatusForbidden, "Only admins can promote users")
		return
	}

	userID, err := urlID(r, "userID")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	moderator, err := s.store.ToggleUserModerator(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	message := "User demoted successfully"
	if moderator {
		message = "User promoted successfully"
	}
	updated, err := s.store.GetUserByID(userID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"user":    updated,
	})
}
