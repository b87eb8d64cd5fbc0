package store

import (
	"database/sql"
	"errors"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

// RecordProgress advances the user's reading high-water-mark for a manga.
// The first call inserts the row; later calls update it only when the new
// chapter number is strictly greater, so re-reading an earlier chapter
// never regresses progress. A single ON CONFLICT statement keeps the
// operation race-safe under concurrent requests.
func (s *Store) RecordProgress(userID, mangaID int64, chapterNumber float64) error {
	query := `
		INSERT INTO reading_progress (user_id, manga_id, last_chapter_read, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, manga_id) DO UPDATE SET
			last_chapter_read = excluded.last_chapter_read,
			updated_at = CURRENT_TIMESTAMP
		WHERE excluded.last_chapter_read > reading_progress.last_chapter_read;
	`
	_, err := s.db.Exec(query, userID, mangaID, chapterNumber)
	return err
}

// GetProgress returns the user's progress row for a manga, or ErrNotFound.
func (s *Store) GetProgress(userID, mangaID int64) (*models.ReadingProgress, error) {
	var p models.ReadingProgress
	err := s.db.QueryRow(
		"SELECT id, user_id, manga_id, last_chapter_read, updated_at FROM reading_progress WHERE user_id = ? AND manga_id = ?",
		userID, mangaID).Scan(&p.ID, &p.UserID, &p.MangaID, &p.LastChapterRead, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListProgress returns one page of the user's reading progress rows, most
// recently updated first, each with the manga embedded.
func (s *Store) ListProgress(userID int64, page, perPage int) ([]*models.ReadingProgress, *Pagination, error) {
	var total int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM reading_progress WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, nil, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT p.id, p.user_id, p.manga_id, p.last_chapter_read, p.updated_at, ` + mangaColumns + `
		FROM reading_progress p
		JOIN manga m ON m.id = p.manga_id
		WHERE p.user_id = ?
		ORDER BY p.updated_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.Query(query, userID, perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	progressList := []*models.ReadingProgress{}
	for rows.Next() {
		var p models.ReadingProgress
		var m models.Manga
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.MangaID, &p.LastChapterRead, &p.UpdatedAt,
			&m.ID, &m.Title, &m.ArabicTitle, &m.Description, &m.CoverImage,
			&m.Genre, &m.Status, &m.Author, &m.Artist,
			&m.AverageRating, &m.TotalChapters,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, nil, err
		}
		p.Manga = &m
		progressList = append(progressList, &p)
	}
	return progressList, newPagination(page, perPage, total), rows.Err()
}
