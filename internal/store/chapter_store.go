package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

const chapterColumns = `c.id, c.manga_id, c.chapter_number, c.title, c.pages,
	COALESCE((SELECT AVG(r.rating) FROM ratings r WHERE r.chapter_id = c.id), 0),
	c.created_at, c.updated_at`

func scanChapter(row interface{ Scan(...any) error }) (*models.Chapter, error) {
	var c models.Chapter
	var pages sql.NullString
	err := row.Scan(
		&c.ID, &c.MangaID, &c.ChapterNumber, &c.Title, &pages,
		&c.AverageRating, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Pages = decodePages(pages)
	return &c, nil
}

// Page lists are stored as a JSON array in a single TEXT column.
func encodePages(pages []string) any {
	if len(pages) == 0 {
		return nil
	}
	b, err := json.Marshal(pages)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodePages(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var pages []string
	if err := json.Unmarshal([]byte(raw.String), &pages); err != nil {
		return nil
	}
	return pages
}

// CreateChapter inserts a new chapter. Returns ErrConflict when the manga
// already has a chapter with that number.
func (s *Store) CreateChapter(mangaID int64, chapterNumber float64, title string, pages []string) (*models.Chapter, error) {
	query := `INSERT INTO chapters (manga_id, chapter_number, title, pages, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := s.db.Exec(query, mangaID, chapterNumber, title, encodePages(pages), now, now)
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetChapterByID(id)
}

// GetChapterByID fetches a single chapter with its derived average rating.
func (s *Store) GetChapterByID(id int64) (*models.Chapter, error) {
	return scanChapter(s.db.QueryRow("SELECT "+chapterColumns+" FROM chapters c WHERE c.id = ?", id))
}

// GetMangaChapter fetches a chapter scoped to its manga, so a chapter id
// from another manga's URL comes back as not found.
func (s *Store) GetMangaChapter(mangaID, chapterID int64) (*models.Chapter, error) {
	return scanChapter(s.db.QueryRow(
		"SELECT "+chapterColumns+" FROM chapters c WHERE c.id = ? AND c.manga_id = ?",
		chapterID, mangaID))
}

// ListChaptersByManga returns all of a manga's chapters ordered by number.
func (s *Store) ListChaptersByManga(mangaID int64) ([]*models.Chapter, error) {
	rows, err := s.db.Query(
		"SELECT "+chapterColumns+" FROM chapters c WHERE c.manga_id = ? ORDER BY c.chapter_number ASC",
		mangaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chapters := []*models.Chapter{}
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}
	return chapters, rows.Err()
}

// UpdateChapter applies the non-nil fields of the patch. Returns
// ErrConflict when the new chapter number collides within the manga.
func (s *Store) UpdateChapter(id int64, patch models.ChapterPatch) (*models.Chapter, error) {
	sets := "updated_at = ?"
	args := []any{time.Now()}
	if patch.ChapterNumber != nil {
		sets += ", chapter_number = ?"
		args = append(args, *patch.ChapterNumber)
	}
	if patch.Title != nil {
		sets += ", title = ?"
		args = append(args, *patch.Title)
	}
	if patch.Pages != nil {
		sets += ", pages = ?"
		args = append(args, encodePages(*patch.Pages))
	}
	args = append(args, id)
	res, err := s.db.Exec("UPDATE chapters SET "+sets+" WHERE id = ?", args...)
	if err != nil {
		if isConstraintErr(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetChapterByID(id)
}

// DeleteChapter removes a chapter; its comments and ratings cascade away
// with it.
func (s *Store) DeleteChapter(id int64) error {
	res, err := s.db.Exec("DELETE FROM chapters WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
