package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

// SortByRating is accepted but not yet supported: it falls back to a stable
// id-descending order instead of ordering by computed average rating.
const (
	SortByUpdatedAt = "updated_at"
	SortByTitle     = "title"
	SortByRating    = "rating"
)

// mangaColumns selects a manga row together with its derived aggregates:
// the on-read average of its ratings (0 when unrated) and its live chapter
// count.
const mangaColumns = `m.id, m.title, m.arabic_title, m.description, m.cover_image,
	m.genre, m.status, m.author, m.artist,
	COALESCE((SELECT AVG(r.rating) FROM ratings r WHERE r.manga_id = m.id), 0),
	(SELECT COUNT(*) FROM chapters c WHERE c.manga_id = m.id),
	m.created_at, m.updated_at`

func scanManga(row interface{ Scan(...any) error }) (*models.Manga, error) {
	var m models.Manga
	err := row.Scan(
		&m.ID, &m.Title, &m.ArabicTitle, &m.Description, &m.CoverImage,
		&m.Genre, &m.Status, &m.Author, &m.Artist,
		&m.AverageRating, &m.TotalChapters,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListMangaOptions narrows and orders a catalog listing.
type ListMangaOptions struct {
	Search  string // substring over title, arabic_title, description
	Genre   string // substring over genre
	Status  string // exact match
	SortBy  string // updated_at (default), title, rating
	Page    int
	PerPage int
}

// ListManga returns one page of the catalog with the derived aggregates
// filled in, plus pagination metadata computed from the filtered total.
func (s *Store) ListManga(opts ListMangaOptions) ([]*models.Manga, *Pagination, error) {
	where := " WHERE 1=1"
	args := []any{}
	if opts.Search != "" {
		where += " AND (m.title LIKE ? OR m.arabic_title LIKE ? OR m.description LIKE ?)"
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if opts.Genre != "" {
		where += " AND m.genre LIKE ?"
		args = append(args, "%"+opts.Genre+"%")
	}
	if opts.Status != "" {
		where += " AND m.status = ?"
		args = append(args, opts.Status)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM manga m"+where, args...).Scan(&total); err != nil {
		return nil, nil, err
	}

	var order string
	switch opts.SortBy {
	case SortByRating:
		// Not yet supported; stable fallback only.
		order = " ORDER BY m.id DESC"
	case SortByTitle:
		order = " ORDER BY m.arabic_title ASC"
	default:
		order = " ORDER BY m.updated_at DESC"
	}

	offset := (opts.Page - 1) * opts.PerPage
	args = append(args, opts.PerPage, offset)
	rows, err := s.db.Query("SELECT "+mangaColumns+" FROM manga m"+where+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	mangaList := []*models.Manga{}
	for rows.Next() {
		manga, err := scanManga(rows)
		if err != nil {
			return nil, nil, err
		}
		mangaList = append(mangaList, manga)
	}
	return mangaList, newPagination(opts.Page, opts.PerPage, total), rows.Err()
}

// GetMangaByID fetches a single manga with its derived aggregates.
func (s *Store) GetMangaByID(id int64) (*models.Manga, error) {
	return scanManga(s.db.QueryRow("SELECT "+mangaColumns+" FROM manga m WHERE m.id = ?", id))
}

// MangaTitleExists reports whether any manga already uses either title.
func (s *Store) MangaTitleExists(title, arabicTitle string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM manga WHERE title = ? OR arabic_title = ?",
		title, arabicTitle).Scan(&n)
	return n > 0, err
}

// CreateManga inserts a new catalog entry.
func (s *Store) CreateManga(m *models.Manga) (*models.Manga, error) {
	query := `INSERT INTO manga (title, arabic_title, description, cover_image, genre, status, author, artist, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := s.db.Exec(query, m.Title, m.ArabicTitle, m.Description, m.CoverImage,
		m.Genre, m.Status, m.Author, m.Artist, now, now)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetMangaByID(id)
}

// UpdateManga applies the non-nil fields of the patch.
func (s *Store) UpdateManga(id int64, patch models.MangaPatch) (*models.Manga, error) {
	sets := "updated_at = ?"
	args := []any{time.Now()}
	set := func(column string, value *string) {
		if value != nil {
			sets += ", " + column + " = ?"
			args = append(args, *value)
		}
	}
	set("title", patch.Title)
	set("arabic_title", patch.ArabicTitle)
	set("description", patch.Description)
	set("cover_image", patch.CoverImage)
	set("genre", patch.Genre)
	set("status", patch.Status)
	set("author", patch.Author)
	set("artist", patch.Artist)

	args = append(args, id)
	res, err := s.db.Exec("UPDATE manga SET "+sets+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetMangaByID(id)
}

// DeleteManga removes a manga. The schema cascades take its chapters,
// comments, ratings, reviews, favorites and reading progress in the same
// statement, so the removal is all-or-nothing.
func (s *Store) DeleteManga(id int64) error {
	res, err := s.db.Exec("DELETE FROM manga WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MangaAnnotations carries the caller-specific details shown on a manga
// page: reading progress, favorite state and the caller's own rating.
type MangaAnnotations struct {
	ReadingProgress *float64 `json:"reading_progress"`
	IsFavorite      bool     `json:"is_favorite"`
	UserRating      *float64 `json:"user_rating"`
}

// GetMangaAnnotations resolves the per-user details for a manga page.
func (s *Store) GetMangaAnnotations(userID, mangaID int64) (*MangaAnnotations, error) {
	var ann MangaAnnotations

	var progress float64
	err := s.db.QueryRow(
		"SELECT last_chapter_read FROM reading_progress WHERE user_id = ? AND manga_id = ?",
		userID, mangaID).Scan(&progress)
	switch {
	case err == nil:
		ann.ReadingProgress = &progress
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	var one int
	err = s.db.QueryRow(
		"SELECT 1 FROM favorites WHERE user_id = ? AND manga_id = ?",
		userID, mangaID).Scan(&one)
	switch {
	case err == nil:
		ann.IsFavorite = true
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	var rating float64
	err = s.db.QueryRow(
		"SELECT rating FROM ratings WHERE user_id = ? AND manga_id = ?",
		userID, mangaID).Scan(&rating)
	switch {
	case err == nil:
		ann.UserRating = &rating
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	return &ann, nil
}
