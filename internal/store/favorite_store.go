package store

import (
	"github.com/blackhole-app/blackhole-go/internal/models"
)

// ToggleFavorite flips the favorite state for (user, manga) and reports the
// resulting state: true when the manga was just added, false when removed.
// The delete-then-insert pair needs no prior read; the uniqueness
// constraint absorbs a racing duplicate insert.
func (s *Store) ToggleFavorite(userID, mangaID int64) (bool, error) {
	res, err := s.db.Exec(
		"DELETE FROM favorites WHERE user_id = ? AND manga_id = ?",
		userID, mangaID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}

	_, err = s.db.Exec(
		"INSERT OR IGNORE INTO favorites (user_id, manga_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		userID, mangaID)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFavorites returns one page of the user's favorites newest-first,
// each with the favorited manga embedded.
func (s *Store) ListFavorites(userID int64, page, perPage int) ([]*models.Favorite, *Pagination, error) {
	var total int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM favorites WHERE user_id = ?", userID).Scan(&total); err != nil {
		return nil, nil, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT f.id, f.user_id, f.manga_id, f.created_at, ` + mangaColumns + `
		FROM favorites f
		JOIN manga m ON m.id = f.manga_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.Query(query, userID, perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	favorites := []*models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		var m models.Manga
		if err := rows.Scan(
			&f.ID, &f.UserID, &f.MangaID, &f.CreatedAt,
			&m.ID, &m.Title, &m.ArabicTitle, &m.Description, &m.CoverImage,
			&m.Genre, &m.Status, &m.Author, &m.Artist,
			&m.AverageRating, &m.TotalChapters,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, nil, err
		}
		f.Manga = &m
		favorites = append(favorites, &f)
	}
	return favorites, newPagination(page, perPage, total), rows.Err()
}
