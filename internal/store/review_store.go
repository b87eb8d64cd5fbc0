package store

import (
	"database/sql"
	"errors"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

// UpsertReview creates or overwrites the user's review of a manga in one
// atomic statement keyed on the (user_id, manga_id) uniqueness constraint.
func (s *Store) UpsertReview(userID, mangaID int64, content string, rating float64) error {
	query := `
		INSERT INTO reviews (user_id, manga_id, content, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, manga_id) DO UPDATE SET
			content = excluded.content,
			rating = excluded.rating,
			updated_at = CURRENT_TIMESTAMP;
	`
	_, err := s.db.Exec(query, userID, mangaID, content, rating)
	return err
}

// ListRecentReviews returns the newest reviews for a manga with the
// reviewer embedded, most recent first.
func (s *Store) ListRecentReviews(mangaID int64, limit int) ([]*models.Review, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.manga_id, rv.content, rv.rating, rv.created_at, rv.updated_at,
		       u.id, u.username, u.email, u.profile_image, u.bio,
		       u.is_admin, u.is_moderator, u.is_verified, u.is_banned, u.created_at, u.updated_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.manga_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, mangaID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		var rv models.Review
		var u models.User
		if err := rows.Scan(
			&rv.ID, &rv.UserID, &rv.MangaID, &rv.Content, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt,
			&u.ID, &u.Username, &u.Email, &u.ProfileImage, &u.Bio,
			&u.IsAdmin, &u.IsModerator, &u.IsVerified, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rv.User = &u
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}

// GetReview returns the user's review of a manga, or ErrNotFound.
func (s *Store) GetReview(userID, mangaID int64) (*models.Review, error) {
	var rv models.Review
	err := s.db.QueryRow(
		"SELECT id, user_id, manga_id, content, rating, created_at, updated_at FROM reviews WHERE user_id = ? AND manga_id = ?",
		userID, mangaID).Scan(&rv.ID, &rv.UserID, &rv.MangaID, &rv.Content, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}
