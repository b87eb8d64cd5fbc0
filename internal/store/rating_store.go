package store

import (
	"fmt"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

// Rate records a user's rating for a manga or chapter. It is a true upsert
// keyed on the partial unique index for the target kind: a second rating
// from the same user overwrites the first in a single atomic statement, so
// concurrent calls can never produce duplicate rows or surface a
// constraint violation. The tagged target is translated to the nullable
// (manga_id, chapter_id) column pair only here, at the storage boundary.
func (s *Store) Rate(userID int64, target models.RatingTarget, value float64) error {
	var query string
	switch target.Kind {
	case models.RatingTargetManga:
		query = `
			INSERT INTO ratings (user_id, manga_id, rating, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT (user_id, manga_id) WHERE manga_id IS NOT NULL DO UPDATE SET
				rating = excluded.rating,
				updated_at = CURRENT_TIMESTAMP;
		`
	case models.RatingTargetChapter:
		query = `
			INSERT INTO ratings (user_id, chapter_id, rating, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT (user_id, chapter_id) WHERE chapter_id IS NOT NULL DO UPDATE SET
				rating = excluded.rating,
				updated_at = CURRENT_TIMESTAMP;
		`
	default:
		return fmt.Errorf("unknown rating target kind: %d", target.Kind)
	}
	_, err := s.db.Exec(query, userID, target.ID, value)
	return err
}

// GetRating returns the user's rating for the target, or ErrNotFound.
func (s *Store) GetRating(userID int64, target models.RatingTarget) (float64, error) {
	var column string
	switch target.Kind {
	case models.RatingTargetManga:
		column = "manga_id"
	case models.RatingTargetChapter:
		column = "chapter_id"
	default:
		return 0, fmt.Errorf("unknown rating target kind: %d", target.Kind)
	}
	var value float64
	err := s.db.QueryRow(
		"SELECT rating FROM ratings WHERE user_id = ? AND "+column+" = ?",
		userID, target.ID).Scan(&value)
	if err != nil {
		return 0, ErrNotFound
	}
	return value, nil
}

// CountRatings returns the number of ratings for a target.
func (s *Store) CountRatings(target models.RatingTarget) (int, error) {
	var column string
	switch target.Kind {
	case models.RatingTargetManga:
		column = "manga_id"
	case models.RatingTargetChapter:
		column = "chapter_id"
	default:
		return 0, fmt.Errorf("unknown rating target kind: %d", target.Kind)
	}
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM ratings WHERE "+column+" = ?", target.ID).Scan(&n)
	return n, err
}
