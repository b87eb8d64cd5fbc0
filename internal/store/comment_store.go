package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/blackhole-app/blackhole-go/internal/models"
)

const commentColumns = `cm.id, cm.user_id, cm.manga_id, cm.chapter_id, cm.content,
	cm.images, cm.is_pinned, cm.created_at, cm.updated_at,
	u.id, u.username, u.email, u.profile_image, u.bio,
	u.is_admin, u.is_moderator, u.is_verified, u.is_banned, u.created_at, u.updated_at`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	var cm models.Comment
	var u models.User
	var mangaID, chapterID sql.NullInt64
	var images sql.NullString
	err := row.Scan(
		&cm.ID, &cm.UserID, &mangaID, &chapterID, &cm.Content,
		&images, &cm.IsPinned, &cm.CreatedAt, &cm.UpdatedAt,
		&u.ID, &u.Username, &u.Email, &u.ProfileImage, &u.Bio,
		&u.IsAdmin, &u.IsModerator, &u.IsVerified, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mangaID.Valid {
		cm.MangaID = &mangaID.Int64
	}
	if chapterID.Valid {
		cm.ChapterID = &chapterID.Int64
	}
	cm.Images = decodePages(images)
	cm.User = &u
	return &cm, nil
}

// CreateComment inserts a comment scoped to a chapter (and its manga).
func (s *Store) CreateComment(userID int64, mangaID, chapterID *int64, content string, images []string) (*models.Comment, error) {
	query := `INSERT INTO comments (user_id, manga_id, chapter_id, content, images, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := s.db.Exec(query, userID, mangaID, chapterID, content, encodePages(images), now, now)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetCommentByID(id)
}

// GetCommentByID fetches a single comment with its author embedded.
func (s *Store) GetCommentByID(id int64) (*models.Comment, error) {
	return scanComment(s.db.QueryRow(
		"SELECT "+commentColumns+" FROM comments cm JOIN users u ON u.id = cm.user_id WHERE cm.id = ?", id))
}

// ListChapterComments returns a chapter's comments with pinned comments
// first, then newest first within each group.
func (s *Store) ListChapterComments(chapterID int64) ([]*models.Comment, error) {
	query := "SELECT " + commentColumns + ` FROM comments cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.chapter_id = ?
		ORDER BY cm.is_pinned DESC, cm.created_at DESC, cm.id DESC`
	rows, err := s.db.Query(query, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// ListAllComments returns one page of every comment, newest first. Used by
// the admin moderation view.
func (s *Store) ListAllComments(page, perPage int) ([]*models.Comment, *Pagination, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&total); err != nil {
		return nil, nil, err
	}

	offset := (page - 1) * perPage
	query := "SELECT " + commentColumns + ` FROM comments cm
		JOIN users u ON u.id = cm.user_id
		ORDER BY cm.created_at DESC, cm.id DESC
		LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, perPage, offset)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, nil, err
		}
		comments = append(comments, comment)
	}
	return comments, newPagination(page, perPage, total), rows.Err()
}

// ToggleCommentPin flips a comment's pinned flag and returns the new state.
func (s *Store) ToggleCommentPin(id int64) (bool, error) {
	var pinned bool
	err := s.db.QueryRow(
		"UPDATE comments SET is_pinned = NOT is_pinned, updated_at = ? WHERE id = ? RETURNING is_pinned",
		time.Now(), id).Scan(&pinned)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return pinned, err
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(id int64) error {
	res, err := s.db.Exec("DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
