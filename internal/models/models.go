// This file defines the core data structures (models) for the application:
// user accounts and the manga catalog entities they interact with.

package models

import "time"

// User represents a registered account. The password hash and verification
// code never appear in JSON responses.
type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	ProfileImage     string    `json:"profile_image"`
	Bio              string    `json:"bio"`
	IsAdmin          bool      `json:"is_admin"`
	IsModerator      bool      `json:"is_moderator"`
	IsVerified       bool      `json:"is_verified"`
	IsBanned         bool      `json:"is_banned"`
	VerificationCode string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsStaff reports whether the user may access the admin console.
func (u *User) IsStaff() bool {
	return u.IsAdmin || u.IsModerator
}

// Manga represents a single catalog entry. AverageRating and TotalChapters
// are derived on read, never stored.
type Manga struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	ArabicTitle   string    `json:"arabic_title"`
	Description   string    `json:"description"`
	CoverImage    string    `json:"cover_image"`
	Genre         string    `json:"genre"`
	Status        string    `json:"status"` // ongoing, completed, hiatus
	Author        string    `json:"author"`
	Artist        string    `json:"artist"`
	AverageRating float64   `json:"average_rating"`
	TotalChapters int       `json:"total_chapters"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Chapter represents a single chapter of a manga. ChapterNumber is a float
// to allow fractional numbering (e.g. 10.5). Pages holds the ordered image
// URLs, serialized as a JSON array in the database.
type Chapter struct {
	ID            int64     `json:"id"`
	MangaID       int64     `json:"manga_id"`
	ChapterNumber float64   `json:"chapter_number"`
	Title         string    `json:"title"`
	Pages         []string  `json:"pages"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Comment belongs to a user and optionally a manga and/or chapter.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	MangaID   *int64    `json:"manga_id"`
	ChapterID *int64    `json:"chapter_id"`
	Content   string    `json:"content"`
	Images    []string  `json:"images,omitempty"`
	IsPinned  bool      `json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingTargetKind discriminates what a rating points at.
type RatingTargetKind int

const (
	RatingTargetManga RatingTargetKind = iota + 1
	RatingTargetChapter
)

// RatingTarget is a tagged variant naming exactly one of a manga or a
// chapter. It is translated to the nullable (manga_id, chapter_id) column
// pair only at the storage boundary.
type RatingTarget struct {
	Kind RatingTargetKind
	ID   int64
}

// MangaTarget returns a rating target pointing at a manga.
func MangaTarget(id int64) RatingTarget {
	return RatingTarget{Kind: RatingTargetManga, ID: id}
}

// ChapterTarget returns a rating target pointing at a chapter.
func ChapterTarget(id int64) RatingTarget {
	return RatingTarget{Kind: RatingTargetChapter, ID: id}
}

// Rating is a single user's 1-5 score for a manga or a chapter. At most one
// row exists per (user, manga) and per (user, chapter).
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MangaID   *int64    `json:"manga_id"`
	ChapterID *int64    `json:"chapter_id"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a user's written review of a manga, one per (user, manga).
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	MangaID   int64     `json:"manga_id"`
	Content   string    `json:"content"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Favorite marks a manga as favorited by a user; presence is the toggle state.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MangaID   int64     `json:"manga_id"`
	Manga     *Manga    `json:"manga,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadingProgress is a per-(user, manga) high-water-mark of the last chapter
// number read. It only ever increases.
type ReadingProgress struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	MangaID         int64     `json:"manga_id"`
	Manga           *Manga    `json:"manga,omitempty"`
	LastChapterRead float64   `json:"last_chapter_read"`
	UpdatedAt       time.Time `json:"updated_at"`
}
