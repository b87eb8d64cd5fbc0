package models

// Patch structs carry partial updates. A nil field means "leave unchanged";
// a non-nil field is applied even when it points at a zero value.

// MangaPatch is a partial update to a manga.
type MangaPatch struct {
	Title       *string  `json:"title"`
	ArabicTitle *string  `json:"arabic_title"`
	Description *string  `json:"description"`
	CoverImage  *string  `json:"cover_image"`
	Genre       *string  `json:"genre"`
	Status      *string  `json:"status"`
	Author      *string  `json:"author"`
	Artist      *string  `json:"artist"`
}

// ChapterPatch is a partial update to a chapter.
type ChapterPatch struct {
	ChapterNumber *float64  `json:"chapter_number"`
	Title         *string   `json:"title"`
	Pages         *[]string `json:"pages"`
}

// ProfilePatch is a partial update to the caller's own profile.
type ProfilePatch struct {
	Username     *string `json:"username"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image"`
}
