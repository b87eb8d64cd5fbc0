package store

import "github.com/blackhole-app/blackhole-go/internal/models"

// StatsTotals is the admin dashboard's count block.
type StatsTotals struct {
	Users         int `json:"users"`
	VerifiedUsers int `json:"verified_users"`
	BannedUsers   int `json:"banned_users"`
	Manga         int `json:"manga"`
	Chapters      int `json:"chapters"`
	Comments      int `json:"comments"`
	Ratings       int `json:"ratings"`
	Reviews       int `json:"reviews"`
}

// RecentActivity lists the latest signups and comments.
type RecentActivity struct {
	Users    []*models.User    `json:"users"`
	Comments []*models.Comment `json:"comments"`
}

// Stats aggregates everything the admin dashboard shows.
type Stats struct {
	Totals         StatsTotals    `json:"totals"`
	RecentActivity RecentActivity `json:"recent_activity"`
}

// GetStats collects table counts and recent activity for the admin
// dashboard.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM users", &stats.Totals.Users},
		{"SELECT COUNT(*) FROM users WHERE is_verified = 1", &stats.Totals.VerifiedUsers},
		{"SELECT COUNT(*) FROM users WHERE is_banned = 1", &stats.Totals.BannedUsers},
		{"SELECT COUNT(*) FROM manga", &stats.Totals.Manga},
		{"SELECT COUNT(*) FROM chapters", &stats.Totals.Chapters},
		{"SELECT COUNT(*) FROM comments", &stats.Totals.Comments},
		{"SELECT COUNT(*) FROM ratings", &stats.Totals.Ratings},
		{"SELECT COUNT(*) FROM reviews", &stats.Totals.Reviews},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	users, _, err := s.ListUsers(1, 5)
	if err != nil {
		return nil, err
	}
	stats.RecentActivity.Users = users

	comments, _, err := s.ListAllComments(1, 10)
	if err != nil {
		return nil, err
	}
	stats.RecentActivity.Comments = comments

	return &stats, nil
}
