package dashboard

import (
	"context"
	"database/sql"

	"classcheck/internal/config"
	"classcheck/internal/store"
)

// Stats is the dashboard payload.
type Stats struct {
	Activities ActivityStats `json:"activities"`
	Students   StudentStats  `json:"students"`
	Users      UserStats     `json:"users"`
}

// ActivityStats counts events by status.
type ActivityStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
}

// StudentStats counts students and event attendance outcomes.
type StudentStats struct {
	Total     int          `json:"total"`
	Attending int          `json:"attending"`
	Absent    int          `json:"absent"`
	Late      int          `json:"late"`
	Levels    []LevelCount `json:"levels"`
}

// LevelCount is one fixed level/track bucket.
type LevelCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UserStats counts staff accounts by role.
type UserStats struct {
	Total   int `json:"total"`
	Admin   int `json:"admin"`
	Teacher int `json:"teacher"`
}

// levelBuckets is the fixed display order: three vocational certificate
// years, then the two diploma years split by entry track.
var levelBuckets = []struct {
	name, level, track string
}{
	{"ปวช.1", "ปวช.1", ""},
	{"ปวช.2", "ปวช.2", ""},
	{"ปวช.3", "ปวช.3", ""},
	{"ปวส.1 (ตรง)", "ปวส.1", "สายตรง"},
	{"ปวส.1 (ม.6)", "ปวส.1", "ม.6"},
	{"ปวส.2 (ตรง)", "ปวส.2", "สายตรง"},
	{"ปวส.2 (ม.6)", "ปวส.2", "ม.6"},
}

const cacheKey = "classcheck:dashboard:stats"

// Service aggregates counts for the dashboard, with a short-TTL redis
// cache in front of the database.
type Service struct {
	db    *sql.DB
	cache *store.Redis
	cfg   config.App
}

// NewService creates a dashboard service.
func NewService(db *sql.DB, cache *store.Redis, cfg config.App) *Service {
	return &Service{db: db, cache: cache, cfg: cfg}
}

// Stats returns the aggregate counts, from cache when fresh.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var cached Stats
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var stats Stats
	if err := s.eventCounts(ctx, &stats); err != nil {
		return Stats{}, err
	}
	if err := s.studentCounts(ctx, &stats); err != nil {
		return Stats{}, err
	}
	if err := s.attendanceCounts(ctx, &stats); err != nil {
		return Stats{}, err
	}
	if err := s.userCounts(ctx, &stats); err != nil {
		return Stats{}, err
	}

	s.cache.SetJSON(ctx, cacheKey, stats, s.cfg.DashboardTTL)
	return stats, nil
}

func (s *Service) eventCounts(ctx context.Context, stats *Stats) error {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM events GROUP BY status")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		stats.Activities.Total += n
		switch status {
		case "ongoing":
			stats.Activities.Active = n
		case "upcoming":
			stats.Activities.Upcoming = n
		case "completed":
			stats.Activities.Completed = n
		}
	}
	return rows.Err()
}

func (s *Service) studentCounts(ctx context.Context, stats *Stats) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT level, COALESCE(track, ''), COUNT(*) FROM students GROUP BY level, track")
	if err != nil {
		return err
	}
	defer rows.Close()

	type key struct{ level, track string }
	counts := make(map[key]int)
	for rows.Next() {
		var k key
		var n int
		if err := rows.Scan(&k.level, &k.track, &n); err != nil {
			return err
		}
		counts[k] = n
		stats.Students.Total += n
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, b := range levelBuckets {
		n := counts[key{b.level, b.track}]
		if b.track == "" {
			// certificate levels have no track split; sum whatever is stored
			for k, v := range counts {
				if k.level == b.level && k.track != "" {
					n += v
				}
			}
		}
		stats.Students.Levels = append(stats.Students.Levels, LevelCount{Name: b.name, Count: n})
	}
	return nil
}

func (s *Service) attendanceCounts(ctx context.Context, stats *Stats) error {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM attendance GROUP BY status")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		switch status {
		case "present":
			stats.Students.Attending = n
		case "absent":
			stats.Students.Absent = n
		case "late":
			stats.Students.Late = n
		}
	}
	return rows.Err()
}

func (s *Service) userCounts(ctx context.Context, stats *Stats) error {
	rows, err := s.db.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return err
		}
		stats.Users.Total += n
		switch role {
		case "admin":
			stats.Users.Admin = n
		case "teacher":
			stats.Users.Teacher = n
		}
	}
	return rows.Err()
}
