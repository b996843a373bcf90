package domain

import "time"

// UnknownCategory labels scores whose category has been deleted.
const UnknownCategory = "Tuntematon"

// Difficulty buckets scores by quiz length.
type Difficulty string

const (
	DifficultyShort  Difficulty = "short"
	DifficultyMedium Difficulty = "medium"
	DifficultyLong   Difficulty = "long"
)

// Difficulties lists the buckets in display order.
var Difficulties = []Difficulty{DifficultyShort, DifficultyMedium, DifficultyLong}

// DifficultyFor classifies a quiz by its question count.
func DifficultyFor(totalQuestions int) Difficulty {
	switch {
	case totalQuestions <= 5:
		return DifficultyShort
	case totalQuestions <= 10:
		return DifficultyMedium
	default:
		return DifficultyLong
	}
}

// Label is the heading shown above the bucket.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyShort:
		return "Lyhyt (5 kysymystä)"
	case DifficultyMedium:
		return "Keskipitkä (10 kysymystä)"
	case DifficultyLong:
		return "Pitkä (15+ kysymystä)"
	}
	return string(d)
}

// ScoreEntry is a score annotated with its resolved category name.
type ScoreEntry struct {
	Score
	CategoryName string `json:"category_name"`
}

// RankedScore is one row of a category table.
type RankedScore struct {
	Rank           int       `json:"rank"`
	ID             int64     `json:"id"`
	PlayerName     string    `json:"player_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percent        int       `json:"percent"`
	CreatedAt      time.Time `json:"created_at"`
}

// CategoryRanking is the ranked table of one (difficulty, category) group.
type CategoryRanking struct {
	Category string        `json:"category"`
	Scores   []RankedScore `json:"scores"`
}

// Leaderboard maps each non-empty bucket to its category tables.
type Leaderboard struct {
	Buckets map[Difficulty][]CategoryRanking `json:"buckets"`
}

// LeaderboardBucket is a bucket with its heading, for ordered rendering.
type LeaderboardBucket struct {
	Difficulty Difficulty        `json:"difficulty"`
	Label      string            `json:"label"`
	Categories []CategoryRanking `json:"categories"`
}

// Ordered returns the non-empty buckets short, medium, long.
func (l Leaderboard) Ordered() []LeaderboardBucket {
	out := make([]LeaderboardBucket, 0, len(l.Buckets))
	for _, d := range Difficulties {
		groups, ok := l.Buckets[d]
		if !ok {
			continue
		}
		out = append(out, LeaderboardBucket{Difficulty: d, Label: d.Label(), Categories: groups})
	}
	return out
}

// Percent rounds score/total to the nearest whole percent.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return (score*200 + total) / (total * 2)
}
