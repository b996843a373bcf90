package app

import (
	"sort"

	"tietotesti/internal/domain"
)

// DefaultBucketCap is how many scores each category table shows.
const DefaultBucketCap = 5

type groupKey struct {
	difficulty domain.Difficulty
	category   string
}

// BuildLeaderboard groups scores by (difficulty, category), ranks each group
// by score desc then earliest created_at, and keeps the top bucketCap rows.
// The input is not modified.
func BuildLeaderboard(entries []domain.ScoreEntry, bucketCap int) domain.Leaderboard {
	if bucketCap <= 0 {
		bucketCap = DefaultBucketCap
	}

	groups := make(map[groupKey][]domain.Score)
	for _, e := range entries {
		name := e.CategoryName
		if name == "" {
			name = domain.UnknownCategory
		}
		key := groupKey{difficulty: domain.DifficultyFor(e.TotalQuestions), category: name}
		groups[key] = append(groups[key], e.Score)
	}

	lb := domain.Leaderboard{Buckets: make(map[domain.Difficulty][]domain.CategoryRanking)}
	for key, scores := range groups {
		sort.Slice(scores, func(i, j int) bool {
			if scores[i].Score != scores[j].Score {
				return scores[i].Score > scores[j].Score
			}
			if !scores[i].CreatedAt.Equal(scores[j].CreatedAt) {
				return scores[i].CreatedAt.Before(scores[j].CreatedAt)
			}
			return scores[i].ID < scores[j].ID
		})
		// Cap only once sorted.
		if len(scores) > bucketCap {
			scores = scores[:bucketCap]
		}

		ranked := make([]domain.RankedScore, len(scores))
		for i, s := range scores {
			ranked[i] = domain.RankedScore{
				Rank:           i + 1,
				ID:             s.ID,
				PlayerName:     s.PlayerName,
				Score:          s.Score,
				TotalQuestions: s.TotalQuestions,
				Percent:        domain.Percent(s.Score, s.TotalQuestions),
				CreatedAt:      s.CreatedAt,
			}
		}
		lb.Buckets[key.difficulty] = append(lb.Buckets[key.difficulty], domain.CategoryRanking{
			Category: key.category,
			Scores:   ranked,
		})
	}

	for d := range lb.Buckets {
		tables := lb.Buckets[d]
		sort.Slice(tables, func(i, j int) bool { return tables[i].Category < tables[j].Category })
	}
	return lb
}
