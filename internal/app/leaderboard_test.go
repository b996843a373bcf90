package app_test

import (
	"testing"
	"time"

	"tietotesti/internal/app"
	"tietotesti/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 10, 18, 12, 0, 0, 0, time.UTC)

func entry(id int64, player string, score, total int, category string, minutes int) domain.ScoreEntry {
	return domain.ScoreEntry{
		Score: domain.Score{
			ID:             id,
			PlayerName:     player,
			Score:          score,
			TotalQuestions: total,
			CategoryID:     1,
			CreatedAt:      base.Add(time.Duration(minutes) * time.Minute),
		},
		CategoryName: category,
	}
}

func TestLeaderboardTieGoesToEarlierScore(t *testing.T) {
	board := app.BuildLeaderboard([]domain.ScoreEntry{
		entry(1, "Myöhäinen", 4, 5, "Historia", 10),
		entry(2, "Aikainen", 4, 5, "Historia", 1),
		entry(3, "Paras", 5, 5, "Historia", 20),
	}, 0)

	tables := board.Buckets[domain.DifficultyShort]
	require.Len(t, tables, 1)
	scores := tables[0].Scores
	require.Len(t, scores, 3)
	assert.Equal(t, []string{"Paras", "Aikainen", "Myöhäinen"},
		[]string{scores[0].PlayerName, scores[1].PlayerName, scores[2].PlayerName})
	assert.Equal(t, []int{1, 2, 3}, []int{scores[0].Rank, scores[1].Rank, scores[2].Rank})
	assert.Equal(t, 80, scores[1].Percent)
}

func TestLeaderboardBucketsByLength(t *testing.T) {
	board := app.BuildLeaderboard([]domain.ScoreEntry{
		entry(1, "A", 5, 5, "Historia", 0),
		entry(2, "B", 7, 10, "Historia", 0),
		entry(3, "C", 12, 15, "Historia", 0),
		entry(4, "D", 3, 3, "Historia", 0),
		entry(5, "E", 20, 20, "Historia", 0),
	}, 5)

	require.Len(t, board.Buckets[domain.DifficultyShort][0].Scores, 2)
	require.Len(t, board.Buckets[domain.DifficultyMedium][0].Scores, 1)
	require.Len(t, board.Buckets[domain.DifficultyLong][0].Scores, 2)

	ordered := board.Ordered()
	require.Len(t, ordered, 3)
	assert.Equal(t, domain.DifficultyShort, ordered[0].Difficulty)
	assert.Equal(t, "Lyhyt (5 kysymystä)", ordered[0].Label)
	assert.Equal(t, domain.DifficultyLong, ordered[2].Difficulty)
}

func TestLeaderboardUnknownCategoryAndOrdering(t *testing.T) {
	board := app.BuildLeaderboard([]domain.ScoreEntry{
		entry(1, "A", 5, 5, "Maantieto", 0),
		entry(2, "B", 4, 5, "", 0),
		entry(3, "C", 3, 5, "Historia", 0),
	}, 5)

	tables := board.Buckets[domain.DifficultyShort]
	require.Len(t, tables, 3)
	assert.Equal(t, []string{"Historia", "Maantieto", domain.UnknownCategory},
		[]string{tables[0].Category, tables[1].Category, tables[2].Category})
}

func TestLeaderboardCapsAfterSorting(t *testing.T) {
	var entries []domain.ScoreEntry
	for i := 0; i < 7; i++ {
		entries = append(entries, entry(int64(i+1), string(rune('A'+i)), i%6, 5, "Historia", i))
	}
	board := app.BuildLeaderboard(entries, 3)

	scores := board.Buckets[domain.DifficultyShort][0].Scores
	require.Len(t, scores, 3)
	assert.Equal(t, 5, scores[0].Score)
	assert.Equal(t, 4, scores[1].Score)
	assert.Equal(t, 3, scores[2].Score)
}

func TestLeaderboardEmptyAndInputUntouched(t *testing.T) {
	board := app.BuildLeaderboard(nil, 5)
	assert.NotNil(t, board.Buckets)
	assert.Empty(t, board.Buckets)
	assert.Empty(t, board.Ordered())

	entries := []domain.ScoreEntry{
		entry(1, "A", 1, 5, "Historia", 0),
		entry(2, "B", 5, 5, "Historia", 1),
	}
	before := append([]domain.ScoreEntry(nil), entries...)
	app.BuildLeaderboard(entries, 1)
	assert.Equal(t, before, entries)
}

func TestPercentRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 67, domain.Percent(2, 3))
	assert.Equal(t, 33, domain.Percent(1, 3))
	assert.Equal(t, 50, domain.Percent(1, 2))
	assert.Equal(t, 0, domain.Percent(0, 0))
}
