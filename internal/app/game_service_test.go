package app_test

import (
	"context"
	"errors"
	"testing"

	"tietotesti/internal/app"
	"tietotesti/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingNames struct{ err error }

func (f failingNames) CategoryNames(context.Context) (map[int64]string, error) { return nil, f.err }
func (f failingNames) Invalidate(context.Context)                              {}

func TestStartGameValidatesRequest(t *testing.T) {
	w := newWorld(t, 8)
	game := w.game(seeded(1))
	ctx := context.Background()

	_, err := game.StartGame(ctx, app.GameRequest{CategoryID: w.category.ID, Count: 5})
	assert.True(t, domain.IsValidation(err))
	_, err = game.StartGame(ctx, app.GameRequest{TeacherID: w.teacher.ID, Count: 5})
	assert.True(t, domain.IsValidation(err))
	_, err = game.StartGame(ctx, app.GameRequest{TeacherID: w.teacher.ID, CategoryID: w.category.ID, Count: 7})
	assert.True(t, domain.IsValidation(err))

	session, err := game.StartGame(ctx, app.GameRequest{TeacherID: w.teacher.ID, CategoryID: w.category.ID, Count: 15})
	require.NoError(t, err)
	assert.Equal(t, 8, session.Snapshot().Total)

	_, err = game.StartGame(ctx, app.GameRequest{TeacherID: w.teacher.ID + 100, CategoryID: w.category.ID, Count: 5})
	assert.ErrorIs(t, err, domain.ErrEmptyPool)
}

func TestCategoriesAndQuestionsForPlayers(t *testing.T) {
	w := newWorld(t, 3)
	game := w.game()
	ctx := context.Background()

	categories, err := game.Categories(ctx, w.teacher.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	_, err = game.Categories(ctx, 0)
	assert.True(t, domain.IsValidation(err))

	questions, err := game.Questions(ctx, domain.QuestionFilter{CategoryID: w.category.ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Len(t, questions[0].Options, 4)

	_, err = game.Questions(ctx, domain.QuestionFilter{})
	assert.True(t, domain.IsValidation(err))
}

func TestSaveScoreValidation(t *testing.T) {
	w := newWorld(t, 1)
	game := w.game()
	ctx := context.Background()

	saved, err := game.SaveScore(ctx, app.ScoreSubmission{PlayerName: "  Aino ", Score: 4, Total: 5, CategoryID: w.category.ID})
	require.NoError(t, err)
	assert.Equal(t, "Aino", saved.PlayerName)
	assert.NotZero(t, saved.ID)

	for _, bad := range []app.ScoreSubmission{
		{PlayerName: "", Score: 1, Total: 5, CategoryID: w.category.ID},
		{PlayerName: "Aino", Score: 6, Total: 5, CategoryID: w.category.ID},
		{PlayerName: "Aino", Score: -1, Total: 5, CategoryID: w.category.ID},
		{PlayerName: "Aino", Score: 0, Total: 0, CategoryID: w.category.ID},
		{PlayerName: "Aino", Score: 1, Total: 5, CategoryID: 9999},
	} {
		_, err := game.SaveScore(ctx, bad)
		assert.True(t, domain.IsValidation(err), "submission %+v: %v", bad, err)
	}
}

func TestSaveSessionScoreRequiresCompletion(t *testing.T) {
	w := newWorld(t, 5)
	game := w.game(seeded(2))
	ctx := context.Background()

	session, err := game.StartGame(ctx, app.GameRequest{TeacherID: w.teacher.ID, CategoryID: w.category.ID, Count: 5})
	require.NoError(t, err)
	_, err = game.SaveSessionScore(ctx, session, "Aino", w.category.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotCompleted)

	for !session.IsComplete() {
		playAnswer(t, session, domain.ChoiceA)
	}
	saved, err := game.SaveSessionScore(ctx, session, "Aino", w.category.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, saved.Score)
	assert.Equal(t, 5, saved.TotalQuestions)
}

func TestSaveSessionScoreOnlyOnce(t *testing.T) {
	w := newWorld(t, 5)
	game := w.game(seeded(3))
	ctx := context.Background()

	session, err := game.StartGame(ctx, app.GameRequest{TeacherID: w.teacher.ID, CategoryID: w.category.ID, Count: 5})
	require.NoError(t, err)
	for !session.IsComplete() {
		playAnswer(t, session, domain.ChoiceA)
	}

	_, err = game.SaveSessionScore(ctx, session, "   ", w.category.ID)
	require.True(t, domain.IsValidation(err), "blank name: %v", err)

	_, err = game.SaveSessionScore(ctx, session, "Aino", w.category.ID)
	require.NoError(t, err)
	_, err = game.SaveSessionScore(ctx, session, "Aino", w.category.ID)
	assert.ErrorIs(t, err, domain.ErrScoreAlreadySaved)
	assert.True(t, domain.IsMisuse(err))

	scores, err := w.store.ListScores(ctx, domain.ScoreFilter{})
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestLeaderboardResolvesNamesAndUnknown(t *testing.T) {
	w := newWorld(t, 1)
	game := w.game()
	ctx := context.Background()

	_, err := game.SaveScore(ctx, app.ScoreSubmission{PlayerName: "Aino", Score: 5, Total: 5, CategoryID: w.category.ID})
	require.NoError(t, err)
	_, err = game.SaveScore(ctx, app.ScoreSubmission{PlayerName: "Eino", Score: 8, Total: 10, CategoryID: w.category.ID})
	require.NoError(t, err)

	board, err := game.Leaderboard(ctx, app.LeaderboardQuery{})
	require.NoError(t, err)
	require.Len(t, board.Buckets[domain.DifficultyShort], 1)
	assert.Equal(t, "Historia", board.Buckets[domain.DifficultyShort][0].Category)

	ws := w.workspace(domain.Identity{TeacherID: w.teacher.ID, Username: w.teacher.Username})
	require.NoError(t, ws.DeleteCategory(ctx, w.category.ID))

	entries, err := game.Scores(ctx, app.LeaderboardQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, domain.UnknownCategory, e.CategoryName)
	}

	filtered, err := game.Scores(ctx, app.LeaderboardQuery{CategoryID: w.category.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Eino", filtered[0].PlayerName)
}

func TestLeaderboardPropagatesCacheErrors(t *testing.T) {
	w := newWorld(t, 1)
	boom := &domain.DataAccessError{Op: "load category names", Err: errors.New("redis down")}
	game := app.NewGameService(w.store, failingNames{err: boom}, quietLogger())

	_, err := game.Leaderboard(context.Background(), app.LeaderboardQuery{})
	var dae *domain.DataAccessError
	assert.True(t, errors.As(err, &dae))
}
