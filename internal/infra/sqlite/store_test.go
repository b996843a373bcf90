package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tietotesti/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "tietotesti.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedCategory(t *testing.T, store *Store) (domain.Teacher, domain.Category) {
	t.Helper()
	ctx := context.Background()
	teacher, err := store.CreateTeacher(ctx, domain.Teacher{Username: "opettaja", PasswordHash: "hash"})
	require.NoError(t, err)
	category, err := store.CreateCategory(ctx, domain.Category{Name: "Historia", TeacherID: teacher.ID})
	require.NoError(t, err)
	return teacher, category
}

func question(teacherID, categoryID int64, text string) domain.Question {
	return domain.Question{
		CategoryID: categoryID,
		TeacherID:  teacherID,
		Text:       text,
		OptionA:    "1917",
		OptionB:    "1918",
		OptionC:    "1939",
		OptionD:    "1945",
		Correct:    domain.ChoiceA,
	}
}

func TestTeacherLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTeacher(ctx, domain.Teacher{Username: "  maija ", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "maija", created.Username)

	got, err := store.TeacherByUsername(ctx, "maija")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = store.CreateTeacher(ctx, domain.Teacher{Username: "maija", PasswordHash: "other"})
	assert.True(t, domain.IsValidation(err), "duplicate username should be a validation error, got %v", err)

	_, err = store.TeacherByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrTeacherNotFound)
}

func TestDeleteCategoryRemovesQuestions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	teacher, category := seedCategory(t, store)

	for _, text := range []string{"Milloin Suomi itsenäistyi?", "Milloin talvisota alkoi?"} {
		_, err := store.CreateQuestion(ctx, question(teacher.ID, category.ID, text))
		require.NoError(t, err)
	}
	questions, err := store.ListQuestions(ctx, domain.QuestionFilter{CategoryID: category.ID})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Less(t, questions[0].ID, questions[1].ID)

	require.NoError(t, store.DeleteCategory(ctx, category.ID))

	questions, err = store.ListQuestions(ctx, domain.QuestionFilter{CategoryID: category.ID})
	require.NoError(t, err)
	assert.Empty(t, questions)
	_, err = store.GetCategory(ctx, category.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.ErrorIs(t, store.DeleteCategory(ctx, category.ID), domain.ErrNotFound)
}

func TestUpdateQuestionKeepsOwnership(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	teacher, category := seedCategory(t, store)

	created, err := store.CreateQuestion(ctx, question(teacher.ID, category.ID, "Milloin Suomi itsenäistyi?"))
	require.NoError(t, err)

	edit := created
	edit.Text = "Minä vuonna Suomi itsenäistyi?"
	edit.Correct = domain.ChoiceB
	updated, err := store.UpdateQuestion(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "Minä vuonna Suomi itsenäistyi?", updated.Text)
	assert.Equal(t, domain.ChoiceB, updated.Correct)
	assert.Equal(t, category.ID, updated.CategoryID)

	edit.ID = 9999
	_, err = store.UpdateQuestion(ctx, edit)
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}

func TestCreateQuestionForUnknownCategory(t *testing.T) {
	store := openTestStore(t)
	teacher, _ := seedCategory(t, store)

	_, err := store.CreateQuestion(context.Background(), question(teacher.ID, 4242, "Kysymys?"))
	assert.True(t, domain.IsValidation(err), "expected foreign key violation as validation error, got %v", err)
}

func TestScoresOrderedAndSurviveCategoryDeletion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, category := seedCategory(t, store)

	base := time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, sc := range []domain.Score{
		{PlayerName: "Aino", Score: 3, TotalQuestions: 5, CategoryID: category.ID},
		{PlayerName: "Eino", Score: 5, TotalQuestions: 5, CategoryID: category.ID},
		{PlayerName: "Veera", Score: 3, TotalQuestions: 5, CategoryID: category.ID},
	} {
		_, err := store.InsertScore(ctx, sc)
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteCategory(ctx, category.ID))

	scores, err := store.ListScores(ctx, domain.ScoreFilter{})
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, []string{"Eino", "Aino", "Veera"}, []string{scores[0].PlayerName, scores[1].PlayerName, scores[2].PlayerName})
	assert.Equal(t, base.Add(2*time.Second), scores[0].CreatedAt)

	limited, err := store.ListScores(ctx, domain.ScoreFilter{CategoryID: category.ID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Eino", limited[0].PlayerName)
}

func TestInsertScoreValidates(t *testing.T) {
	store := openTestStore(t)
	_, err := store.InsertScore(context.Background(), domain.Score{PlayerName: "Aino", Score: 6, TotalQuestions: 5, CategoryID: 1})
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
}

func TestClosedStoreReportsDataAccessError(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.ListTeachers(context.Background())
	var dae *domain.DataAccessError
	assert.True(t, errors.As(err, &dae), "expected data access error, got %v", err)
}
