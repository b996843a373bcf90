package app_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"tietotesti/internal/app"
	"tietotesti/internal/domain"
	"tietotesti/internal/infra/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type world struct {
	store    *memory.Store
	names    *memory.CategoryNameCache
	teacher  domain.Teacher
	category domain.Category
}

// newWorld seeds a teacher with one category holding n questions whose
// correct answer is A.
func newWorld(t *testing.T, n int) *world {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	teacher, err := store.CreateTeacher(ctx, domain.Teacher{Username: "opettaja", PasswordHash: "hash"})
	require.NoError(t, err)
	category, err := store.CreateCategory(ctx, domain.Category{Name: "Historia", TeacherID: teacher.ID})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		_, err := store.CreateQuestion(ctx, domain.Question{
			CategoryID: category.ID,
			TeacherID:  teacher.ID,
			Text:       fmt.Sprintf("Kysymys %d?", i+1),
			OptionA:    "oikein",
			OptionB:    "väärin",
			OptionC:    "väärin",
			OptionD:    "väärin",
			Correct:    domain.ChoiceA,
		})
		require.NoError(t, err)
	}
	return &world{
		store:    store,
		names:    memory.NewCategoryNameCache(store, time.Minute),
		teacher:  teacher,
		category: category,
	}
}

func (w *world) game(opts ...app.SessionOption) *app.GameService {
	return app.NewGameService(w.store, w.names, quietLogger(), opts...)
}

func (w *world) workspace(identity domain.Identity) *app.TeacherWorkspace {
	return app.NewTeacherWorkspace(w.store, w.names, identity, quietLogger())
}
