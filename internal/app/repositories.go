package app

import (
	"context"

	"tietotesti/internal/domain"
)

// TeacherRepository stores teacher accounts.
type TeacherRepository interface {
	ListTeachers(ctx context.Context) ([]domain.Teacher, error)
	TeacherByUsername(ctx context.Context, username string) (domain.Teacher, error)
	CreateTeacher(ctx context.Context, t domain.Teacher) (domain.Teacher, error)
}

// CategoryRepository stores categories; deleting one removes its questions.
type CategoryRepository interface {
	ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// QuestionRepository stores questions ordered by id.
type QuestionRepository interface {
	ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id int64) (domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// ScoreRepository stores leaderboard scores. ListScores orders by score desc,
// then created_at asc.
type ScoreRepository interface {
	InsertScore(ctx context.Context, s domain.Score) (domain.Score, error)
	ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.Score, error)
}

// Store is the full data-access collaborator.
type Store interface {
	TeacherRepository
	CategoryRepository
	QuestionRepository
	ScoreRepository
	Close() error
}

// CategoryNames resolves category ids to names for leaderboard rendering.
type CategoryNames interface {
	CategoryNames(ctx context.Context) (map[int64]string, error)
	Invalidate(ctx context.Context)
}
