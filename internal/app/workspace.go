package app

import (
	"context"

	"tietotesti/internal/domain"

	"github.com/sirupsen/logrus"
)

// TeacherWorkspace is the authoring surface of one authenticated teacher.
// Every operation is limited to records that teacher owns.
type TeacherWorkspace struct {
	identity   domain.Identity
	categories CategoryRepository
	questions  QuestionRepository
	names      CategoryNames
	log        logrus.FieldLogger
}

func NewTeacherWorkspace(store Store, names CategoryNames, identity domain.Identity, log logrus.FieldLogger) *TeacherWorkspace {
	return &TeacherWorkspace{
		identity:   identity,
		categories: store,
		questions:  store,
		names:      names,
		log:        log.WithField("teacher_id", identity.TeacherID),
	}
}

// Identity returns the teacher this workspace acts for.
func (w *TeacherWorkspace) Identity() domain.Identity {
	return w.identity
}

func (w *TeacherWorkspace) Categories(ctx context.Context) ([]domain.Category, error) {
	return w.categories.ListCategories(ctx, domain.CategoryFilter{TeacherID: w.identity.TeacherID})
}

// Category returns one owned category.
func (w *TeacherWorkspace) Category(ctx context.Context, id int64) (domain.Category, error) {
	c, err := w.categories.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if c.TeacherID != w.identity.TeacherID {
		return domain.Category{}, domain.ErrForbidden
	}
	return c, nil
}

func (w *TeacherWorkspace) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	c, err := domain.NormalizeCategory(domain.Category{Name: name, TeacherID: w.identity.TeacherID})
	if err != nil {
		return domain.Category{}, err
	}
	created, err := w.categories.CreateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}
	w.names.Invalidate(ctx)
	w.log.WithField("category_id", created.ID).Info("category created")
	return created, nil
}

func (w *TeacherWorkspace) RenameCategory(ctx context.Context, id int64, name string) (domain.Category, error) {
	c, err := w.Category(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	c.Name = name
	c, err = domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	updated, err := w.categories.UpdateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, err
	}
	w.names.Invalidate(ctx)
	return updated, nil
}

// DeleteCategory removes the category together with its questions.
// Scores posted for it stay and are shown under the unknown placeholder.
func (w *TeacherWorkspace) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := w.Category(ctx, id); err != nil {
		return err
	}
	if err := w.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	w.names.Invalidate(ctx)
	w.log.WithField("category_id", id).Info("category deleted")
	return nil
}

// Questions lists the questions of an owned category.
func (w *TeacherWorkspace) Questions(ctx context.Context, categoryID int64) ([]domain.Question, error) {
	if _, err := w.Category(ctx, categoryID); err != nil {
		return nil, err
	}
	return w.questions.ListQuestions(ctx, domain.QuestionFilter{
		CategoryID: categoryID,
		TeacherID:  w.identity.TeacherID,
	})
}

func (w *TeacherWorkspace) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	if _, err := w.Category(ctx, q.CategoryID); err != nil {
		return domain.Question{}, err
	}
	q.ID = 0
	q.TeacherID = w.identity.TeacherID
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	return w.questions.CreateQuestion(ctx, q)
}

// UpdateQuestion replaces the text, options and answer key. The question
// stays in its category.
func (w *TeacherWorkspace) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	existing, err := w.ownedQuestion(ctx, q.ID)
	if err != nil {
		return domain.Question{}, err
	}
	q.CategoryID = existing.CategoryID
	q.TeacherID = existing.TeacherID
	q, err = domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	return w.questions.UpdateQuestion(ctx, q)
}

func (w *TeacherWorkspace) DeleteQuestion(ctx context.Context, id int64) error {
	if _, err := w.ownedQuestion(ctx, id); err != nil {
		return err
	}
	return w.questions.DeleteQuestion(ctx, id)
}

func (w *TeacherWorkspace) ownedQuestion(ctx context.Context, id int64) (domain.Question, error) {
	q, err := w.questions.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	if q.TeacherID != w.identity.TeacherID {
		return domain.Question{}, domain.ErrForbidden
	}
	return q, nil
}
