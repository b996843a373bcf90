package postgres

import (
	"context"
	"database/sql"

	"tietotesti/internal/domain"

	"github.com/uptrace/bun"
)

// CatalogStore keeps teachers, categories and questions through bun.
type CatalogStore struct {
	db *bun.DB
}

func NewCatalogStore(db *bun.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	var rows []teacherRow
	if err := s.db.NewSelect().Model(&rows).Order("username ASC").Scan(ctx); err != nil {
		return nil, normalize("list teachers", err, nil)
	}
	out := make([]domain.Teacher, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *CatalogStore) TeacherByUsername(ctx context.Context, username string) (domain.Teacher, error) {
	var row teacherRow
	err := s.db.NewSelect().Model(&row).Where("username = ?", username).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Teacher{}, normalize("load teacher", err, domain.ErrTeacherNotFound)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) CreateTeacher(ctx context.Context, t domain.Teacher) (domain.Teacher, error) {
	t, err := domain.NormalizeTeacher(t)
	if err != nil {
		return domain.Teacher{}, err
	}
	row := teacherRow{Username: t.Username, PasswordHash: t.PasswordHash}
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.Teacher{}, normalize("create teacher", err, nil)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	var rows []categoryRow
	q := s.db.NewSelect().Model(&rows).Order("name ASC", "id ASC")
	if filter.TeacherID != 0 {
		q = q.Where("teacher_id = ?", filter.TeacherID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, normalize("list categories", err, nil)
	}
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *CatalogStore) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	row := categoryRow{ID: id}
	if err := s.db.NewSelect().Model(&row).WherePK().Scan(ctx); err != nil {
		return domain.Category{}, normalize("load category", err, domain.ErrCategoryNotFound)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c, err := domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	row := categoryRow{Name: c.Name, TeacherID: c.TeacherID}
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.Category{}, normalize("create category", err, nil)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c, err := domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	row := categoryRow{ID: c.ID, Name: c.Name}
	err = s.db.NewUpdate().Model(&row).Column("name").WherePK().Returning("*").Scan(ctx)
	if err != nil {
		return domain.Category{}, normalize("update category", err, domain.ErrCategoryNotFound)
	}
	return row.toDomain(), nil
}

// DeleteCategory removes the category and its questions in one transaction.
func (s *CatalogStore) DeleteCategory(ctx context.Context, id int64) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("category_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*categoryRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		return requireRow(res, domain.ErrCategoryNotFound)
	})
	return normalize("delete category", err, nil)
}

func (s *CatalogStore) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	var rows []questionRow
	q := s.db.NewSelect().Model(&rows).Order("id ASC")
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.TeacherID != 0 {
		q = q.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, normalize("list questions", err, nil)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *CatalogStore) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	row := questionRow{ID: id}
	if err := s.db.NewSelect().Model(&row).WherePK().Scan(ctx); err != nil {
		return domain.Question{}, normalize("load question", err, domain.ErrQuestionNotFound)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	row := newQuestionRow(q)
	row.ID = 0
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		return domain.Question{}, normalize("create question", err, nil)
	}
	return row.toDomain(), nil
}

// UpdateQuestion rewrites the text, options and answer key. Category and
// owner stay as stored.
func (s *CatalogStore) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	row := newQuestionRow(q)
	err = s.db.NewUpdate().
		Model(&row).
		Column("question", "option_a", "option_b", "option_c", "option_d", "correct_option").
		WherePK().
		Returning("*").
		Scan(ctx)
	if err != nil {
		return domain.Question{}, normalize("update question", err, domain.ErrQuestionNotFound)
	}
	return row.toDomain(), nil
}

func (s *CatalogStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return normalize("delete question", err, nil)
	}
	return normalize("delete question", requireRow(res, domain.ErrQuestionNotFound), nil)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
