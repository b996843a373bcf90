// Package sqlite is a single-file backend for classroom installs without a
// Postgres server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tietotesti/internal/domain"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS teachers (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS categories (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	teacher_id INTEGER NOT NULL REFERENCES teachers (id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS questions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id    INTEGER NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
	teacher_id     INTEGER NOT NULL REFERENCES teachers (id) ON DELETE CASCADE,
	question       TEXT NOT NULL,
	option_a       TEXT NOT NULL,
	option_b       TEXT NOT NULL,
	option_c       TEXT NOT NULL,
	option_d       TEXT NOT NULL,
	correct_option TEXT NOT NULL CHECK (correct_option IN ('A', 'B', 'C', 'D'))
);
CREATE TABLE IF NOT EXISTS scores (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	player_name     TEXT    NOT NULL,
	score           INTEGER NOT NULL,
	total_questions INTEGER NOT NULL,
	category_id     INTEGER NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS scores_rank_idx ON scores (score DESC, created_at ASC);
`

// Store implements app.Store on a SQLite file through database/sql.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

// Open creates the file if needed and bootstraps the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?" + url.Values{
		"_pragma": {"foreign_keys(1)", "busy_timeout(5000)"},
	}.Encode()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	return &Store{db: db, clock: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListTeachers(ctx context.Context) ([]domain.Teacher, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, password_hash FROM teachers ORDER BY username`)
	if err != nil {
		return nil, normalize("list teachers", err, nil)
	}
	defer rows.Close()
	out := make([]domain.Teacher, 0)
	for rows.Next() {
		var t domain.Teacher
		if err := rows.Scan(&t.ID, &t.Username, &t.PasswordHash); err != nil {
			return nil, normalize("scan teacher", err, nil)
		}
		out = append(out, t)
	}
	return out, normalize("list teachers", rows.Err(), nil)
}

func (s *Store) TeacherByUsername(ctx context.Context, username string) (domain.Teacher, error) {
	var t domain.Teacher
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM teachers WHERE username = ?`,
		strings.TrimSpace(username),
	).Scan(&t.ID, &t.Username, &t.PasswordHash)
	if err != nil {
		return domain.Teacher{}, normalize("load teacher", err, domain.ErrTeacherNotFound)
	}
	return t, nil
}

func (s *Store) CreateTeacher(ctx context.Context, t domain.Teacher) (domain.Teacher, error) {
	t, err := domain.NormalizeTeacher(t)
	if err != nil {
		return domain.Teacher{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO teachers (username, password_hash) VALUES (?, ?)`, t.Username, t.PasswordHash)
	if err != nil {
		return domain.Teacher{}, normalize("create teacher", err, nil)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return domain.Teacher{}, normalize("create teacher", err, nil)
	}
	return t, nil
}

func (s *Store) ListCategories(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	query := `SELECT id, name, teacher_id FROM categories`
	var args []any
	if filter.TeacherID != 0 {
		query += ` WHERE teacher_id = ?`
		args = append(args, filter.TeacherID)
	}
	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, normalize("list categories", err, nil)
	}
	defer rows.Close()
	out := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.TeacherID); err != nil {
			return nil, normalize("scan category", err, nil)
		}
		out = append(out, c)
	}
	return out, normalize("list categories", rows.Err(), nil)
}

func (s *Store) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, teacher_id FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.TeacherID)
	if err != nil {
		return domain.Category{}, normalize("load category", err, domain.ErrCategoryNotFound)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c, err := domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, teacher_id) VALUES (?, ?)`, c.Name, c.TeacherID)
	if err != nil {
		return domain.Category{}, normalize("create category", err, nil)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return domain.Category{}, normalize("create category", err, nil)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c, err := domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, c.Name, c.ID)
	if err != nil {
		return domain.Category{}, normalize("update category", err, nil)
	}
	if err := requireRow(res, domain.ErrCategoryNotFound); err != nil {
		return domain.Category{}, normalize("update category", err, nil)
	}
	return s.GetCategory(ctx, c.ID)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return normalize("delete category", err, nil)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE category_id = ?`, id); err != nil {
		return normalize("delete category", err, nil)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return normalize("delete category", err, nil)
	}
	if err := requireRow(res, domain.ErrCategoryNotFound); err != nil {
		return normalize("delete category", err, nil)
	}
	return normalize("delete category", tx.Commit(), nil)
}

const questionColumns = `id, category_id, teacher_id, question, option_a, option_b, option_c, option_d, correct_option`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (domain.Question, error) {
	var (
		q       domain.Question
		correct string
	)
	err := row.Scan(&q.ID, &q.CategoryID, &q.TeacherID, &q.Text,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &correct)
	q.Correct = domain.Choice(correct)
	return q, err
}

func (s *Store) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	var (
		where []string
		args  []any
	)
	if filter.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.TeacherID != 0 {
		where = append(where, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, normalize("list questions", err, nil)
	}
	defer rows.Close()
	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, normalize("scan question", err, nil)
		}
		out = append(out, q)
	}
	return out, normalize("list questions", rows.Err(), nil)
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (domain.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, normalize("load question", err, domain.ErrQuestionNotFound)
	}
	return q, nil
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (category_id, teacher_id, question, option_a, option_b, option_c, option_d, correct_option)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.CategoryID, q.TeacherID, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.Correct))
	if err != nil {
		return domain.Question{}, normalize("create question", err, nil)
	}
	if q.ID, err = res.LastInsertId(); err != nil {
		return domain.Question{}, normalize("create question", err, nil)
	}
	return q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions
		 SET question = ?, option_a = ?, option_b = ?, option_c = ?, option_d = ?, correct_option = ?
		 WHERE id = ?`,
		q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, string(q.Correct), q.ID)
	if err != nil {
		return domain.Question{}, normalize("update question", err, nil)
	}
	if err := requireRow(res, domain.ErrQuestionNotFound); err != nil {
		return domain.Question{}, normalize("update question", err, nil)
	}
	return s.GetQuestion(ctx, q.ID)
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return normalize("delete question", err, nil)
	}
	return normalize("delete question", requireRow(res, domain.ErrQuestionNotFound), nil)
}

func (s *Store) InsertScore(ctx context.Context, sc domain.Score) (domain.Score, error) {
	sc, err := domain.NormalizeScore(sc)
	if err != nil {
		return domain.Score{}, err
	}
	sc.CreatedAt = s.clock().UTC().Truncate(time.Millisecond)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (player_name, score, total_questions, category_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		sc.PlayerName, sc.Score, sc.TotalQuestions, sc.CategoryID, sc.CreatedAt.UnixMilli())
	if err != nil {
		return domain.Score{}, normalize("insert score", err, nil)
	}
	if sc.ID, err = res.LastInsertId(); err != nil {
		return domain.Score{}, normalize("insert score", err, nil)
	}
	return sc, nil
}

func (s *Store) ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.Score, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultScoreLimit
	}
	query := `SELECT id, player_name, score, total_questions, category_id, created_at FROM scores`
	var args []any
	if filter.CategoryID != 0 {
		query += ` WHERE category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY score DESC, created_at ASC, id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, normalize("list scores", err, nil)
	}
	defer rows.Close()
	out := make([]domain.Score, 0)
	for rows.Next() {
		var (
			sc      domain.Score
			created int64
		)
		if err := rows.Scan(&sc.ID, &sc.PlayerName, &sc.Score, &sc.TotalQuestions, &sc.CategoryID, &created); err != nil {
			return nil, normalize("scan score", err, nil)
		}
		sc.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sc)
	}
	return out, normalize("list scores", rows.Err(), nil)
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

func normalize(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return domain.NewValidationError("", "record already exists")
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return domain.NewValidationError("", "referenced record does not exist")
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return domain.NewValidationError("", "value out of range")
		}
	}
	return domain.WrapDataAccess(op, err)
}
