package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tietotesti/internal/domain"
)

// Store is an in-memory implementation of app.Store, used for tests and demo mode.
type Store struct {
	mu    sync.RWMutex
	clock func() time.Time

	seq        int64
	teachers   map[int64]domain.Teacher
	categories map[int64]domain.Category
	questions  map[int64]domain.Question
	scores     map[int64]domain.Score
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock allows deterministic score timestamps in tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		clock:      now,
		teachers:   make(map[int64]domain.Teacher),
		categories: make(map[int64]domain.Category),
		questions:  make(map[int64]domain.Question),
		scores:     make(map[int64]domain.Score),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) ListTeachers(_ context.Context) ([]domain.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) TeacherByUsername(_ context.Context, username string) (domain.Teacher, error) {
	username = strings.TrimSpace(username)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teachers {
		if t.Username == username {
			return t, nil
		}
	}
	return domain.Teacher{}, domain.ErrTeacherNotFound
}

func (s *Store) CreateTeacher(_ context.Context, t domain.Teacher) (domain.Teacher, error) {
	t, err := domain.NormalizeTeacher(t)
	if err != nil {
		return domain.Teacher{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.teachers {
		if existing.Username == t.Username {
			return domain.Teacher{}, domain.NewValidationError("username", "already taken")
		}
	}
	t.ID = s.nextID()
	s.teachers[t.ID] = t
	return t, nil
}

func (s *Store) ListCategories(_ context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0)
	for _, c := range s.categories {
		if filter.TeacherID != 0 && c.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	c, err := domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teachers[c.TeacherID]; !ok {
		return domain.Category{}, domain.NewValidationError("teacher_id", "unknown teacher")
	}
	c.ID = s.nextID()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	c, err := domain.NormalizeCategory(c)
	if err != nil {
		return domain.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[c.ID]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	existing.Name = c.Name
	s.categories[c.ID] = existing
	return existing, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	for qid, q := range s.questions {
		if q.CategoryID == id {
			delete(s.questions, qid)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ListQuestions(_ context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if filter.CategoryID != 0 && q.CategoryID != filter.CategoryID {
			continue
		}
		if filter.TeacherID != 0 && q.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) GetQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[q.CategoryID]; !ok {
		return domain.Question{}, domain.NewValidationError("category_id", "unknown category")
	}
	q.ID = s.nextID()
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) UpdateQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	q, err := domain.NormalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.questions[q.ID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	q.CategoryID = existing.CategoryID
	q.TeacherID = existing.TeacherID
	s.questions[q.ID] = q
	return q, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *Store) InsertScore(_ context.Context, sc domain.Score) (domain.Score, error) {
	sc, err := domain.NormalizeScore(sc)
	if err != nil {
		return domain.Score{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = s.nextID()
	sc.CreatedAt = s.clock().UTC()
	s.scores[sc.ID] = sc
	return sc, nil
}

func (s *Store) ListScores(_ context.Context, filter domain.ScoreFilter) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Score, 0)
	for _, sc := range s.scores {
		if filter.CategoryID != 0 && sc.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultScoreLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
