package app

import (
	"context"
	"errors"

	"tietotesti/internal/domain"

	"github.com/sirupsen/logrus"
)

// QuestionCounts are the quiz lengths a player can pick.
var QuestionCounts = []int{5, 10, 15}

// GameService contains the player-facing use cases.
type GameService struct {
	teachers   TeacherRepository
	categories CategoryRepository
	questions  QuestionRepository
	scores     ScoreRepository
	names      CategoryNames
	log        logrus.FieldLogger
	sessionOpt []SessionOption
}

func NewGameService(store Store, names CategoryNames, log logrus.FieldLogger, opts ...SessionOption) *GameService {
	return &GameService{
		teachers:   store,
		categories: store,
		questions:  store,
		scores:     store,
		names:      names,
		log:        log,
		sessionOpt: opts,
	}
}

// Teachers lists teachers ordered by username.
func (s *GameService) Teachers(ctx context.Context) ([]domain.Teacher, error) {
	return s.teachers.ListTeachers(ctx)
}

// Categories lists a teacher's categories ordered by name.
func (s *GameService) Categories(ctx context.Context, teacherID int64) ([]domain.Category, error) {
	if teacherID <= 0 {
		return nil, domain.NewValidationError("teacher_id", "is required")
	}
	return s.categories.ListCategories(ctx, domain.CategoryFilter{TeacherID: teacherID})
}

// Questions lists a category's questions with the answer key stripped.
func (s *GameService) Questions(ctx context.Context, filter domain.QuestionFilter) ([]domain.PublicQuestion, error) {
	if filter.CategoryID <= 0 {
		return nil, domain.NewValidationError("category_id", "is required")
	}
	questions, err := s.questions.ListQuestions(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicQuestion, len(questions))
	for i, q := range questions {
		out[i] = q.Public()
	}
	return out, nil
}

// GameRequest is the player's pick on the start screen.
type GameRequest struct {
	TeacherID  int64
	CategoryID int64
	Count      int
}

// StartGame loads the question pool of a teacher's category and starts a session.
func (s *GameService) StartGame(ctx context.Context, req GameRequest) (*Session, error) {
	if req.TeacherID <= 0 {
		return nil, domain.NewValidationError("teacher", "is required")
	}
	if req.CategoryID <= 0 {
		return nil, domain.NewValidationError("category", "is required")
	}
	if !validCount(req.Count) {
		return nil, domain.NewValidationError("count", "must be one of 5, 10 or 15")
	}

	pool, err := s.questions.ListQuestions(ctx, domain.QuestionFilter{
		CategoryID: req.CategoryID,
		TeacherID:  req.TeacherID,
	})
	if err != nil {
		return nil, err
	}

	session, err := StartSession(pool, req.Count, s.sessionOpt...)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"teacher_id":  req.TeacherID,
		"category_id": req.CategoryID,
		"pool":        len(pool),
		"selected":    session.Snapshot().Total,
	}).Debug("game started")
	return session, nil
}

// ScoreSubmission is posted by the results screen.
type ScoreSubmission struct {
	PlayerName string `json:"player_name"`
	Score      int    `json:"score"`
	Total      int    `json:"total_questions"`
	CategoryID int64  `json:"category_id"`
}

// SaveScore validates a finished result and stores it.
func (s *GameService) SaveScore(ctx context.Context, sub ScoreSubmission) (domain.Score, error) {
	score, err := domain.NormalizeScore(domain.Score{
		PlayerName:     sub.PlayerName,
		Score:          sub.Score,
		TotalQuestions: sub.Total,
		CategoryID:     sub.CategoryID,
	})
	if err != nil {
		return domain.Score{}, err
	}

	if _, err := s.categories.GetCategory(ctx, score.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Score{}, domain.NewValidationError("category_id", "unknown category")
		}
		return domain.Score{}, err
	}

	saved, err := s.scores.InsertScore(ctx, score)
	if err != nil {
		return domain.Score{}, err
	}
	s.log.WithFields(logrus.Fields{
		"score_id":    saved.ID,
		"category_id": saved.CategoryID,
		"score":       saved.Score,
		"total":       saved.TotalQuestions,
	}).Info("score saved")
	return saved, nil
}

// SaveSessionScore posts the final score of a completed session. Each
// session is recorded at most once; a failed insert may be retried.
func (s *GameService) SaveSessionScore(ctx context.Context, session *Session, playerName string, categoryID int64) (domain.Score, error) {
	score, total, err := session.FinalScore()
	if err != nil {
		return domain.Score{}, err
	}
	if session.saved {
		return domain.Score{}, domain.ErrScoreAlreadySaved
	}
	saved, err := s.SaveScore(ctx, ScoreSubmission{
		PlayerName: playerName,
		Score:      score,
		Total:      total,
		CategoryID: categoryID,
	})
	if err != nil {
		return domain.Score{}, err
	}
	session.saved = true
	return saved, nil
}

// LeaderboardQuery narrows the scores fed into the leaderboard.
type LeaderboardQuery struct {
	CategoryID int64
	Limit      int
	BucketCap  int
}

// Scores lists raw scores, best first.
func (s *GameService) Scores(ctx context.Context, q LeaderboardQuery) ([]domain.ScoreEntry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = domain.DefaultScoreLimit
	}
	scores, err := s.scores.ListScores(ctx, domain.ScoreFilter{CategoryID: q.CategoryID, Limit: limit})
	if err != nil {
		return nil, err
	}
	names, err := s.names.CategoryNames(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ScoreEntry, len(scores))
	for i, sc := range scores {
		name, ok := names[sc.CategoryID]
		if !ok {
			name = domain.UnknownCategory
		}
		entries[i] = domain.ScoreEntry{Score: sc, CategoryName: name}
	}
	return entries, nil
}

// Leaderboard fetches scores and shapes them for display.
func (s *GameService) Leaderboard(ctx context.Context, q LeaderboardQuery) (domain.Leaderboard, error) {
	entries, err := s.Scores(ctx, q)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return BuildLeaderboard(entries, q.BucketCap), nil
}

func validCount(n int) bool {
	for _, c := range QuestionCounts {
		if c == n {
			return true
		}
	}
	return false
}
