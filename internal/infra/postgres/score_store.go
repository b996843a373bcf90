package postgres

import (
	"context"
	"fmt"

	"tietotesti/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore reads and writes leaderboard rows with plain SQL on a pgx pool.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) InsertScore(ctx context.Context, sc domain.Score) (domain.Score, error) {
	sc, err := domain.NormalizeScore(sc)
	if err != nil {
		return domain.Score{}, err
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO scores (player_name, score, total_questions, category_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		sc.PlayerName, sc.Score, sc.TotalQuestions, sc.CategoryID)
	if err := row.Scan(&sc.ID, &sc.CreatedAt); err != nil {
		return domain.Score{}, normalize("insert score", err, nil)
	}
	sc.CreatedAt = sc.CreatedAt.UTC()
	return sc, nil
}

func (s *ScoreStore) ListScores(ctx context.Context, filter domain.ScoreFilter) ([]domain.Score, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultScoreLimit
	}

	query := `SELECT id, player_name, score, total_questions, category_id, created_at FROM scores`
	args := []any{}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" WHERE category_id = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY score DESC, created_at ASC, id ASC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, normalize("list scores", err, nil)
	}
	defer rows.Close()

	out := make([]domain.Score, 0)
	for rows.Next() {
		var sc domain.Score
		if err := rows.Scan(&sc.ID, &sc.PlayerName, &sc.Score, &sc.TotalQuestions, &sc.CategoryID, &sc.CreatedAt); err != nil {
			return nil, normalize("scan score", err, nil)
		}
		sc.CreatedAt = sc.CreatedAt.UTC()
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, normalize("list scores", err, nil)
	}
	return out, nil
}
