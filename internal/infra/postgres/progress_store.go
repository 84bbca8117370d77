package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"iam-academy-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProgressStore persists attempt history and badges in Postgres.
// Attempts are append-only rows ordered by a serial id; badges use the
// (module_id, badge_id) primary key with ON CONFLICT DO NOTHING so awards
// are idempotent at the database level.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) GetProgress(ctx context.Context, moduleID string) (domain.ModuleProgress, error) {
	progress := domain.ModuleProgress{ModuleID: moduleID}

	rows, err := s.pool.Query(ctx,
		`SELECT answers, correct_count, total_questions, score, passed, completed_at
		 FROM quiz_attempts WHERE module_id=$1 ORDER BY id`,
		moduleID,
	)
	if err != nil {
		return domain.ModuleProgress{}, fmt.Errorf("read attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		attempt := domain.AttemptRecord{ModuleID: moduleID}
		var answers []byte
		if err := rows.Scan(&answers, &attempt.CorrectCount, &attempt.TotalQuestions,
			&attempt.Score, &attempt.Passed, &attempt.CompletedAt); err != nil {
			return domain.ModuleProgress{}, fmt.Errorf("scan attempt: %w", err)
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
				return domain.ModuleProgress{}, fmt.Errorf("decode answers: %w", err)
			}
		}
		progress.Attempts = append(progress.Attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return domain.ModuleProgress{}, fmt.Errorf("read attempts: %w", err)
	}

	badgeRows, err := s.pool.Query(ctx,
		`SELECT badge_id FROM module_badges WHERE module_id=$1 ORDER BY badge_id`,
		moduleID,
	)
	if err != nil {
		return domain.ModuleProgress{}, fmt.Errorf("read badges: %w", err)
	}
	defer badgeRows.Close()
	for badgeRows.Next() {
		var badgeID string
		if err := badgeRows.Scan(&badgeID); err != nil {
			return domain.ModuleProgress{}, fmt.Errorf("scan badge: %w", err)
		}
		progress.Badges = append(progress.Badges, badgeID)
	}
	if err := badgeRows.Err(); err != nil {
		return domain.ModuleProgress{}, fmt.Errorf("read badges: %w", err)
	}
	return progress, nil
}

func (s *ProgressStore) RecordAttempt(ctx context.Context, moduleID string, attempt domain.AttemptRecord) error {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_attempts (module_id, answers, correct_count, total_questions, score, passed, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		moduleID, answers, attempt.CorrectCount, attempt.TotalQuestions,
		attempt.Score, attempt.Passed, attempt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (s *ProgressStore) AwardBadge(ctx context.Context, moduleID, badgeID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO module_badges (module_id, badge_id) VALUES ($1, $2)
		 ON CONFLICT (module_id, badge_id) DO NOTHING`,
		moduleID, badgeID,
	)
	if err != nil {
		return fmt.Errorf("award badge: %w", err)
	}
	return nil
}
