package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"iam-academy-service/internal/content"
	"iam-academy-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ModuleLoader loads course modules from Postgres. The quiz column holds
// authored content in either legacy shape (bare question array or
// {"questions": [...]} wrapper); it is normalized and validated here so the
// rest of the system only ever sees canonical quizzes.
type ModuleLoader struct {
	pool *pgxpool.Pool
}

func NewModuleLoader(pool *pgxpool.Pool) *ModuleLoader {
	return &ModuleLoader{pool: pool}
}

func (l *ModuleLoader) LoadModule(ctx context.Context, moduleID string) (domain.CourseModule, error) {
	var (
		title   string
		summary string
		badgeID string
		lessons []byte
		quiz    []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT title, summary, badge_id, lessons, quiz FROM course_modules WHERE id=$1`,
		moduleID,
	).Scan(&title, &summary, &badgeID, &lessons, &quiz)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CourseModule{}, domain.ErrModuleNotFound
	}
	if err != nil {
		return domain.CourseModule{}, fmt.Errorf("load module: %w", err)
	}

	module := domain.CourseModule{
		ID:      moduleID,
		Title:   title,
		Summary: summary,
		BadgeID: badgeID,
	}
	if len(lessons) > 0 {
		if err := json.Unmarshal(lessons, &module.Lessons); err != nil {
			return domain.CourseModule{}, fmt.Errorf("unmarshal lessons: %w", err)
		}
	}
	module.Quiz, err = content.ParseQuiz(moduleID, quiz)
	if err != nil {
		return domain.CourseModule{}, fmt.Errorf("parse quiz: %w", err)
	}
	return module, nil
}
