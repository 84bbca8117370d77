package app

import (
	"context"
	"time"

	"iam-academy-service/internal/domain"
)

// DefaultPassingScore is the percentage threshold for passing a quiz and
// earning the module's badge.
const DefaultPassingScore = 80

// ProgressStore abstracts how attempt history and badges are persisted
// (in-memory, Redis, Postgres). The session layer only ever reads aggregate
// progress and appends to it; records are never mutated or deleted here.
type ProgressStore interface {
	// GetProgress returns all recorded attempts (insertion order, most
	// recent last) and earned badges for a module.
	GetProgress(ctx context.Context, moduleID string) (domain.ModuleProgress, error)
	// RecordAttempt appends a finished attempt to the module's history.
	RecordAttempt(ctx context.Context, moduleID string, attempt domain.AttemptRecord) error
	// AwardBadge grants a badge for a module. Awarding an already-held
	// badge is a no-op, not an error.
	AwardBadge(ctx context.Context, moduleID, badgeID string) error
}

// ModuleRepository loads course module content (from cache/backing store).
type ModuleRepository interface {
	GetModule(ctx context.Context, moduleID string) (domain.CourseModule, error)
}

// QuizService starts quiz sessions against loaded course content.
type QuizService struct {
	modules      ModuleRepository
	progress     ProgressStore
	passingScore int
	now          func() time.Time
}

func NewQuizService(modules ModuleRepository, progress ProgressStore, passingScore int) *QuizService {
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}
	return &QuizService{
		modules:      modules,
		progress:     progress,
		passingScore: passingScore,
		now:          time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(modules ModuleRepository, progress ProgressStore, passingScore int, now func() time.Time) *QuizService {
	s := NewQuizService(modules, progress, passingScore)
	s.now = now
	return s
}

// PassingScore returns the configured pass threshold.
func (s *QuizService) PassingScore() int {
	return s.passingScore
}

// GetModule exposes module content lookup to the transport layer.
func (s *QuizService) GetModule(ctx context.Context, moduleID string) (domain.CourseModule, error) {
	return s.modules.GetModule(ctx, moduleID)
}

// StartSession loads the module and its persisted progress and returns a
// fresh attempt session positioned at the first question. The progress read
// establishes the pre-attempt best score used later for best-score
// comparison.
func (s *QuizService) StartSession(ctx context.Context, moduleID string) (*QuizSession, error) {
	module, err := s.modules.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if len(module.Quiz.Questions) == 0 {
		return nil, domain.ErrQuizNotFound
	}

	history, err := s.progress.GetProgress(ctx, moduleID)
	if err != nil {
		// A failed read degrades displayed history, not the attempt itself.
		history = domain.ModuleProgress{ModuleID: moduleID}
	}

	return &QuizSession{
		module:       module,
		progress:     s.progress,
		passingScore: s.passingScore,
		now:          s.now,
		selected:     make(map[int]int),
		history:      history,
	}, nil
}
