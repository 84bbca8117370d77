package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"iam-academy-service/internal/domain"
)

// QuizSession is the in-memory state machine for one pass through a module's
// quiz. It is pure apart from the finish sequence, which appends the attempt
// (and, on a passing score, the badge) to the ProgressStore.
//
// Per question the session moves Unanswered -> Answered -> Explained; once
// the explanation is shown the selection is locked. Advancing past the last
// question finishes the attempt. Out-of-precondition calls are deliberate
// no-ops: the UI gates them with disabled controls, but the machine must
// tolerate being called anyway.
//
// Sessions are confined to a single connection/goroutine; they do no
// internal locking.
type QuizSession struct {
	module       domain.CourseModule
	progress     ProgressStore
	passingScore int
	now          func() time.Time

	currentIndex int
	// selected is sparse: a missing key means "unanswered", which is
	// distinct from any valid option index including 0.
	selected           map[int]int
	explanationVisible bool
	completed          bool
	score              int
	isNewBest          bool

	// history is the persisted progress snapshot: read at session start,
	// refreshed after each finish.
	history domain.ModuleProgress
}

// SelectAnswer records optionIndex for the current question, replacing any
// prior selection. Ignored once the explanation is shown (the answer is
// locked) or the attempt is completed.
func (s *QuizSession) SelectAnswer(optionIndex int) {
	if s.completed || s.explanationVisible {
		return
	}
	if optionIndex < 0 || optionIndex >= len(s.currentQuestion().Options) {
		return
	}
	s.selected[s.currentIndex] = optionIndex
}

// SubmitAnswer locks in the current selection and reveals the explanation.
// A no-op when nothing has been selected yet.
func (s *QuizSession) SubmitAnswer() {
	if s.completed {
		return
	}
	if _, ok := s.selected[s.currentIndex]; !ok {
		return
	}
	s.explanationVisible = true
}

// NextQuestion advances to the next question, or finishes the attempt when
// called on the last one. It requires the current question to have been
// submitted. The returned error is only ever the non-blocking
// domain.ErrProgressNotSaved from the finish sequence; the session state is
// valid either way.
func (s *QuizSession) NextQuestion(ctx context.Context) error {
	if s.completed || !s.explanationVisible {
		return nil
	}
	if s.currentIndex < s.totalQuestions()-1 {
		s.currentIndex++
		s.explanationVisible = false
		return nil
	}
	return s.finish(ctx)
}

// PreviousQuestion moves back one question. The explanation is hidden on
// arrival; the stored selection for that question is untouched.
func (s *QuizSession) PreviousQuestion() {
	if s.completed || s.currentIndex == 0 {
		return
	}
	s.currentIndex--
	s.explanationVisible = false
}

// Retry starts a fresh attempt after completion. History accumulates; the
// previously recorded attempt is never removed.
func (s *QuizSession) Retry() {
	if !s.completed {
		return
	}
	s.currentIndex = 0
	s.selected = make(map[int]int)
	s.explanationVisible = false
	s.completed = false
	s.score = 0
	s.isNewBest = false
}

// finish scores the attempt, marks it complete, and persists the record and
// any earned badge. Persistence failure degrades durability only: the score
// stands and the session completes regardless, with the failure surfaced as
// a wrapped domain.ErrProgressNotSaved.
func (s *QuizSession) finish(ctx context.Context) error {
	total := s.totalQuestions()
	correct := 0
	answers := make(map[string]int, len(s.selected))
	for i, q := range s.module.Quiz.Questions {
		sel, ok := s.selected[i]
		if !ok {
			continue // unanswered never counts as correct
		}
		answers[questionKey(q, i)] = sel
		if sel == q.CorrectAnswerIndex {
			correct++
		}
	}

	s.score = int(math.Round(float64(correct) / float64(total) * 100))
	s.isNewBest = s.score > s.history.BestScore()
	s.completed = true

	attempt := domain.AttemptRecord{
		ModuleID:       s.module.ID,
		Answers:        answers,
		CorrectCount:   correct,
		TotalQuestions: total,
		Score:          s.score,
		Passed:         s.score >= s.passingScore,
		CompletedAt:    s.now(),
	}

	var persistErr error
	if err := s.progress.RecordAttempt(ctx, s.module.ID, attempt); err != nil {
		persistErr = err
	}
	// Record before badge: the two writes are ordered, never concurrent.
	if attempt.Passed && s.module.HasBadge() {
		if err := s.progress.AwardBadge(ctx, s.module.ID, s.module.BadgeID); err != nil && persistErr == nil {
			persistErr = err
		}
	}

	// Refresh the snapshot so best score and history reflect this attempt
	// without a reload. Best-effort: on failure we keep the stale view.
	if refreshed, err := s.progress.GetProgress(ctx, s.module.ID); err == nil {
		s.history = refreshed
	} else if persistErr == nil {
		persistErr = err
	}

	if persistErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrProgressNotSaved, persistErr)
	}
	return nil
}

// Module returns the course module this session runs against.
func (s *QuizSession) Module() domain.CourseModule {
	return s.module
}

// CurrentIndex returns the zero-based position of the current question.
func (s *QuizSession) CurrentIndex() int {
	return s.currentIndex
}

// CurrentQuestion returns the question at the current position.
func (s *QuizSession) CurrentQuestion() domain.Question {
	return s.currentQuestion()
}

// TotalQuestions returns the quiz length.
func (s *QuizSession) TotalQuestions() int {
	return s.totalQuestions()
}

// SelectedAnswer returns the recorded selection for the current question,
// and whether one exists.
func (s *QuizSession) SelectedAnswer() (int, bool) {
	sel, ok := s.selected[s.currentIndex]
	return sel, ok
}

// ExplanationVisible reports whether the current question has been submitted
// and its explanation revealed.
func (s *QuizSession) ExplanationVisible() bool {
	return s.explanationVisible
}

// Completed reports whether the attempt has finished.
func (s *QuizSession) Completed() bool {
	return s.completed
}

// Score returns the attempt score. Only meaningful once Completed is true.
func (s *QuizSession) Score() int {
	return s.score
}

// Passed reports whether the finished attempt met the passing threshold.
func (s *QuizSession) Passed() bool {
	return s.completed && s.score >= s.passingScore
}

// ProgressPercent is position-based progress through the quiz, not the
// answered count.
func (s *QuizSession) ProgressPercent() float64 {
	return float64(s.currentIndex+1) / float64(s.totalQuestions()) * 100
}

// BestScore returns the highest persisted score for this module, including
// the just-finished attempt once the post-finish refresh has run.
func (s *QuizSession) BestScore() int {
	return s.history.BestScore()
}

// IsNewBest reports whether the finished attempt strictly beat the best
// score as it stood before this attempt was recorded.
func (s *QuizSession) IsNewBest() bool {
	return s.completed && s.isNewBest
}

// PreviousAttempts returns the persisted attempt history, most recent last.
func (s *QuizSession) PreviousAttempts() []domain.AttemptRecord {
	return s.history.Attempts
}

// Badges returns the badges earned for this module.
func (s *QuizSession) Badges() []string {
	return s.history.Badges
}

func (s *QuizSession) currentQuestion() domain.Question {
	return s.module.Quiz.Questions[s.currentIndex]
}

func (s *QuizSession) totalQuestions() int {
	return len(s.module.Quiz.Questions)
}

// questionKey is the persistence key for a question's answer: the authored
// id, or the positional fallback for content that predates stable ids.
func questionKey(q domain.Question, index int) string {
	if q.ID == "" {
		return fmt.Sprintf("q-%d", index)
	}
	return q.ID
}
