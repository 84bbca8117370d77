package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"iam-academy-service/internal/app"
	"iam-academy-service/internal/domain"
	"iam-academy-service/internal/infra/memory"
)

func TestFinishScoresAndAwardsBadgeAtThreshold(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, nil)

	session := startSession(t, service, "iam-101")
	// Correct answers are [0,1,0,0,3]; answering [0,1,2,0,3] gets 4 of 5.
	if err := answerAll(ctx, t, session, []int{0, 1, 2, 0, 3}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if !session.Completed() {
		t.Fatalf("expected completed session")
	}
	if session.Score() != 80 {
		t.Fatalf("expected score 80, got %d", session.Score())
	}
	if !session.Passed() {
		t.Fatalf("expected pass at threshold 80")
	}

	progress, _ := store.GetProgress(ctx, "iam-101")
	if len(progress.Attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(progress.Attempts))
	}
	attempt := progress.Attempts[0]
	if attempt.CorrectCount != 4 || attempt.TotalQuestions != 5 || !attempt.Passed {
		t.Fatalf("unexpected attempt record: %+v", attempt)
	}
	if !progress.HasBadge("badge-iam-101") {
		t.Fatalf("expected badge awarded, got %v", progress.Badges)
	}
}

func TestFinishBelowThresholdAwardsNoBadge(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, nil)

	session := startSession(t, service, "iam-101")
	// Three of five correct: 60%.
	if err := answerAll(ctx, t, session, []int{0, 1, 2, 1, 3}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if session.Score() != 60 {
		t.Fatalf("expected score 60, got %d", session.Score())
	}
	if session.Passed() {
		t.Fatalf("expected fail below threshold")
	}

	progress, _ := store.GetProgress(ctx, "iam-101")
	if len(progress.Badges) != 0 {
		t.Fatalf("expected no badge on failing score, got %v", progress.Badges)
	}
	if len(progress.Attempts) != 1 {
		t.Fatalf("failing attempts are still recorded, got %d", len(progress.Attempts))
	}
}

func TestModuleWithoutBadgeNeverAwards(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, nil)

	session := startSession(t, service, "no-badge")
	if err := answerAll(ctx, t, session, []int{1, 1}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if session.Score() != 100 || !session.Passed() {
		t.Fatalf("expected perfect pass, got score %d", session.Score())
	}

	progress, _ := store.GetProgress(ctx, "no-badge")
	if len(progress.Badges) != 0 {
		t.Fatalf("module declares no badge, got %v", progress.Badges)
	}
}

func TestScoreRoundsToNearest(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, nil)

	session := startSession(t, service, "three-questions")
	// Two of three correct: 66.67 rounds to 67.
	if err := answerAll(ctx, t, session, []int{1, 1, 0}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if session.Score() != 67 {
		t.Fatalf("expected rounded score 67, got %d", session.Score())
	}
}

func TestSelectAnswerReplacesUntilSubmitted(t *testing.T) {
	service, _ := newTestService(t, nil)
	session := startSession(t, service, "iam-101")

	session.SelectAnswer(2)
	session.SelectAnswer(0) // re-selecting before submit replaces the choice
	if sel, ok := session.SelectedAnswer(); !ok || sel != 0 {
		t.Fatalf("expected last selection 0, got %d (present=%v)", sel, ok)
	}

	session.SubmitAnswer()
	if !session.ExplanationVisible() {
		t.Fatalf("expected explanation after submit")
	}
	session.SelectAnswer(3) // locked once explained
	if sel, _ := session.SelectedAnswer(); sel != 0 {
		t.Fatalf("expected selection locked at 0 after submit, got %d", sel)
	}
}

func TestSubmitWithoutSelectionIsNoOp(t *testing.T) {
	service, _ := newTestService(t, nil)
	session := startSession(t, service, "iam-101")

	session.SubmitAnswer()
	if session.ExplanationVisible() {
		t.Fatalf("submit with no selection must not reveal explanation")
	}
}

func TestNextRequiresSubmittedAnswer(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, nil)
	session := startSession(t, service, "iam-101")

	session.SelectAnswer(0)
	if err := session.NextQuestion(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if session.CurrentIndex() != 0 {
		t.Fatalf("advancing without submit must be a no-op, index=%d", session.CurrentIndex())
	}
}

func TestPreviousQuestionKeepsSelection(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, nil)
	session := startSession(t, service, "iam-101")

	session.PreviousQuestion() // at index 0: no-op
	if session.CurrentIndex() != 0 {
		t.Fatalf("expected index pinned at 0, got %d", session.CurrentIndex())
	}

	session.SelectAnswer(0)
	session.SubmitAnswer()
	if err := session.NextQuestion(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if session.CurrentIndex() != 1 {
		t.Fatalf("expected index 1, got %d", session.CurrentIndex())
	}

	session.PreviousQuestion()
	if session.CurrentIndex() != 0 {
		t.Fatalf("expected index 0 after back, got %d", session.CurrentIndex())
	}
	if session.ExplanationVisible() {
		t.Fatalf("explanation must be hidden on arrival")
	}
	if sel, ok := session.SelectedAnswer(); !ok || sel != 0 {
		t.Fatalf("stored selection must survive navigation, got %d (present=%v)", sel, ok)
	}
}

func TestProgressPercentTracksPosition(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, nil)
	session := startSession(t, service, "iam-101")

	if got := session.ProgressPercent(); got != 20 {
		t.Fatalf("expected 20%% at first question, got %v", got)
	}
	session.SelectAnswer(0)
	session.SubmitAnswer()
	_ = session.NextQuestion(ctx)
	if got := session.ProgressPercent(); got != 40 {
		t.Fatalf("expected 40%% at second question, got %v", got)
	}
}

func TestRetryResetsStateAndKeepsHistory(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, nil)
	session := startSession(t, service, "iam-101")

	session.Retry() // not completed yet: no-op
	if session.Completed() || session.CurrentIndex() != 0 {
		t.Fatalf("retry before completion must be a no-op")
	}

	if err := answerAll(ctx, t, session, []int{0, 1, 0, 0, 3}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if session.Score() != 100 {
		t.Fatalf("expected 100, got %d", session.Score())
	}

	session.Retry()
	if session.Completed() {
		t.Fatalf("expected in-progress after retry")
	}
	if session.CurrentIndex() != 0 || session.ExplanationVisible() || session.Score() != 0 {
		t.Fatalf("expected clean state after retry")
	}
	if _, ok := session.SelectedAnswer(); ok {
		t.Fatalf("expected answers cleared after retry")
	}

	if err := answerAll(ctx, t, session, []int{1, 1, 1, 1, 1}); err != nil {
		t.Fatalf("second finish: %v", err)
	}
	progress, _ := store.GetProgress(ctx, "iam-101")
	if len(progress.Attempts) != 2 {
		t.Fatalf("history accumulates, expected 2 attempts, got %d", len(progress.Attempts))
	}
	if progress.Attempts[0].Score != 100 || progress.Attempts[1].Score != 20 {
		t.Fatalf("expected most-recent-last history, got %+v", progress.Attempts)
	}
}

func TestAnswersKeyedWithPositionalFallback(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, nil)

	session := startSession(t, service, "legacy-ids")
	if err := answerAll(ctx, t, session, []int{0, 0, 1}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	progress, _ := store.GetProgress(ctx, "legacy-ids")
	answers := progress.Attempts[0].Answers
	if _, ok := answers["first"]; !ok {
		t.Fatalf("expected authored id preserved, got %v", answers)
	}
	// The question at position 2 has no authored id.
	if got, ok := answers["q-2"]; !ok || got != 1 {
		t.Fatalf("expected fallback key q-2 -> 1, got %v", answers)
	}
}

func TestIsNewBestComparesAgainstPriorBest(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProgressStore()
	_ = store.RecordAttempt(ctx, "four-questions", domain.AttemptRecord{ModuleID: "four-questions", Score: 70})
	service, _ := newTestService(t, store)

	session := startSession(t, service, "four-questions")
	if session.BestScore() != 70 {
		t.Fatalf("expected prior best 70, got %d", session.BestScore())
	}

	// Three of four correct: 75, strictly above the prior 70.
	if err := answerAll(ctx, t, session, []int{0, 0, 0, 1}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !session.IsNewBest() {
		t.Fatalf("75 > 70 should be a new best")
	}
	if session.BestScore() != 75 {
		t.Fatalf("best score should reflect the new attempt, got %d", session.BestScore())
	}

	// Equal score is not a new best: comparison is strictly greater.
	session.Retry()
	if err := answerAll(ctx, t, session, []int{0, 0, 0, 1}); err != nil {
		t.Fatalf("second finish: %v", err)
	}
	if session.IsNewBest() {
		t.Fatalf("matching the best must not count as a new best")
	}
}

func TestPersistFailureStillCompletesAttempt(t *testing.T) {
	ctx := context.Background()
	failing := &failingStore{ProgressStore: memory.NewProgressStore()}
	service, _ := newTestService(t, failing)

	session := startSession(t, service, "iam-101")
	err := answerAll(ctx, t, session, []int{0, 1, 0, 0, 3})
	if !errors.Is(err, domain.ErrProgressNotSaved) {
		t.Fatalf("expected ErrProgressNotSaved, got %v", err)
	}
	if !session.Completed() {
		t.Fatalf("persistence failure must not block completion")
	}
	if session.Score() != 100 {
		t.Fatalf("score must still be computed, got %d", session.Score())
	}
}

func TestStartSessionUnknownModule(t *testing.T) {
	service, _ := newTestService(t, nil)
	if _, err := service.StartSession(context.Background(), "missing"); err != domain.ErrModuleNotFound {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

// answerAll drives the session through every question: select, submit, next.
// The final next triggers the finish sequence and its error is returned.
func answerAll(ctx context.Context, t *testing.T, session *app.QuizSession, answers []int) error {
	t.Helper()
	if len(answers) != session.TotalQuestions() {
		t.Fatalf("answer count %d != question count %d", len(answers), session.TotalQuestions())
	}
	for i, answer := range answers {
		if session.CurrentIndex() != i {
			t.Fatalf("expected index %d, at %d", i, session.CurrentIndex())
		}
		session.SelectAnswer(answer)
		session.SubmitAnswer()
		if err := session.NextQuestion(ctx); err != nil {
			return err
		}
	}
	return nil
}

func startSession(t *testing.T, service *app.QuizService, moduleID string) *app.QuizSession {
	t.Helper()
	session, err := service.StartSession(context.Background(), moduleID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return session
}

func newTestService(t *testing.T, store app.ProgressStore) (*app.QuizService, app.ProgressStore) {
	t.Helper()
	if store == nil {
		store = memory.NewProgressStore()
	}
	loader := memory.NewStaticModuleLoader(testModules())
	repo := memory.NewModuleRepository(loader, 5*time.Minute)
	service := app.NewQuizServiceWithClock(repo, store, 80, func() time.Time {
		return time.Unix(1719800000, 0).UTC()
	})
	return service, store
}

func testModules() map[string]domain.CourseModule {
	fiveQuestions := []domain.Question{
		{ID: "q1", Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 0, Explanation: "A is right"},
		{ID: "q2", Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 1},
		{ID: "q3", Text: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 0},
		{ID: "q4", Text: "Q4", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 0},
		{ID: "q5", Text: "Q5", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: 3},
	}
	return map[string]domain.CourseModule{
		"iam-101": {
			ID:      "iam-101",
			Title:   "IAM Basics",
			BadgeID: "badge-iam-101",
			Quiz:    domain.Quiz{ModuleID: "iam-101", Questions: fiveQuestions},
		},
		"no-badge": {
			ID:    "no-badge",
			Title: "Badgeless",
			Quiz: domain.Quiz{ModuleID: "no-badge", Questions: []domain.Question{
				{ID: "q1", Text: "Q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
				{ID: "q2", Text: "Q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
			}},
		},
		"three-questions": {
			ID:    "three-questions",
			Title: "Thirds",
			Quiz: domain.Quiz{ModuleID: "three-questions", Questions: []domain.Question{
				{ID: "q1", Text: "Q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
				{ID: "q2", Text: "Q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
				{ID: "q3", Text: "Q3", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
			}},
		},
		"four-questions": {
			ID:    "four-questions",
			Title: "Quarters",
			Quiz: domain.Quiz{ModuleID: "four-questions", Questions: []domain.Question{
				{ID: "q1", Text: "Q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
				{ID: "q2", Text: "Q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
				{ID: "q3", Text: "Q3", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
				{ID: "q4", Text: "Q4", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
			}},
		},
		"legacy-ids": {
			ID:    "legacy-ids",
			Title: "Legacy Content",
			Quiz: domain.Quiz{ModuleID: "legacy-ids", Questions: []domain.Question{
				{ID: "first", Text: "Q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
				{ID: "second", Text: "Q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
				{Text: "Q3 without id", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
			}},
		},
	}
}

// failingStore accepts reads but rejects every write.
type failingStore struct {
	app.ProgressStore
}

func (f *failingStore) RecordAttempt(context.Context, string, domain.AttemptRecord) error {
	return errors.New("storage offline")
}

func (f *failingStore) AwardBadge(context.Context, string, string) error {
	return errors.New("storage offline")
}
