package domain

import "time"

// Question models a single-select MCQ question with exactly one correct option.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation,omitempty"`
}

// Quiz is the canonical ordered question list for a course module. Legacy
// content shapes are normalized into this form by the content package before
// a quiz ever reaches the session layer.
type Quiz struct {
	ModuleID  string     `json:"moduleId"`
	Questions []Question `json:"questions"`
}

// CourseModule is a top-level course unit: lesson material plus the
// module-level quiz and an optional completion badge.
type CourseModule struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Lessons []string `json:"lessons,omitempty"`
	BadgeID string   `json:"badgeId,omitempty"` // empty means the module awards no badge
	Quiz    Quiz     `json:"quiz"`
}

// HasBadge reports whether the module declares a completion badge.
func (m CourseModule) HasBadge() bool {
	return m.BadgeID != ""
}

// AttemptRecord is one finished pass through a module's quiz. Records are
// append-only: once written they are never mutated or deleted.
type AttemptRecord struct {
	ModuleID       string         `json:"moduleId"`
	Answers        map[string]int `json:"answers"` // question ID -> selected option index
	CorrectCount   int            `json:"correctCount"`
	TotalQuestions int            `json:"totalQuestions"`
	Score          int            `json:"score"` // percentage, 0..100
	Passed         bool           `json:"passed"`
	CompletedAt    time.Time      `json:"completedAt"`
}

// BadgeAward marks a badge earned for a module. Awards are idempotent:
// re-awarding an already-held badge must not duplicate it.
type BadgeAward struct {
	ModuleID  string    `json:"moduleId"`
	BadgeID   string    `json:"badgeId"`
	AwardedAt time.Time `json:"awardedAt"`
}

// ModuleProgress aggregates everything persisted for one module:
// attempt history (insertion order, most recent last) and earned badges.
type ModuleProgress struct {
	ModuleID string          `json:"moduleId"`
	Attempts []AttemptRecord `json:"attempts"`
	Badges   []string        `json:"badges"`
}

// BestScore returns the highest score across all recorded attempts, or 0
// when no attempt exists yet.
func (p ModuleProgress) BestScore() int {
	best := 0
	for _, a := range p.Attempts {
		if a.Score > best {
			best = a.Score
		}
	}
	return best
}

// HasBadge reports whether badgeID has already been awarded for this module.
func (p ModuleProgress) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b == badgeID {
			return true
		}
	}
	return false
}
