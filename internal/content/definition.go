package content

import (
	"encoding/json"
	"fmt"

	"iam-academy-service/internal/domain"
)

// QuizDocument is the boundary representation of authored quiz content.
// Two legacy shapes exist in the wild and both must load transparently:
// a bare question array, and a wrapper object with a "questions" field.
// Unmarshalling accepts either; Normalize produces the single canonical
// domain.Quiz the rest of the system works with.
type QuizDocument struct {
	Questions []questionDocument
}

type questionDocument struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

type wrappedQuizDocument struct {
	Questions []questionDocument `json:"questions"`
}

// UnmarshalJSON accepts both legacy content shapes.
func (d *QuizDocument) UnmarshalJSON(data []byte) error {
	var bare []questionDocument
	if err := json.Unmarshal(data, &bare); err == nil {
		d.Questions = bare
		return nil
	}
	var wrapped wrappedQuizDocument
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("quiz document: %w", err)
	}
	d.Questions = wrapped.Questions
	return nil
}

// Normalize converts the document into a validated canonical quiz.
// Questions missing an explicit id get the positional fallback "q-{index}";
// recorded answers are keyed by this id, so the fallback is part of the
// persistence contract, not a cosmetic default.
func (d QuizDocument) Normalize(moduleID string) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ModuleID:  moduleID,
		Questions: make([]domain.Question, 0, len(d.Questions)),
	}
	for i, q := range d.Questions {
		id := q.ID
		if id == "" {
			id = FallbackQuestionID(i)
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:                 id,
			Text:               q.Text,
			Options:            q.Options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			Explanation:        q.Explanation,
		})
	}
	if err := Validate(quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// FallbackQuestionID returns the positional id used for questions authored
// without one.
func FallbackQuestionID(index int) string {
	return fmt.Sprintf("q-%d", index)
}

// Validate fails fast on malformed quiz content. Scoring behavior is
// undefined for quizzes that violate these invariants, so they must never
// reach a session.
func Validate(quiz domain.Quiz) error {
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("module %s: %w", quiz.ModuleID, domain.ErrEmptyQuiz)
	}
	for i, q := range quiz.Questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("module %s question %d: need at least 2 options, got %d", quiz.ModuleID, i, len(q.Options))
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return fmt.Errorf("module %s question %d: %w", quiz.ModuleID, i, domain.ErrInvalidAnswerIndex)
		}
	}
	return nil
}

// ParseQuiz unmarshals raw authored content (either legacy shape) and
// normalizes it in one step.
func ParseQuiz(moduleID string, raw []byte) (domain.Quiz, error) {
	var doc QuizDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Quiz{}, err
	}
	return doc.Normalize(moduleID)
}
