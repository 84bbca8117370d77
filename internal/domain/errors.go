package domain

import "errors"

var (
	// ErrModuleNotFound indicates the requested course module does not exist.
	ErrModuleNotFound = errors.New("course module not found")
	// ErrQuizNotFound indicates the module declares no quiz content.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptyQuiz is returned when a quiz is loaded with no questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrInvalidAnswerIndex is returned when a question's correct-answer index
	// does not point into its option list.
	ErrInvalidAnswerIndex = errors.New("correct answer index out of range")
	// ErrProgressNotSaved signals that a finished attempt could not be
	// persisted. The attempt result itself is still valid and displayable.
	ErrProgressNotSaved = errors.New("progress not saved")
)
