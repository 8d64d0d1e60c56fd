package models

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeShortAnswer    QuestionType = "short_answer"
	TypeEssay          QuestionType = "essay"
	TypeCalculation    QuestionType = "calculation"
)

var ValidQuestionTypes = map[QuestionType]bool{
	TypeMultipleChoice: true,
	TypeShortAnswer:    true,
	TypeEssay:          true,
	TypeCalculation:    true,
}

var ValidSubjects = map[string]bool{
	"mathematics":         true,
	"physics":             true,
	"chemistry":           true,
	"biology":             true,
	"english":             true,
	"history":             true,
	"geography":           true,
	"economics":           true,
	"business_management": true,
	"psychology":          true,
	"computer_science":    true,
}

// AnswerOption is one labeled choice on a multiple-choice question.
// Options are stored and served as an ordered slice so label order is stable.
type AnswerOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is an immutable catalog record. Options is nil for every type
// except multiple_choice. CorrectAnswer never leaves the backend.
type Question struct {
	ID            int64          `json:"id"`
	Subject       string         `json:"subject"`
	QuestionType  QuestionType   `json:"question_type"`
	Difficulty    Difficulty     `json:"difficulty"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Options       []AnswerOption `json:"options,omitempty"`
	CorrectAnswer string         `json:"-"`
	Explanation   string         `json:"explanation"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
