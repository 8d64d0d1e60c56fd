package models

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Messages are built per call and
// never persisted.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Evaluation is the normalized judgment of one answer. Every field is always
// populated and Score is always within [0, 100].
type Evaluation struct {
	IsCorrect   bool     `json:"isCorrect"`
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

type ChatRequest struct {
	QuestionID int64     `json:"question_id"`
	Messages   []Message `json:"messages"`
	UserAnswer string    `json:"user_answer,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type HintRequest struct {
	QuestionID          int64     `json:"question_id"`
	ConversationHistory []Message `json:"conversation_history"`
}

type HintResponse struct {
	Hint string `json:"hint"`
}

type EvaluateRequest struct {
	QuestionID int64  `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

type EvaluateResponse struct {
	Evaluation
	ProgressSaved bool `json:"progress_saved"`
}
