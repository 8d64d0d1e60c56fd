package tutor

import (
	"fmt"
	"strings"

	"github.com/ib-tutor/backend/internal/models"
)

// tutorSystemPrompt is the fixed pedagogy policy. It constrains the backend
// to guide the student rather than hand over answers, and it is always the
// first message of every tutoring conversation.
const tutorSystemPrompt = `You are an expert IB (International Baccalaureate) tutor with a Socratic teaching approach. Your goal is to help students develop deep understanding and cognitive reasoning skills, not just provide answers.

Core Principles:
1. **Build Cognitive Logic**: Guide students through the thinking process rather than giving direct answers
2. **Socratic Method**: Ask probing questions that lead students to discover answers themselves
3. **Conceptual Understanding**: Focus on "why" and "how" rather than just "what"
4. **Scaffolded Learning**: Break complex problems into manageable steps
5. **Positive Reinforcement**: Encourage effort and progress, not just correct answers
6. **Metacognition**: Help students reflect on their own thinking process

Teaching Strategies:
- When a student asks for help, first understand what they've tried
- Ask guiding questions like: "What do you know so far?", "What patterns do you notice?", "How might this relate to concepts you've learned?"
- If they're stuck, provide hints that illuminate the path without revealing the answer
- When they make progress, acknowledge it and build on their reasoning
- If they make mistakes, guide them to discover the error themselves
- Connect concepts to real-world applications when relevant
- Adapt your language to the student's level of understanding

Remember: Your role is to develop independent thinkers, not dependent learners. Every interaction should strengthen their problem-solving abilities.`

const examinerSystemPrompt = `You are an expert IB examiner. Provide fair, constructive evaluations.`

// ComposeTutorContext builds the message sequence for open dialogue
// tutoring: pedagogy policy first, the per-question context second, then the
// caller's history verbatim. Inputs are never mutated.
func ComposeTutorContext(history []models.Message, question *models.Question, userAnswer string) []models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Question Context:\n")
	fmt.Fprintf(&b, "Subject: %s\n", question.Subject)
	fmt.Fprintf(&b, "Difficulty: %s\n", question.Difficulty)
	fmt.Fprintf(&b, "Question: %s\n", question.Content)
	if len(question.Options) > 0 {
		fmt.Fprintf(&b, "Options:\n%s", formatOptions(question.Options))
	}
	if userAnswer != "" {
		fmt.Fprintf(&b, "Student's Current Answer: %s\n", userAnswer)
	}
	fmt.Fprintf(&b, "\nNote: You have access to the correct answer (%s) and explanation, but use this knowledge to guide, not to simply reveal.", question.CorrectAnswer)

	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages,
		models.Message{Role: models.RoleSystem, Content: tutorSystemPrompt},
		models.Message{Role: models.RoleSystem, Content: b.String()},
	)
	messages = append(messages, history...)
	return messages
}

// ComposeEvaluationPrompt builds the two-message instruction sequence that
// asks the backend to judge an answer and reply with a single JSON object.
func ComposeEvaluationPrompt(question *models.Question, userAnswer string) []models.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "You are evaluating a student's answer to an IB question.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question.Content)
	if len(question.Options) > 0 {
		fmt.Fprintf(&b, "Options:\n%s", formatOptions(question.Options))
	}
	fmt.Fprintf(&b, "Correct Answer: %s\n", question.CorrectAnswer)
	fmt.Fprintf(&b, "Student's Answer: %s\n", userAnswer)
	fmt.Fprintf(&b, "Explanation: %s\n\n", question.Explanation)
	b.WriteString(`Evaluate the student's answer and provide:
1. Whether it's correct (fully correct, partially correct, or incorrect)
2. A score from 0-100
3. Constructive feedback that highlights what they did well and what needs improvement
4. Specific suggestions for improvement

Format your response as JSON:
{
  "isCorrect": boolean,
  "score": number,
  "feedback": "detailed feedback string",
  "suggestions": ["suggestion 1", "suggestion 2"]
}`)

	return []models.Message{
		{Role: models.RoleSystem, Content: examinerSystemPrompt},
		{Role: models.RoleUser, Content: b.String()},
	}
}

// ComposeHintPrompt builds the hint sequence: pedagogy policy, the full
// conversation so far, then an instruction to produce one incremental
// guiding step rather than the answer.
func ComposeHintPrompt(question *models.Question, history []models.Message) []models.Message {
	var b strings.Builder
	b.WriteString(`Based on the conversation history, generate a helpful hint that guides the student toward the solution without revealing the answer directly. The hint should:
1. Build on what they already understand
2. Ask a guiding question or provide a small piece of information
3. Encourage them to think through the next step

`)
	fmt.Fprintf(&b, "Question: %s\n", question.Content)
	fmt.Fprintf(&b, "Correct Answer Context: %s", question.CorrectAnswer)

	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: tutorSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.Message{Role: models.RoleUser, Content: b.String()})
	return messages
}

func formatOptions(options []models.AnswerOption) string {
	var b strings.Builder
	for _, opt := range options {
		fmt.Fprintf(&b, "%s. %s\n", opt.Label, opt.Text)
	}
	return b.String()
}
