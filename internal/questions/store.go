package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ib-tutor/backend/internal/models"
)

// Store is the read-only question catalog. The core never writes to it.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var ErrQuestionNotFound = fmt.Errorf("question not found")

func (s *Store) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subject, question_type, difficulty, title, content,
		        options, correct_answer, explanation, created_at, updated_at
		 FROM questions WHERE id = $1`,
		questionID,
	)

	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question %d: %w", questionID, err)
	}
	return q, nil
}

func (s *Store) ListBySubject(ctx context.Context, subject string, difficulty *models.Difficulty, limit, offset int) ([]models.Question, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, subject, question_type, difficulty, title, content,
	                 options, correct_answer, explanation, created_at, updated_at
	          FROM questions WHERE subject = $1`
	args := []interface{}{subject}

	if difficulty != nil {
		query += ` AND difficulty = $2`
		args = append(args, string(*difficulty))
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions for %s: %w", subject, err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var q models.Question
	var optionsJSON []byte

	err := row.Scan(&q.ID, &q.Subject, &q.QuestionType, &q.Difficulty,
		&q.Title, &q.Content, &optionsJSON, &q.CorrectAnswer, &q.Explanation,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for question %d: %w", q.ID, err)
		}
	}
	return &q, nil
}
