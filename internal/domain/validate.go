package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxUsernameLen     = 100
	MaxCategoryNameLen = 255
	MaxQuestionLen     = 500
	MaxOptionLen       = 255
	MaxPlayerNameLen   = 50
)

func checkText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || utf8.RuneCountInString(value) > max {
		return "", NewValidationError(field, "must be 1-%d characters", max)
	}
	return value, nil
}

// NormalizeTeacher trims and validates the username.
func NormalizeTeacher(t Teacher) (Teacher, error) {
	name, err := checkText("username", t.Username, MaxUsernameLen)
	if err != nil {
		return Teacher{}, err
	}
	t.Username = name
	if t.PasswordHash == "" {
		return Teacher{}, NewValidationError("password", "is required")
	}
	return t, nil
}

// NormalizeCategory trims and validates a category before it is stored.
func NormalizeCategory(c Category) (Category, error) {
	name, err := checkText("name", c.Name, MaxCategoryNameLen)
	if err != nil {
		return Category{}, err
	}
	if c.TeacherID <= 0 {
		return Category{}, NewValidationError("teacher_id", "is required")
	}
	c.Name = name
	return c, nil
}

// NormalizeQuestion trims every text field and checks lengths and the answer key.
func NormalizeQuestion(q Question) (Question, error) {
	if q.CategoryID <= 0 {
		return Question{}, NewValidationError("category_id", "is required")
	}
	if q.TeacherID <= 0 {
		return Question{}, NewValidationError("teacher_id", "is required")
	}
	text, err := checkText("question", q.Text, MaxQuestionLen)
	if err != nil {
		return Question{}, err
	}
	q.Text = text

	fields := []struct {
		name string
		val  *string
	}{
		{"option_a", &q.OptionA},
		{"option_b", &q.OptionB},
		{"option_c", &q.OptionC},
		{"option_d", &q.OptionD},
	}
	for _, f := range fields {
		v, err := checkText(f.name, *f.val, MaxOptionLen)
		if err != nil {
			return Question{}, err
		}
		*f.val = v
	}

	correct, err := ParseChoice(string(q.Correct))
	if err != nil {
		return Question{}, NewValidationError("correct_option", "must be one of A, B, C or D")
	}
	q.Correct = correct
	return q, nil
}

// NormalizeScore trims the player name and checks the score range.
func NormalizeScore(s Score) (Score, error) {
	name, err := checkText("player_name", s.PlayerName, MaxPlayerNameLen)
	if err != nil {
		return Score{}, err
	}
	s.PlayerName = name
	if s.TotalQuestions <= 0 {
		return Score{}, NewValidationError("total_questions", "must be positive")
	}
	if s.Score < 0 || s.Score > s.TotalQuestions {
		return Score{}, NewValidationError("score", "must be between 0 and %d", s.TotalQuestions)
	}
	if s.CategoryID <= 0 {
		return Score{}, NewValidationError("category_id", "is required")
	}
	return s, nil
}
