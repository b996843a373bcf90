package domain

import (
	"strings"
	"time"
)

// Choice is one of the four answer options of a question.
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
	ChoiceC Choice = "C"
	ChoiceD Choice = "D"
)

// Choices lists the options in display order.
var Choices = []Choice{ChoiceA, ChoiceB, ChoiceC, ChoiceD}

// Valid reports whether c is one of A-D.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	}
	return false
}

// ParseChoice accepts "a".."d" in either case, surrounding whitespace ignored.
func ParseChoice(raw string) (Choice, error) {
	c := Choice(strings.ToUpper(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", NewValidationError("choice", "must be one of A, B, C or D")
	}
	return c, nil
}

// Teacher owns categories and questions.
type Teacher struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Identity is the authenticated teacher a workspace acts for.
type Identity struct {
	TeacherID int64  `json:"teacher_id"`
	Username  string `json:"username"`
}

// Category groups a teacher's questions.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	TeacherID int64  `json:"teacher_id"`
}

// Question is a multiple-choice question with exactly one correct option.
type Question struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	TeacherID  int64  `json:"teacher_id"`
	Text       string `json:"question"`
	OptionA    string `json:"option_a"`
	OptionB    string `json:"option_b"`
	OptionC    string `json:"option_c"`
	OptionD    string `json:"option_d"`
	Correct    Choice `json:"correct_option"`
}

// Option returns the text of the given choice.
func (q Question) Option(c Choice) string {
	switch c {
	case ChoiceA:
		return q.OptionA
	case ChoiceB:
		return q.OptionB
	case ChoiceC:
		return q.OptionC
	case ChoiceD:
		return q.OptionD
	}
	return ""
}

// Option pairs a choice key with its text.
type Option struct {
	Key  Choice `json:"key"`
	Text string `json:"text"`
}

// PublicQuestion is what players see: no answer key.
type PublicQuestion struct {
	ID         int64    `json:"id"`
	CategoryID int64    `json:"category_id"`
	Text       string   `json:"question"`
	Options    []Option `json:"options"`
}

// Public strips the correct option.
func (q Question) Public() PublicQuestion {
	options := make([]Option, 0, len(Choices))
	for _, c := range Choices {
		options = append(options, Option{Key: c, Text: q.Option(c)})
	}
	return PublicQuestion{
		ID:         q.ID,
		CategoryID: q.CategoryID,
		Text:       q.Text,
		Options:    options,
	}
}

// Score is a finished quiz result posted to the leaderboard.
type Score struct {
	ID             int64     `json:"id"`
	PlayerName     string    `json:"player_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CategoryID     int64     `json:"category_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Filters use zero values for "no constraint".

type CategoryFilter struct {
	TeacherID int64
}

type QuestionFilter struct {
	CategoryID int64
	TeacherID  int64
	Limit      int
}

type ScoreFilter struct {
	CategoryID int64
	Limit      int
}

// DefaultScoreLimit is how many scores a leaderboard fetch reads when no limit is given.
const DefaultScoreLimit = 50
