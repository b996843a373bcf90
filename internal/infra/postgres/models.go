package postgres

import (
	"tietotesti/internal/domain"

	"github.com/uptrace/bun"
)

type teacherRow struct {
	bun.BaseModel `bun:"table:teachers"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Username     string `bun:"username,notnull"`
	PasswordHash string `bun:"password_hash,notnull"`
}

func (r teacherRow) toDomain() domain.Teacher {
	return domain.Teacher{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash}
}

type categoryRow struct {
	bun.BaseModel `bun:"table:categories"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	TeacherID int64  `bun:"teacher_id,notnull"`
}

func (r categoryRow) toDomain() domain.Category {
	return domain.Category{ID: r.ID, Name: r.Name, TeacherID: r.TeacherID}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            int64  `bun:"id,pk,autoincrement"`
	CategoryID    int64  `bun:"category_id,notnull"`
	TeacherID     int64  `bun:"teacher_id,notnull"`
	Question      string `bun:"question,notnull"`
	OptionA       string `bun:"option_a,notnull"`
	OptionB       string `bun:"option_b,notnull"`
	OptionC       string `bun:"option_c,notnull"`
	OptionD       string `bun:"option_d,notnull"`
	CorrectOption string `bun:"correct_option,notnull"`
}

func newQuestionRow(q domain.Question) questionRow {
	return questionRow{
		ID:            q.ID,
		CategoryID:    q.CategoryID,
		TeacherID:     q.TeacherID,
		Question:      q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectOption: string(q.Correct),
	}
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		TeacherID:  r.TeacherID,
		Text:       r.Question,
		OptionA:    r.OptionA,
		OptionB:    r.OptionB,
		OptionC:    r.OptionC,
		OptionD:    r.OptionD,
		Correct:    domain.Choice(r.CorrectOption),
	}
}
