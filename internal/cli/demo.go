package cli

import (
	"context"
	"fmt"
	"io"

	"tietotesti/internal/app"
	"tietotesti/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const demoUsername = "demo"

// demoQuestions is the catalogue served by the memory driver.
var demoQuestions = []domain.Question{
	{Text: "Mikä on Suomen pääkaupunki?", OptionA: "Turku", OptionB: "Helsinki", OptionC: "Tampere", OptionD: "Oulu", Correct: domain.ChoiceB},
	{Text: "Minä vuonna Suomi itsenäistyi?", OptionA: "1917", OptionB: "1905", OptionC: "1939", OptionD: "1945", Correct: domain.ChoiceA},
	{Text: "Mikä on Suomen pisin joki?", OptionA: "Oulujoki", OptionB: "Kymijoki", OptionC: "Kemijoki", OptionD: "Tornionjoki", Correct: domain.ChoiceC},
	{Text: "Kuinka monta maakuntaa Suomessa on?", OptionA: "12", OptionB: "19", OptionC: "21", OptionD: "15", Correct: domain.ChoiceB},
	{Text: "Mikä on Suomen kansalliseläin?", OptionA: "Hirvi", OptionB: "Susi", OptionC: "Karhu", OptionD: "Ilves", Correct: domain.ChoiceC},
	{Text: "Kuka kirjoitti Seitsemän veljestä?", OptionA: "Aleksis Kivi", OptionB: "Juhani Aho", OptionC: "Eino Leino", OptionD: "Minna Canth", Correct: domain.ChoiceA},
}

// seedDemo fills an empty in-memory store with one teacher and a category.
// The teacher gets a fresh random password, written once to out.
func seedDemo(ctx context.Context, auth *app.AuthService, store app.Store, log logrus.FieldLogger, out io.Writer) (string, error) {
	password := uuid.NewString()
	teacher, err := auth.Register(ctx, demoUsername, password)
	if err != nil {
		return "", fmt.Errorf("seed demo teacher: %w", err)
	}
	category, err := store.CreateCategory(ctx, domain.Category{Name: "Yleistieto", TeacherID: teacher.ID})
	if err != nil {
		return "", fmt.Errorf("seed demo category: %w", err)
	}
	for _, q := range demoQuestions {
		q.CategoryID = category.ID
		q.TeacherID = teacher.ID
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			return "", fmt.Errorf("seed demo question: %w", err)
		}
	}
	fmt.Fprintf(out, "demo teacher %q created with password %s\n", demoUsername, password)
	log.WithField("username", demoUsername).Warn("memory storage: demo teacher created, data is lost on restart")
	return password, nil
}
