package http

import (
	"net/http"

	"tietotesti/internal/app"
	"tietotesti/internal/domain"

	"github.com/sirupsen/logrus"
)

// API holds the REST handlers.
type API struct {
	game  *app.GameService
	auth  *app.AuthService
	store app.Store
	names app.CategoryNames
	log   logrus.FieldLogger
}

func (a *API) listTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := a.game.Teachers(r.Context())
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	teacherID, err := queryInt64(r, "teacher_id")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	categories, err := a.game.Categories(r.Context(), teacherID)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (a *API) listQuestions(w http.ResponseWriter, r *http.Request) {
	var (
		filter domain.QuestionFilter
		err    error
	)
	if filter.CategoryID, err = queryInt64(r, "category_id"); err == nil {
		if filter.TeacherID, err = queryInt64(r, "teacher_id"); err == nil {
			filter.Limit, err = queryInt(r, "limit")
		}
	}
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	questions, err := a.game.Questions(r.Context(), filter)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func leaderboardQuery(r *http.Request) (app.LeaderboardQuery, error) {
	var (
		q   app.LeaderboardQuery
		err error
	)
	if q.CategoryID, err = queryInt64(r, "category_id"); err != nil {
		return q, err
	}
	q.Limit, err = queryInt(r, "limit")
	return q, err
}

func (a *API) listScores(w http.ResponseWriter, r *http.Request) {
	q, err := leaderboardQuery(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	entries, err := a.game.Scores(r.Context(), q)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) saveScore(w http.ResponseWriter, r *http.Request) {
	var sub app.ScoreSubmission
	if err := decodeJSON(r, &sub); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	saved, err := a.game.SaveScore(r.Context(), sub)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	q, err := leaderboardQuery(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	board, err := a.game.Leaderboard(r.Context(), q)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, board.Ordered())
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	token, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, r, a.log, domain.ErrUnauthenticated)
		return
	}
	if err := a.auth.Logout(r.Context(), token); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// workspace scopes the request to the authenticated teacher.
func (a *API) workspace(r *http.Request) (*app.TeacherWorkspace, error) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return app.NewTeacherWorkspace(a.store, a.names, identity, a.log), nil
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ws.Identity())
}

func (a *API) adminCategories(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	categories, err := ws.Categories(r.Context())
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	created, err := ws.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) renameCategory(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	id, err := pathID(r, "categoryID")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	updated, err := ws.RenameCategory(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	id, err := pathID(r, "categoryID")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if err := ws.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) adminQuestions(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	id, err := pathID(r, "categoryID")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	questions, err := ws.Questions(r.Context(), id)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// questionRequest is the editable part of a question.
type questionRequest struct {
	Question string        `json:"question"`
	OptionA  string        `json:"option_a"`
	OptionB  string        `json:"option_b"`
	OptionC  string        `json:"option_c"`
	OptionD  string        `json:"option_d"`
	Correct  domain.Choice `json:"correct_option"`
}

func (q questionRequest) toDomain() domain.Question {
	return domain.Question{
		Text:    q.Question,
		OptionA: q.OptionA,
		OptionB: q.OptionB,
		OptionC: q.OptionC,
		OptionD: q.OptionD,
		Correct: q.Correct,
	}
}

func (a *API) createQuestion(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	q := req.toDomain()
	q.CategoryID = categoryID
	created, err := ws.CreateQuestion(r.Context(), q)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) updateQuestion(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	id, err := pathID(r, "questionID")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	var req questionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	q := req.toDomain()
	q.ID = id
	updated, err := ws.UpdateQuestion(r.Context(), q)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	ws, err := a.workspace(r)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	id, err := pathID(r, "questionID")
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if err := ws.DeleteQuestion(r.Context(), id); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
