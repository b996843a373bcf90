package http

import (
	"net/http"
	"time"

	"tietotesti/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Game  *app.GameService
	Auth  *app.AuthService
	Store app.Store
	Names app.CategoryNames
	Log   logrus.FieldLogger

	// AllowedOrigins defaults to any origin.
	AllowedOrigins []string
}

// NewRouter mounts the REST API and the play websocket.
func NewRouter(d Deps) http.Handler {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	api := &API{
		game:  d.Game,
		auth:  d.Auth,
		store: d.Store,
		names: d.Names,
		log:   d.Log,
	}
	play := NewPlayHandler(d.Game, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(d.Log), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws/play", play.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/teachers", api.listTeachers)
		r.Get("/categories", api.listCategories)
		r.Get("/questions", api.listQuestions)
		r.Get("/scores", api.listScores)
		r.Post("/scores", api.saveScore)
		r.Get("/leaderboard", api.leaderboard)

		r.Post("/auth/login", api.login)
		r.Post("/auth/logout", api.logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireTeacher(d.Auth, d.Log))
			r.Get("/me", api.me)
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", api.adminCategories)
				r.Post("/", api.createCategory)
				r.Route("/{categoryID}", func(r chi.Router) {
					r.Put("/", api.renameCategory)
					r.Delete("/", api.deleteCategory)
					r.Get("/questions", api.adminQuestions)
					r.Post("/questions", api.createQuestion)
				})
			})
			r.Route("/questions/{questionID}", func(r chi.Router) {
				r.Put("/", api.updateQuestion)
				r.Delete("/", api.deleteQuestion)
			})
		})
	})
	return r
}
