package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lms-grading-service/internal/app"
)

// userHeader carries the caller identity set by the upstream auth proxy.
const userHeader = "X-User-ID"

// NewRouter wires every HTTP and websocket endpoint.
func NewRouter(attempts *app.AttemptService, imports *app.ImportService) http.Handler {
	h := NewHandler(attempts, imports)
	ws := NewWSHandler(attempts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/tests/{testID}", func(r chi.Router) {
		r.Post("/attempts", h.StartAttempt)
		r.Post("/grade", h.GradePreview)
		r.Post("/imports", h.BeginImport)
	})
	r.Route("/attempts/{attemptID}", func(r chi.Router) {
		r.Post("/submit", h.SubmitAttempt)
		r.Get("/result", h.AttemptResult)
	})
	r.Route("/imports/{sessionID}", func(r chi.Router) {
		r.Put("/", h.StageImport)
		r.Post("/commit", h.CommitImport)
		r.Delete("/", h.DiscardImport)
	})
	r.Get("/ws/tests/{testID}/results", ws.ServeWS)
	return r
}
