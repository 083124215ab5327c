package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	liveHandler "github.com/Mayan-101/torc/internal/handler/live"
	questionHandler "github.com/Mayan-101/torc/internal/handler/question"
	sessionHandler "github.com/Mayan-101/torc/internal/handler/session"
	middlewarePkg "github.com/Mayan-101/torc/internal/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Session  *sessionHandler.Handler
	Question *questionHandler.Handler
	Live     *liveHandler.Handler
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		deps.Session.RegisterRoutes(api)
		deps.Question.RegisterRoutes(api)
		deps.Live.RegisterRoutes(api)
	})

	return r
}
