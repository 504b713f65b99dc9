package results

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(s *Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.GetState)
	r.Get("/search", s.Search)
	r.Get("/sources", s.GetSources)
	r.Post("/refresh", s.PostRefresh)
	r.Get("/history", s.GetHistory)
	r.Get("/privacy", s.GetPrivacy)
	r.Get("/health", s.GetHealth)

	return r
}
