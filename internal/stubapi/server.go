// Package stubapi serves the ads backend API from a fixture so the dashboard
// can run without a Meta account.
package stubapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/httpx"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/utils"
)

type server struct {
	fs  *store.FixtureStore
	log *slog.Logger
}

type statusSetter func(id, status string) error

func NewRouter(fs *store.FixtureStore, log *slog.Logger, origins []string) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &server{fs: fs, log: log}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.Get("/campaigns", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, fs.Campaigns())
	})
	mux.Get("/adsets", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, fs.AdSets())
	})
	mux.Get("/adsets/insights", func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Query().Get("date_preset"); p != "" {
			log.DebugContext(r.Context(), "insights requested", slog.String("date_preset", p))
		}
		httpx.JSON(w, http.StatusOK, fs.Insights())
	})

	for _, res := range []struct {
		path string
		set  statusSetter
	}{
		{"/campaigns/{id}", fs.SetCampaignStatus},
		{"/adsets/{id}", fs.SetAdSetStatus},
	} {
		mux.Post(res.path+"/status", s.status(res.set))
		mux.Post(res.path+"/pause", s.fixed(res.set, "PAUSED"))
		mux.Post(res.path+"/resume", s.fixed(res.set, "ACTIVE"))
	}
	return mux
}

func (s *server) status(set statusSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		if !httpx.DecodeJSON(w, r, &body) {
			return
		}
		if !s.apply(w, r, set, body.Status) {
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (s *server) fixed(set statusSetter, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.apply(w, r, set, status) {
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *server) apply(w http.ResponseWriter, r *http.Request, set statusSetter, status string) bool {
	id := chi.URLParam(r, "id")
	err := set(id, status)
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "unknown id "+id)
		return false
	case err != nil:
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	s.log.InfoContext(r.Context(), "status updated", slog.String("path", r.URL.Path), slog.String("status", status))
	return true
}
