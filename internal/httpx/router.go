package httpx

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/dashboard"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/telemetry"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/utils"
)

type Options struct {
	Telemetry   *telemetry.Collectors
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

type router struct {
	log *slog.Logger
	svc *dashboard.Service
}

func NewRouter(log *slog.Logger, svc *dashboard.Service, o Options) http.Handler {
	rt := &router{log: log, svc: svc}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(utils.Instrument(o.Telemetry))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			http.Error(w, "loading", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	if o.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.Get("/", rt.page)
	mux.Get("/dashboard/chart", rt.chart)

	mux.Route("/api", func(api chi.Router) {
		// Same-origin only unless origins are configured.
		if len(o.CORSOrigins) > 0 {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins: o.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			}))
		}
		api.Get("/overview", rt.overview)
		api.Get("/campaigns", rt.campaigns)
		api.Get("/adsets", rt.adsets)
		api.Get("/rows/{kind}/{id}", rt.detail)
		api.Post("/rows/{kind}/{id}/toggle", rt.toggle)
		api.Post("/refresh", rt.refresh)
	})

	return mux
}

func (rt *router) state(r *http.Request) dashboard.ViewState {
	return dashboard.FromQuery(rt.svc.DefaultState(), r.URL.Query())
}

func (rt *router) page(w http.ResponseWriter, r *http.Request) {
	vs := rt.state(r)
	var buf bytes.Buffer
	if err := dashboard.Render(&buf, rt.svc.Build(r.Context(), vs), vs); err != nil {
		rt.log.ErrorContext(r.Context(), "render page", slog.String("err", err.Error()))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (rt *router) chart(w http.ResponseWriter, r *http.Request) {
	vs := rt.state(r)
	var buf bytes.Buffer
	if err := dashboard.RenderROASChart(&buf, rt.svc.Build(r.Context(), vs).Overview, vs.BreakEven); err != nil {
		rt.log.ErrorContext(r.Context(), "render chart", slog.String("err", err.Error()))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (rt *router) overview(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, rt.svc.Build(r.Context(), rt.state(r)))
}

func (rt *router) campaigns(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, rt.svc.Build(r.Context(), rt.state(r)).Overview.Campaigns)
}

func (rt *router) adsets(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, rt.svc.Build(r.Context(), rt.state(r)).Overview.AdSets)
}

func rowRef(w http.ResponseWriter, r *http.Request) (models.RowRef, bool) {
	kind, ok := models.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		Error(w, http.StatusBadRequest, "kind must be campaign or adset")
		return models.RowRef{}, false
	}
	return models.RowRef{Kind: kind, ID: chi.URLParam(r, "id")}, true
}

func (rt *router) detail(w http.ResponseWriter, r *http.Request) {
	ref, ok := rowRef(w, r)
	if !ok {
		return
	}
	d, ok := rt.svc.Detail(rt.state(r), ref)
	if !ok {
		Error(w, http.StatusNotFound, "row not found")
		return
	}
	JSON(w, http.StatusOK, d)
}

// toggle flips a row's status. Browser forms send return_to and get a
// redirect back to the page; API callers get the result as JSON.
func (rt *router) toggle(w http.ResponseWriter, r *http.Request) {
	ref, ok := rowRef(w, r)
	if !ok {
		return
	}
	res, err := rt.svc.Toggle(r.Context(), ref)
	switch {
	case errors.Is(err, dashboard.ErrRowNotFound):
		Error(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		Error(w, http.StatusBadGateway, err.Error())
		return
	}
	if to, ok := localPath(r.FormValue("return_to")); ok {
		http.Redirect(w, r, to, http.StatusSeeOther)
		return
	}
	JSON(w, http.StatusOK, res)
}

func (rt *router) refresh(w http.ResponseWriter, r *http.Request) {
	var err error
	if preset := r.FormValue("preset"); preset != "" {
		var known bool
		known, err = rt.svc.SetPreset(r.Context(), preset)
		if !known {
			Error(w, http.StatusBadRequest, "unknown preset "+preset)
			return
		}
	} else {
		err = rt.svc.Refresh(r.Context())
	}
	// Failed sources are shown on the page itself.
	if to, ok := localPath(r.FormValue("return_to")); ok {
		http.Redirect(w, r, to, http.StatusSeeOther)
		return
	}
	if err != nil {
		JSON(w, http.StatusBadGateway, ErrorBody{Error: err.Error(), Details: rt.svc.Sources()})
		return
	}
	JSON(w, http.StatusOK, map[string]any{"sources": rt.svc.Sources()})
}
