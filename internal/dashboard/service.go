package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/metrics"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
)

// Page is everything one render of the dashboard needs.
type Page struct {
	Account  string               `json:"account"`
	State    StateView            `json:"state"`
	Overview models.Overview      `json:"overview"`
	Rows     []models.Row         `json:"rows"`
	Sources  []store.SourceStatus `json:"sources"`
	Detail   *Detail              `json:"detail,omitempty"`
	Preset   string               `json:"preset"`
	From     string               `json:"from"`
	To       string               `json:"to"`
}

// StateView is the JSON face of ViewState.
type StateView struct {
	View      View                 `json:"view"`
	Query     string               `json:"query"`
	BreakEven float64              `json:"break_even"`
	Status    metrics.StatusFilter `json:"status"`
	Selected  *models.RowRef       `json:"selected,omitempty"`
}

type Detail struct {
	Row        models.Row `json:"row"`
	Reasons    []string   `json:"reasons"`
	NextStatus string     `json:"next_status"`
	Action     string     `json:"action"`
}

type Service struct {
	st      *store.MemoryStore
	loader  *Loader
	toggler *Toggler
	log     *slog.Logger
	account string
	base    ViewState
	now     func() time.Time
}

type Options struct {
	Store         *store.MemoryStore
	Loader        *Loader
	Toggler       *Toggler
	Logger        *slog.Logger
	Account       string
	BreakEvenROAS float64
}

func NewService(o Options) *Service {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		st:      o.Store,
		loader:  o.Loader,
		toggler: o.Toggler,
		log:     log,
		account: o.Account,
		base:    NewViewState(o.BreakEvenROAS),
		now:     time.Now,
	}
}

// DefaultState is the state a fresh visitor starts from.
func (s *Service) DefaultState() ViewState {
	return s.base.WithPreset(s.loader.Preset())
}

func (s *Service) aggregate(vs ViewState, snap store.Snapshot) models.Overview {
	return metrics.Aggregate(metrics.Input{
		Campaigns:     snap.Campaigns,
		AdSets:        snap.AdSets,
		Insights:      snap.Insights,
		Query:         vs.Query,
		BreakEvenROAS: vs.BreakEven,
		Status:        vs.Status,
	})
}

// Build recomputes the page from the current snapshot. Nothing is cached.
func (s *Service) Build(ctx context.Context, vs ViewState) Page {
	snap := s.st.Snapshot()
	ov := s.aggregate(vs, snap)
	if ov.DuplicateInsights > 0 {
		s.log.WarnContext(ctx, "duplicate insights for ad sets, last record kept", slog.Int("count", ov.DuplicateInsights))
	}

	p := Page{
		Account:  s.account,
		State:    stateView(vs),
		Overview: ov,
		Rows:     rowsFor(vs.View, ov),
		Sources:  s.st.Statuses(),
		Preset:   vs.Preset,
	}
	if pr, ok := PresetByKey(vs.Preset); ok {
		r := pr.Range(s.now())
		p.From, p.To = FormatDate(r.From), FormatDate(r.To)
	}
	if vs.DrawerOpen && vs.Selected != nil {
		if d, ok := s.detail(vs, snap, *vs.Selected); ok {
			p.Detail = &d
		}
	}
	return p
}

// Detail looks a row up regardless of the current search so an open drawer
// survives a query change.
func (s *Service) Detail(vs ViewState, ref models.RowRef) (Detail, bool) {
	return s.detail(vs, s.st.Snapshot(), ref)
}

func (s *Service) detail(vs ViewState, snap store.Snapshot, ref models.RowRef) (Detail, bool) {
	all := s.aggregate(vs.WithQuery("").WithStatus(string(metrics.StatusAll)), snap)
	var row models.Row
	found := false
	switch ref.Kind {
	case models.KindCampaign:
		for i := range all.Campaigns {
			if all.Campaigns[i].ID == ref.ID {
				row, found = models.Row{Kind: models.KindCampaign, Campaign: &all.Campaigns[i]}, true
				break
			}
		}
	case models.KindAdSet:
		for i := range all.AdSets {
			if all.AdSets[i].ID == ref.ID {
				row, found = models.Row{Kind: models.KindAdSet, AdSet: &all.AdSets[i]}, true
				break
			}
		}
	}
	if !found {
		return Detail{}, false
	}
	next := NextStatus(row.Status())
	return Detail{
		Row:        row,
		Reasons:    Reasons(row, vs.BreakEven),
		NextStatus: next.Wire(),
		Action:     ActionLabel(row.Status()),
	}, true
}

func (s *Service) Toggle(ctx context.Context, ref models.RowRef) (ToggleResult, error) {
	return s.toggler.Toggle(ctx, ref)
}

func (s *Service) Refresh(ctx context.Context) error { return s.loader.Refresh(ctx) }

// SetPreset changes the insights window and reloads.
func (s *Service) SetPreset(ctx context.Context, key string) (bool, error) {
	if !s.loader.SetPreset(key) {
		return false, nil
	}
	return true, s.loader.Refresh(ctx)
}

func (s *Service) Ready() bool { return s.st.Ready() }

func (s *Service) Sources() []store.SourceStatus { return s.st.Statuses() }

func stateView(vs ViewState) StateView {
	sv := StateView{View: vs.View, Query: vs.Query, BreakEven: vs.BreakEven, Status: vs.Status}
	if vs.DrawerOpen {
		sv.Selected = vs.Selected
	}
	return sv
}

// rowsFor lists the table rows of a view. There is no ads collection yet so
// the ads view is always empty.
func rowsFor(v View, ov models.Overview) []models.Row {
	out := make([]models.Row, 0)
	switch v {
	case ViewCampaigns:
		for i := range ov.Campaigns {
			out = append(out, models.Row{Kind: models.KindCampaign, Campaign: &ov.Campaigns[i]})
		}
	case ViewAdSets:
		for i := range ov.AdSets {
			out = append(out, models.Row{Kind: models.KindAdSet, AdSet: &ov.AdSets[i]})
		}
	}
	return out
}
