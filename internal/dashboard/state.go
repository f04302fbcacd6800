package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/metrics"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

type View string

const (
	ViewCampaigns View = "campaigns"
	ViewAdSets    View = "adsets"
	ViewAds       View = "ads"
)

func parseView(s string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewCampaigns, ViewAdSets, ViewAds:
		return v, true
	}
	return "", false
}

// ViewState is everything the user controls. It is a value: reducers return
// an updated copy and never touch the receiver.
type ViewState struct {
	View       View
	Query      string
	BreakEven  float64
	Status     metrics.StatusFilter
	Selected   *models.RowRef
	DrawerOpen bool
	Preset     string
}

func NewViewState(breakEven float64) ViewState {
	if !metrics.ValidBreakEven(breakEven) {
		breakEven = metrics.DefaultBreakEvenROAS
	}
	return ViewState{
		View:      ViewAdSets,
		BreakEven: breakEven,
		Status:    metrics.StatusAll,
		Preset:    "today",
	}
}

func (s ViewState) WithQuery(q string) ViewState {
	s.Query = q
	return s
}

// WithBreakEven parses raw and keeps the previous threshold when raw is not
// a usable positive number.
func (s ViewState) WithBreakEven(raw string) ViewState {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !metrics.ValidBreakEven(f) {
		return s
	}
	s.BreakEven = f
	return s
}

func (s ViewState) WithView(raw string) ViewState {
	if v, ok := parseView(raw); ok {
		s.View = v
	}
	return s
}

func (s ViewState) WithStatus(raw string) ViewState {
	s.Status = metrics.ParseStatusFilter(raw)
	return s
}

func (s ViewState) WithPreset(key string) ViewState {
	if p, ok := PresetByKey(key); ok {
		s.Preset = p.Key
	}
	return s
}

// Select opens the detail drawer on ref.
func (s ViewState) Select(ref models.RowRef) ViewState {
	r := ref
	s.Selected = &r
	s.DrawerOpen = true
	return s
}

func (s ViewState) CloseDrawer() ViewState {
	s.Selected = nil
	s.DrawerOpen = false
	return s
}

// ParseRowRef reads "kind:id", e.g. "adset:10".
func ParseRowRef(raw string) (models.RowRef, bool) {
	k, id, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || id == "" {
		return models.RowRef{}, false
	}
	kind, ok := models.ParseKind(k)
	if !ok {
		return models.RowRef{}, false
	}
	return models.RowRef{Kind: kind, ID: id}, true
}

func FormatRowRef(r models.RowRef) string { return string(r.Kind) + ":" + r.ID }

// FromQuery applies URL parameters on top of base.
func FromQuery(base ViewState, v url.Values) ViewState {
	s := base
	if v.Has("view") {
		s = s.WithView(v.Get("view"))
	}
	if v.Has("q") {
		s = s.WithQuery(v.Get("q"))
	}
	if v.Has("break_even") {
		s = s.WithBreakEven(v.Get("break_even"))
	}
	if v.Has("status") {
		s = s.WithStatus(v.Get("status"))
	}
	if ref, ok := ParseRowRef(v.Get("selected")); ok {
		s = s.Select(ref)
	}
	return s
}

// Values encodes s back into URL parameters, leaving out defaults.
func (s ViewState) Values() url.Values {
	v := url.Values{}
	v.Set("view", string(s.View))
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	v.Set("break_even", strconv.FormatFloat(s.BreakEven, 'f', -1, 64))
	if s.Status != "" && s.Status != metrics.StatusAll {
		v.Set("status", string(s.Status))
	}
	if s.Selected != nil && s.DrawerOpen {
		v.Set("selected", FormatRowRef(*s.Selected))
	}
	return v
}
