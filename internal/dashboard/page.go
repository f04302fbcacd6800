package dashboard

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"gbp":      GBP,
	"gbp2":     GBP2,
	"ratio":    Ratio,
	"cpp":      CPP,
	"totalCPP": TotalCPP,
	"recClass": RecClass,
	"lower":    strings.ToLower,
}).ParseFS(templateFS, "templates/dashboard.html"))

type pageModel struct {
	Page
	vs      ViewState
	Presets []Preset
}

func (m pageModel) href(s ViewState) string { return "/?" + s.Values().Encode() }

func (m pageModel) ViewURL(v string) string { return m.href(m.vs.CloseDrawer().WithView(v)) }

func (m pageModel) SelectURL(kind models.Kind, id string) string {
	return m.href(m.vs.Select(models.RowRef{Kind: kind, ID: id}))
}

func (m pageModel) CloseURL() string { return m.href(m.vs.CloseDrawer()) }

// ReturnTo is where forms send the browser back after an action.
func (m pageModel) ReturnTo() string { return m.href(m.vs.CloseDrawer()) }

func (m pageModel) IsView(v string) bool { return string(m.vs.View) == v }

func (m pageModel) Failed() []store.SourceStatus {
	var out []store.SourceStatus
	for _, s := range m.Sources {
		if s.State == store.StateError {
			out = append(out, s)
		}
	}
	return out
}

func (m pageModel) ViewTitle() string {
	switch m.vs.View {
	case ViewCampaigns:
		return "Campaigns"
	case ViewAds:
		return "Ads"
	}
	return "Ad Sets"
}

// Render writes the dashboard HTML for p.
func Render(w io.Writer, p Page, vs ViewState) error {
	return pageTmpl.Execute(w, pageModel{Page: p, vs: vs, Presets: Presets})
}
