package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/metrics"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/telemetry"
)

type fakeBackend struct {
	mu        sync.Mutex
	campaigns []models.Campaign
	adsets    []models.AdSet
	insights  []models.Insight
	failAds   error
	failSet   error
	presets   []string
	setCalls  []string
}

func (f *fakeBackend) FetchCampaigns(context.Context) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Campaign(nil), f.campaigns...), nil
}

func (f *fakeBackend) FetchAdSets(context.Context) ([]models.AdSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAds != nil {
		return nil, f.failAds
	}
	return append([]models.AdSet(nil), f.adsets...), nil
}

func (f *fakeBackend) FetchInsights(_ context.Context, preset string) ([]models.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presets = append(f.presets, preset)
	return append([]models.Insight(nil), f.insights...), nil
}

func (f *fakeBackend) SetStatus(_ context.Context, kind models.Kind, id string, st models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	f.setCalls = append(f.setCalls, string(kind)+":"+id+":"+st.Wire())
	switch kind {
	case models.KindCampaign:
		for i := range f.campaigns {
			if f.campaigns[i].ID == id {
				f.campaigns[i].Status = st
			}
		}
	case models.KindAdSet:
		for i := range f.adsets {
			if f.adsets[i].ID == id {
				f.adsets[i].Status = st
			}
		}
	}
	return nil
}

func sampleBackend() *fakeBackend {
	return &fakeBackend{
		campaigns: []models.Campaign{{ID: "1", Name: "C1", Status: models.StatusActive}},
		adsets: []models.AdSet{
			{ID: "10", Name: "AS1", CampaignID: "1", Status: models.StatusActive, DailyBudget: 20},
			{ID: "11", Name: "Winners", CampaignID: "1", Status: models.StatusActive, DailyBudget: 40},
		},
		insights: []models.Insight{
			{AdSetID: "10", Spend: 60, Purchases: 1, Revenue: 50, ROAS: 0.83},
			{AdSetID: "11", Spend: 100, Purchases: 4, Revenue: 300, ROAS: 3},
		},
	}
}

func newService(t *testing.T, be Backend) (*Service, *store.MemoryStore) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	loader := NewLoader(be, st, log, nil)
	svc := NewService(Options{
		Store:         st,
		Loader:        loader,
		Toggler:       NewToggler(be, st, loader, log, nil),
		Logger:        log,
		Account:       "Test account",
		BreakEvenROAS: 1.34,
	})
	return svc, st
}

func TestViewStateReducers(t *testing.T) {
	s := NewViewState(1.34)
	assert.Equal(t, ViewAdSets, s.View)

	next := s.WithBreakEven("2.5")
	assert.Equal(t, 2.5, next.BreakEven)
	assert.Equal(t, 1.34, s.BreakEven, "reducers must not mutate the receiver")

	assert.Equal(t, 2.5, next.WithBreakEven("abc").BreakEven)
	assert.Equal(t, 2.5, next.WithBreakEven("NaN").BreakEven)
	assert.Equal(t, 2.5, next.WithBreakEven("0").BreakEven)
	assert.Equal(t, 2.5, next.WithBreakEven("").BreakEven)

	assert.Equal(t, ViewCampaigns, s.WithView("Campaigns").View)
	assert.Equal(t, ViewAdSets, s.WithView("bogus").View)

	sel := s.Select(models.RowRef{Kind: models.KindAdSet, ID: "10"})
	require.NotNil(t, sel.Selected)
	assert.True(t, sel.DrawerOpen)
	assert.Nil(t, s.Selected)
	closed := sel.CloseDrawer()
	assert.False(t, closed.DrawerOpen)
	assert.Nil(t, closed.Selected)

	assert.Equal(t, "last7", s.WithPreset("last_7d").Preset)
	assert.Equal(t, "today", s.WithPreset("nope").Preset)

	assert.Equal(t, 1.34, NewViewState(-1).BreakEven)
}

func TestFromQueryRoundTrip(t *testing.T) {
	base := NewViewState(1.34)
	s := base.WithView("campaigns").WithQuery("summer").WithBreakEven("1.5").WithStatus("paused").
		Select(models.RowRef{Kind: models.KindCampaign, ID: "7"})
	got := FromQuery(base, s.Values())
	assert.Equal(t, s, got)

	bad := FromQuery(base, map[string][]string{"break_even": {"x"}, "selected": {"nope"}})
	assert.Equal(t, 1.34, bad.BreakEven)
	assert.False(t, bad.DrawerOpen)
}

func TestParseRowRef(t *testing.T) {
	ref, ok := ParseRowRef("adsets:10")
	require.True(t, ok)
	assert.Equal(t, models.RowRef{Kind: models.KindAdSet, ID: "10"}, ref)
	_, ok = ParseRowRef("adset:")
	assert.False(t, ok)
	_, ok = ParseRowRef("ad:1")
	assert.False(t, ok)
}

func TestPresets(t *testing.T) {
	now := time.Date(2025, 8, 15, 13, 30, 0, 0, time.UTC)
	p, ok := PresetByKey("last7")
	require.True(t, ok)
	r := p.Range(now)
	assert.Equal(t, "2025-08-09", FormatDate(r.From))
	assert.Equal(t, "2025-08-15", FormatDate(r.To))

	p, _ = PresetByKey("yesterday")
	r = p.Range(now)
	assert.Equal(t, "2025-08-14", FormatDate(r.From))

	p, _ = PresetByKey("thisMonth")
	assert.Equal(t, "2025-08-01", FormatDate(p.Range(now).From))
}

func TestLoaderPartialFailureKeepsData(t *testing.T) {
	be := sampleBackend()
	svc, st := newService(t, be)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	assert.True(t, svc.Ready())
	assert.Len(t, st.Snapshot().AdSets, 2)

	be.failAds = errors.New("backend down")
	err := svc.Refresh(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adsets")
	assert.Len(t, st.Snapshot().AdSets, 2, "previous ad sets are retained")

	page := svc.Build(ctx, svc.DefaultState())
	assert.Len(t, page.Overview.AdSets, 2)
	var failed []store.Source
	for _, s := range page.Sources {
		if s.State == store.StateError {
			failed = append(failed, s.Source)
		}
	}
	assert.Equal(t, []store.Source{store.SourceAdSets}, failed)
}

// slowFirstBackend holds the first campaigns fetch until release is closed.
type slowFirstBackend struct {
	*fakeBackend
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (b *slowFirstBackend) FetchCampaigns(ctx context.Context) ([]models.Campaign, error) {
	if atomic.AddInt32(&b.calls, 1) == 1 {
		close(b.started)
		<-b.release
		return []models.Campaign{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil
	}
	return []models.Campaign{{ID: "1"}}, nil
}

func TestLoaderStaleResponseLeavesGauge(t *testing.T) {
	be := &slowFirstBackend{fakeBackend: sampleBackend(), started: make(chan struct{}), release: make(chan struct{})}
	st := store.NewMemoryStore()
	reg := prometheus.NewRegistry()
	tel := telemetry.New(reg)
	loader := NewLoader(be, st, slog.New(slog.NewTextHandler(io.Discard, nil)), tel)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- loader.Refresh(ctx) }()
	<-be.started

	require.NoError(t, loader.Refresh(ctx))
	close(be.release)
	require.NoError(t, <-done)

	assert.Len(t, st.Snapshot().Campaigns, 1)
	assert.Equal(t, float64(1), rowsGauge(t, reg, store.SourceCampaigns))
}

func rowsGauge(t *testing.T, reg *prometheus.Registry, src store.Source) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "adsmanager_snapshot_rows" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "source" && lp.GetValue() == string(src) {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no snapshot_rows sample for %s", src)
	return 0
}

func TestLoaderPreset(t *testing.T) {
	be := sampleBackend()
	svc, _ := newService(t, be)
	ok, err := svc.SetPreset(context.Background(), "last30")
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, []string{"last_30d"}, be.presets)

	ok, _ = svc.SetPreset(context.Background(), "forever")
	assert.False(t, ok)
}

func TestBuildBeforeLoadIsEmpty(t *testing.T) {
	svc, _ := newService(t, sampleBackend())
	page := svc.Build(context.Background(), svc.DefaultState())
	assert.Empty(t, page.Rows)
	assert.Equal(t, models.Totals{}, page.Overview.Totals)
	assert.False(t, svc.Ready())
}

func TestBuildAndDetail(t *testing.T) {
	svc, _ := newService(t, sampleBackend())
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	vs := svc.DefaultState().Select(models.RowRef{Kind: models.KindAdSet, ID: "10"}).WithQuery("winners")
	page := svc.Build(ctx, vs)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "11", page.Rows[0].ID())

	require.NotNil(t, page.Detail, "selected row stays visible outside the search")
	assert.Equal(t, "AS1", page.Detail.Row.Name())
	assert.Equal(t, "Pause", page.Detail.Action)
	assert.Equal(t, "PAUSED", page.Detail.NextStatus)
	require.Len(t, page.Detail.Reasons, 3)
	assert.Contains(t, page.Detail.Reasons[0], "0.83")
	assert.Contains(t, page.Detail.Reasons[0], "1.34")

	d, ok := svc.Detail(vs, models.RowRef{Kind: models.KindCampaign, ID: "1"})
	require.True(t, ok)
	assert.Equal(t, models.KindCampaign, d.Row.Kind)
	_, ok = svc.Detail(vs, models.RowRef{Kind: models.KindCampaign, ID: "404"})
	assert.False(t, ok)

	page = svc.Build(ctx, svc.DefaultState().WithView("ads"))
	assert.Empty(t, page.Rows)
}

func TestToggleThenReload(t *testing.T) {
	be := sampleBackend()
	svc, st := newService(t, be)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	res, err := svc.Toggle(ctx, models.RowRef{Kind: models.KindAdSet, ID: "10"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, res.Requested)
	assert.True(t, res.Reloaded)
	assert.Equal(t, []string{"adset:10:PAUSED"}, be.setCalls)
	assert.Equal(t, models.StatusPaused, st.Snapshot().AdSets[0].Status)

	res, err = svc.Toggle(ctx, models.RowRef{Kind: models.KindAdSet, ID: "10"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, res.Requested)

	_, err = svc.Toggle(ctx, models.RowRef{Kind: models.KindCampaign, ID: "missing"})
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestToggleFailureLeavesSnapshot(t *testing.T) {
	be := sampleBackend()
	svc, st := newService(t, be)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	be.failSet = errors.New("403")
	_, err := svc.Toggle(ctx, models.RowRef{Kind: models.KindCampaign, ID: "1"})
	require.Error(t, err)
	assert.Equal(t, models.StatusActive, st.Snapshot().Campaigns[0].Status)
}

func TestNextStatus(t *testing.T) {
	assert.Equal(t, models.StatusActive, NextStatus(models.StatusPaused))
	assert.Equal(t, models.StatusPaused, NextStatus(models.StatusActive))
	assert.Equal(t, "ACTIVE", NextStatus(models.StatusPaused).Wire())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "£1,234", GBP(1234.4))
	assert.Equal(t, "£0", GBP(0))
	assert.Equal(t, "£60.00", GBP2(60))
	assert.Equal(t, "£1,234.50", GBP2(1234.5))
	assert.Equal(t, "0.83", Ratio(0.8333))
	assert.Equal(t, "0.00", Ratio(0))
	assert.Equal(t, "—", CPP(nil, true))
	v := 12.5
	assert.Equal(t, "£12.50", CPP(&v, true))
	assert.Equal(t, "—", TotalCPP(models.Totals{Spend: 10}))
	assert.Equal(t, "rec-off", RecClass(models.RecTurnOff))
	assert.Equal(t, "Resume", ActionLabel(models.StatusPaused))
}

func TestReasons(t *testing.T) {
	keep := models.Row{Kind: models.KindAdSet, AdSet: &models.AdSetRow{Recommendation: models.RecKeep}}
	assert.Len(t, Reasons(keep, 1.34), 1)
	scale := models.Row{Kind: models.KindAdSet, AdSet: &models.AdSetRow{Recommendation: models.RecScale, ROAS: 4, Purchases: 9}}
	assert.Contains(t, Reasons(scale, 1.34)[1], "9")
	camp := models.Row{Kind: models.KindCampaign, Campaign: &models.CampaignRow{}}
	assert.Len(t, Reasons(camp, 1.34), 1)
}

func TestRenderPage(t *testing.T) {
	svc, _ := newService(t, sampleBackend())
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	vs := svc.DefaultState().Select(models.RowRef{Kind: models.KindAdSet, ID: "10"})
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, svc.Build(ctx, vs), vs))
	html := buf.String()
	assert.Contains(t, html, "Test account")
	assert.Contains(t, html, "AS1")
	assert.Contains(t, html, "Turn off")
	assert.Contains(t, html, "/api/rows/adset/10/toggle")
	assert.Contains(t, html, "£160")

	buf.Reset()
	cs := svc.DefaultState().WithView("campaigns")
	require.NoError(t, Render(&buf, svc.Build(ctx, cs), cs))
	assert.Contains(t, buf.String(), "C1")
}

func TestRenderChart(t *testing.T) {
	ov := metrics.Aggregate(metrics.Input{
		AdSets:        sampleBackend().adsets,
		Insights:      sampleBackend().insights,
		BreakEvenROAS: 1.34,
	})
	var buf bytes.Buffer
	require.NoError(t, RenderROASChart(&buf, ov, 1.34))
	out := buf.String()
	assert.True(t, strings.Contains(out, "Winners"))
	assert.Contains(t, out, "Top ad sets by ROAS")
}
