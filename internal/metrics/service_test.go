package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

func TestFilterEmptyQueryReturnsRows(t *testing.T) {
	rows := []models.CampaignRow{{ID: "2", Name: "B"}, {ID: "1", Name: "A"}}
	assert.Equal(t, rows, Filter(rows, "", CampaignFields))
	assert.Equal(t, rows, Filter(rows, "   ", []string{"name"}))
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	rows := []models.CampaignRow{
		{ID: "1", Name: "Summer Sale", Status: models.StatusActive},
		{ID: "2", Name: "Winter", Status: models.StatusPaused},
		{ID: "3", Name: "Late summer", Status: models.StatusPaused},
	}
	got := Filter(rows, " summer", []string{"name"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	got = Filter(rows, "PAUSED", CampaignFields)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
}

func TestFilterAdSetRecommendation(t *testing.T) {
	rows := []models.AdSetRow{
		{ID: "a", Name: "x", Recommendation: models.RecKeep},
		{ID: "b", Name: "y", Recommendation: models.RecTurnOff},
	}
	got := Filter(rows, "turn", AdSetFields)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestEnrichMissingInsight(t *testing.T) {
	row := Enrich(models.AdSet{ID: "10", Name: "AS"}, nil, 1.34)
	assert.Zero(t, row.Spend)
	assert.Zero(t, row.Purchases)
	assert.Zero(t, row.Revenue)
	assert.Zero(t, row.ROAS)
	assert.Nil(t, row.CPP)
	assert.Equal(t, models.RecKeep, row.Recommendation)
	assert.Equal(t, models.StatusActive, row.Status)
}

func TestEnrichTurnOffWithoutPurchases(t *testing.T) {
	row := Enrich(models.AdSet{ID: "1"}, &models.Insight{AdSetID: "1", Spend: 100, ROAS: 0.5}, 1.34)
	assert.Nil(t, row.CPP)
	assert.Equal(t, models.RecTurnOff, row.Recommendation)
}

func TestEnrichNoSpendKeeps(t *testing.T) {
	row := Enrich(models.AdSet{ID: "1"}, &models.Insight{AdSetID: "1"}, 1.34)
	assert.Equal(t, models.RecKeep, row.Recommendation)
}

func TestEnrichCPPAndCoercion(t *testing.T) {
	row := Enrich(models.AdSet{ID: "1"}, &models.Insight{AdSetID: "1", Spend: 90, Purchases: 3, Revenue: math.NaN(), ROAS: math.Inf(1)}, 1.34)
	require.NotNil(t, row.CPP)
	assert.InDelta(t, 30, *row.CPP, 1e-9)
	assert.Zero(t, row.Revenue)
	assert.Zero(t, row.ROAS)
	assert.Equal(t, models.RecTurnOff, row.Recommendation)
}

func TestComputeTotals(t *testing.T) {
	rows := []models.AdSetRow{
		{Spend: 100, Purchases: 2, Revenue: 150},
		{Spend: 50, Purchases: 0, Revenue: 0},
	}
	got := ComputeTotals(rows)
	assert.Equal(t, models.Totals{Spend: 150, Purchases: 2, Revenue: 150, ROAS: 1.0, CPP: 75}, got)
	assert.Equal(t, models.Totals{}, ComputeTotals(nil))
}

func TestTopAndFlagged(t *testing.T) {
	rows := []models.AdSetRow{
		{ID: "a", Status: models.StatusActive, Spend: 60, ROAS: 0.9},
		{ID: "b", Status: models.StatusActive, Spend: 200, ROAS: 3.1},
		{ID: "c", Status: models.StatusPaused, Spend: 80, ROAS: 0.2},
		{ID: "d", Status: models.StatusActive, Spend: 49, ROAS: 0.1},
		{ID: "e", Status: models.StatusActive, Spend: 70, ROAS: 0.4},
		{ID: "f", Status: models.StatusActive, Spend: 10, ROAS: 3.1},
	}

	top := Top(rows, TopN)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "f", "a"}, ids(top))

	flagged := Flagged(rows, 1.34)
	assert.Equal(t, []string{"e", "a"}, ids(flagged))
	for _, r := range flagged {
		assert.Equal(t, models.StatusActive, r.Status)
		assert.GreaterOrEqual(t, r.Spend, FlagMinSpend)
		assert.Less(t, r.ROAS, 1.34)
	}
	assert.Equal(t, "a", rows[0].ID, "input must not be reordered")
}

func TestAggregateEndToEnd(t *testing.T) {
	in := Input{
		Campaigns:     []models.Campaign{{ID: "1", Name: "C1", Status: models.ParseStatus("ACTIVE")}},
		AdSets:        []models.AdSet{{ID: "10", Name: "AS1", CampaignID: "1", Status: models.ParseStatus("ACTIVE"), DailyBudget: 20}},
		Insights:      []models.Insight{{AdSetID: "10", Spend: 60, Purchases: 1, Revenue: 50, ROAS: 0.83}},
		BreakEvenROAS: 1.34,
	}
	out := Aggregate(in)

	require.Len(t, out.AdSets, 1)
	assert.Equal(t, models.RecTurnOff, out.AdSets[0].Recommendation)
	require.Len(t, out.Flagged, 1)
	assert.Equal(t, "AS1", out.Flagged[0].Name)
	assert.InDelta(t, 0.83, out.Totals.ROAS, 0.01)
	require.Len(t, out.Campaigns, 1)
	assert.Equal(t, models.StatusActive, out.Campaigns[0].Status)

	assert.Equal(t, out, Aggregate(in), "aggregate must be idempotent")
}

func TestAggregateQueryScopesTotals(t *testing.T) {
	in := Input{
		AdSets: []models.AdSet{
			{ID: "1", Name: "Prospecting", Status: models.StatusActive},
			{ID: "2", Name: "Retargeting", Status: models.StatusPaused},
		},
		Insights: []models.Insight{
			{AdSetID: "1", Spend: 10, Revenue: 30, ROAS: 3},
			{AdSetID: "2", Spend: 40, Revenue: 20, ROAS: 0.5},
		},
		Query:         "retarget",
		BreakEvenROAS: 1.34,
	}
	out := Aggregate(in)
	require.Len(t, out.AdSets, 1)
	assert.Equal(t, 40.0, out.Totals.Spend)
	assert.Empty(t, out.Flagged, "paused rows are never flagged")

	in.Query = ""
	in.Status = StatusActive
	out = Aggregate(in)
	require.Len(t, out.AdSets, 1)
	assert.Equal(t, "1", out.AdSets[0].ID)
}

func TestAggregateDuplicateInsightsLastWins(t *testing.T) {
	out := Aggregate(Input{
		AdSets: []models.AdSet{{ID: "1"}},
		Insights: []models.Insight{
			{AdSetID: "1", Spend: 10, ROAS: 0.1},
			{AdSetID: "1", Spend: 20, ROAS: 5},
		},
		BreakEvenROAS: math.NaN(),
	})
	require.Len(t, out.AdSets, 1)
	assert.Equal(t, 20.0, out.AdSets[0].Spend)
	assert.Equal(t, models.RecKeep, out.AdSets[0].Recommendation)
	assert.Equal(t, 1, out.DuplicateInsights)
}

func TestAggregatePartialData(t *testing.T) {
	out := Aggregate(Input{Insights: []models.Insight{{AdSetID: "x", Spend: 5}}})
	assert.Empty(t, out.AdSets)
	assert.Empty(t, out.Top)
	assert.Empty(t, out.Flagged)
	assert.Equal(t, models.Totals{}, out.Totals)
}

func ids(rows []models.AdSetRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
