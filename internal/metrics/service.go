package metrics

import (
	"math"
	"sort"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

const (
	DefaultBreakEvenROAS = 1.34
	// FlagMinSpend is the spend an active ad set needs before it can be flagged.
	FlagMinSpend = 50.0
	TopN         = 3
)

type Input struct {
	Campaigns     []models.Campaign
	AdSets        []models.AdSet
	Insights      []models.Insight
	Query         string
	BreakEvenROAS float64
	Status        StatusFilter
}

// Enrich joins an ad set with its insight and applies the break-even rule.
// A nil insight yields a zeroed row.
func Enrich(a models.AdSet, in *models.Insight, breakEven float64) models.AdSetRow {
	row := models.AdSetRow{
		ID:              a.ID,
		Name:            a.Name,
		CampaignID:      a.CampaignID,
		Status:          a.Status,
		DailyBudget:     Num(a.DailyBudget),
		LifetimeBudget:  Num(a.LifetimeBudget),
		BudgetRemaining: Num(a.BudgetRemaining),
	}
	if row.Status == "" {
		row.Status = models.StatusActive
	}
	if in != nil {
		row.Spend = Num(in.Spend)
		row.Revenue = Num(in.Revenue)
		row.ROAS = Num(in.ROAS)
		if in.Purchases > 0 {
			row.Purchases = in.Purchases
		}
	}
	if row.Purchases > 0 {
		cpp := row.Spend / float64(row.Purchases)
		row.CPP = &cpp
	}
	row.Recommendation = Recommend(row.Spend, row.ROAS, breakEven)
	return row
}

// Recommend is TurnOff when money was spent below break-even, Keep otherwise.
func Recommend(spend, roas, breakEven float64) models.Recommendation {
	if spend > 0 && roas < breakEven {
		return models.RecTurnOff
	}
	return models.RecKeep
}

func projectCampaign(c models.Campaign) models.CampaignRow {
	st := c.Status
	if st == "" {
		st = models.StatusActive
	}
	return models.CampaignRow{ID: c.ID, Name: c.Name, Status: st}
}

// Aggregate builds the full overview from raw backend records. It never
// fails: missing data yields zeroed rows and empty slices.
func Aggregate(in Input) models.Overview {
	breakEven := in.BreakEvenROAS
	if !ValidBreakEven(breakEven) {
		breakEven = DefaultBreakEvenROAS
	}

	byID := make(map[string]*models.Insight, len(in.Insights))
	dups := 0
	for i := range in.Insights {
		ins := &in.Insights[i]
		if _, ok := byID[ins.AdSetID]; ok {
			dups++
		}
		byID[ins.AdSetID] = ins // last write wins
	}

	campaigns := make([]models.CampaignRow, 0, len(in.Campaigns))
	for _, c := range in.Campaigns {
		campaigns = append(campaigns, projectCampaign(c))
	}
	adsets := make([]models.AdSetRow, 0, len(in.AdSets))
	for _, a := range in.AdSets {
		adsets = append(adsets, Enrich(a, byID[a.ID], breakEven))
	}

	campaigns = ByStatus(Filter(campaigns, in.Query, CampaignFields), in.Status)
	adsets = ByStatus(Filter(adsets, in.Query, AdSetFields), in.Status)

	return models.Overview{
		Campaigns:         campaigns,
		AdSets:            adsets,
		Totals:            ComputeTotals(adsets),
		Top:               Top(adsets, TopN),
		Flagged:           Flagged(adsets, breakEven),
		DuplicateInsights: dups,
	}
}

func ComputeTotals(rows []models.AdSetRow) models.Totals {
	var t models.Totals
	for _, r := range rows {
		t.Spend += r.Spend
		t.Purchases += r.Purchases
		t.Revenue += r.Revenue
	}
	t.ROAS = safeDiv(t.Revenue, t.Spend)
	t.CPP = safeDiv(t.Spend, float64(t.Purchases))
	return t
}

// Top returns up to n rows by descending ROAS. Ties keep input order.
func Top(rows []models.AdSetRow, n int) []models.AdSetRow {
	out := make([]models.AdSetRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ROAS > out[j].ROAS })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Flagged returns active rows that spent at least FlagMinSpend below
// break-even, worst ROAS first.
func Flagged(rows []models.AdSetRow, breakEven float64) []models.AdSetRow {
	out := make([]models.AdSetRow, 0)
	for _, r := range rows {
		if r.Status == models.StatusActive && r.Spend >= FlagMinSpend && r.ROAS < breakEven {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ROAS < out[j].ROAS })
	return out
}

// Num coerces a metric to a finite, non-negative value.
func Num(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// ValidBreakEven reports whether f can be used as a threshold.
func ValidBreakEven(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0 }

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
