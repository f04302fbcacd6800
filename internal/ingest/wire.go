package ingest

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

// Number decodes a JSON number, a numeric string or null. Anything that does
// not parse to a finite value becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 {
	if n < 0 {
		return 0
	}
	return float64(n)
}

func (n Number) Int() int { return int(math.Round(n.Float())) }

// ID accepts both string and numeric identifiers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	*id = ID(string(b))
	return nil
}

type campaignWire struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type adSetWire struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	CampaignID      ID     `json:"campaign_id"`
	Status          string `json:"status"`
	DailyBudget     Number `json:"daily_budget"`
	LifetimeBudget  Number `json:"lifetime_budget"`
	BudgetRemaining Number `json:"budget_remaining"`
}

type insightWire struct {
	AdSetID   ID     `json:"adset_id"`
	Spend     Number `json:"spend"`
	Purchases Number `json:"purchases"`
	Revenue   Number `json:"revenue"`
	ROAS      Number `json:"roas"`
}

type statusBody struct {
	Status string `json:"status"`
}

func (w campaignWire) model() models.Campaign {
	return models.Campaign{
		ID:     string(w.ID),
		Name:   strings.TrimSpace(w.Name),
		Status: models.ParseStatus(w.Status),
	}
}

func (w adSetWire) model() models.AdSet {
	return models.AdSet{
		ID:              string(w.ID),
		Name:            strings.TrimSpace(w.Name),
		CampaignID:      string(w.CampaignID),
		Status:          models.ParseStatus(w.Status),
		DailyBudget:     w.DailyBudget.Float(),
		LifetimeBudget:  w.LifetimeBudget.Float(),
		BudgetRemaining: w.BudgetRemaining.Float(),
	}
}

func (w insightWire) model() models.Insight {
	return models.Insight{
		AdSetID:   string(w.AdSetID),
		Spend:     w.Spend.Float(),
		Purchases: w.Purchases.Int(),
		Revenue:   w.Revenue.Float(),
		ROAS:      w.ROAS.Float(),
	}
}
