package models

import "strings"

type Status string

const (
	StatusActive Status = "Active"
	StatusPaused Status = "Paused"
)

// ParseStatus maps the backend value onto the two display states. Only the
// exact value "PAUSED" is Paused; anything else, "paused" included, is Active.
func ParseStatus(s string) Status {
	if s == "PAUSED" {
		return StatusPaused
	}
	return StatusActive
}

// Wire returns the value the backend expects in a status update.
func (s Status) Wire() string {
	if s == StatusPaused {
		return "PAUSED"
	}
	return "ACTIVE"
}

type Recommendation string

const (
	RecKeep    Recommendation = "Keep"
	RecTurnOff Recommendation = "Turn off"
	// Scale and TooEarly are display labels only; no rule emits them yet.
	RecScale    Recommendation = "Scale"
	RecTooEarly Recommendation = "Too early"
)

type Kind string

const (
	KindCampaign Kind = "campaign"
	KindAdSet    Kind = "adset"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCampaign, "campaigns":
		return KindCampaign, true
	case KindAdSet, "adsets", "ad_set", "ad-set":
		return KindAdSet, true
	}
	return "", false
}

type Campaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

type AdSet struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CampaignID      string  `json:"campaign_id"`
	Status          Status  `json:"status"`
	DailyBudget     float64 `json:"daily_budget"`
	LifetimeBudget  float64 `json:"lifetime_budget"`
	BudgetRemaining float64 `json:"budget_remaining"`
}

type Insight struct {
	AdSetID   string  `json:"adset_id"`
	Spend     float64 `json:"spend"`
	Purchases int     `json:"purchases"`
	Revenue   float64 `json:"revenue"`
	ROAS      float64 `json:"roas"`
}

// CampaignRow is the filterable projection of a campaign. The backend has no
// campaign-level insights so the performance fields stay zero.
type CampaignRow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Status    Status   `json:"status"`
	Spend     float64  `json:"spend"`
	Purchases int      `json:"purchases"`
	Revenue   float64  `json:"revenue"`
	ROAS      float64  `json:"roas"`
	CPP       *float64 `json:"cpp"`
}

type AdSetRow struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	CampaignID      string         `json:"campaign_id"`
	Status          Status         `json:"status"`
	DailyBudget     float64        `json:"daily_budget"`
	LifetimeBudget  float64        `json:"lifetime_budget"`
	BudgetRemaining float64        `json:"budget_remaining"`
	Spend           float64        `json:"spend"`
	Purchases       int            `json:"purchases"`
	Revenue         float64        `json:"revenue"`
	ROAS            float64        `json:"roas"`
	CPP             *float64       `json:"cpp"`
	Recommendation  Recommendation `json:"recommendation"`
}

// Row is either a campaign or an ad set, discriminated by Kind.
type Row struct {
	Kind     Kind         `json:"kind"`
	Campaign *CampaignRow `json:"campaign,omitempty"`
	AdSet    *AdSetRow    `json:"adset,omitempty"`
}

func (r Row) ID() string {
	switch r.Kind {
	case KindCampaign:
		if r.Campaign != nil {
			return r.Campaign.ID
		}
	case KindAdSet:
		if r.AdSet != nil {
			return r.AdSet.ID
		}
	}
	return ""
}

func (r Row) Name() string {
	switch {
	case r.Kind == KindCampaign && r.Campaign != nil:
		return r.Campaign.Name
	case r.Kind == KindAdSet && r.AdSet != nil:
		return r.AdSet.Name
	}
	return ""
}

func (r Row) Status() Status {
	switch {
	case r.Kind == KindCampaign && r.Campaign != nil:
		return r.Campaign.Status
	case r.Kind == KindAdSet && r.AdSet != nil:
		return r.AdSet.Status
	}
	return StatusActive
}

// RowRef identifies a row without carrying its data.
type RowRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

type Totals struct {
	Spend     float64 `json:"spend"`
	Purchases int     `json:"purchases"`
	Revenue   float64 `json:"revenue"`
	ROAS      float64 `json:"roas"`
	CPP       float64 `json:"cpp"`
}

type Overview struct {
	Campaigns         []CampaignRow `json:"campaigns"`
	AdSets            []AdSetRow    `json:"adsets"`
	Totals            Totals        `json:"totals"`
	Top               []AdSetRow    `json:"top"`
	Flagged           []AdSetRow    `json:"flagged"`
	DuplicateInsights int           `json:"duplicate_insights"`
}

// Field returns the searchable string form of a named column.
func (c CampaignRow) Field(name string) string {
	switch name {
	case "id":
		return c.ID
	case "name":
		return c.Name
	case "status":
		return string(c.Status)
	}
	return ""
}

func (a AdSetRow) Field(name string) string {
	switch name {
	case "id":
		return a.ID
	case "name":
		return a.Name
	case "campaign", "campaign_id":
		return a.CampaignID
	case "status":
		return string(a.Status)
	case "recommendation", "rec":
		return string(a.Recommendation)
	}
	return ""
}
