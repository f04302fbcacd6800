package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("store: not found")

// Backend-shaped records, as served by the stub backend.
type FixtureCampaign struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status" json:"status"`
}

type FixtureAdSet struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	CampaignID      string  `yaml:"campaign_id" json:"campaign_id"`
	Status          string  `yaml:"status" json:"status"`
	DailyBudget     float64 `yaml:"daily_budget" json:"daily_budget"`
	LifetimeBudget  float64 `yaml:"lifetime_budget" json:"lifetime_budget"`
	BudgetRemaining float64 `yaml:"budget_remaining" json:"budget_remaining"`
}

type FixtureInsight struct {
	AdSetID   string  `yaml:"adset_id" json:"adset_id"`
	Spend     float64 `yaml:"spend" json:"spend"`
	Purchases int     `yaml:"purchases" json:"purchases"`
	Revenue   float64 `yaml:"revenue" json:"revenue"`
	ROAS      float64 `yaml:"roas" json:"roas"`
}

type Fixture struct {
	Campaigns []FixtureCampaign `yaml:"campaigns"`
	AdSets    []FixtureAdSet    `yaml:"adsets"`
	Insights  []FixtureInsight  `yaml:"insights"`
}

func LoadFixture(path string) (Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("store: read fixture: %w", err)
	}
	return ParseFixture(b)
}

func ParseFixture(b []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixture{}, fmt.Errorf("store: parse fixture: %w", err)
	}
	return f, nil
}

// FixtureStore is the mutable state behind the stub backend.
type FixtureStore struct {
	mu sync.RWMutex
	f  Fixture
}

func NewFixtureStore(f Fixture) *FixtureStore {
	return &FixtureStore{f: f}
}

func (s *FixtureStore) Campaigns() []FixtureCampaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FixtureCampaign{}, s.f.Campaigns...)
}

func (s *FixtureStore) AdSets() []FixtureAdSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FixtureAdSet{}, s.f.AdSets...)
}

func (s *FixtureStore) Insights() []FixtureInsight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FixtureInsight{}, s.f.Insights...)
}

func normStatus(status string) (string, error) {
	switch st := strings.ToUpper(strings.TrimSpace(status)); st {
	case "ACTIVE", "PAUSED":
		return st, nil
	}
	return "", fmt.Errorf("store: invalid status %q", status)
}

func (s *FixtureStore) SetCampaignStatus(id, status string) error {
	st, err := normStatus(status)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.f.Campaigns {
		if s.f.Campaigns[i].ID == id {
			s.f.Campaigns[i].Status = st
			return nil
		}
	}
	return ErrNotFound
}

func (s *FixtureStore) SetAdSetStatus(id, status string) error {
	st, err := normStatus(status)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.f.AdSets {
		if s.f.AdSets[i].ID == id {
			s.f.AdSets[i].Status = st
			return nil
		}
	}
	return ErrNotFound
}
