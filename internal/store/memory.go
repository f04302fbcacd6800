package store

import (
	"sync"
	"time"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
)

type Source string

const (
	SourceCampaigns Source = "campaigns"
	SourceAdSets    Source = "adsets"
	SourceInsights  Source = "insights"
)

var Sources = []Source{SourceCampaigns, SourceAdSets, SourceInsights}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// SourceStatus describes where one source is in its load cycle.
type SourceStatus struct {
	Source    Source    `json:"source"`
	State     State     `json:"state"`
	Rows      int       `json:"rows"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type sourceState struct {
	state     State
	seq       uint64 // last issued
	applied   uint64 // last completed or failed
	err       error
	updatedAt time.Time
}

// Snapshot is an immutable copy of the three collections.
type Snapshot struct {
	Campaigns []models.Campaign
	AdSets    []models.AdSet
	Insights  []models.Insight
}

// MemoryStore keeps the latest snapshot of each backend collection. Each
// collection is replaced wholesale; older responses are discarded by sequence.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns []models.Campaign
	adsets    []models.AdSet
	insights  []models.Insight
	states    map[Source]*sourceState
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		states: make(map[Source]*sourceState, len(Sources)),
		now:    time.Now,
	}
	for _, src := range Sources {
		s.states[src] = &sourceState{state: StateIdle}
	}
	return s
}

// Begin marks src as loading and returns the ticket the result must carry.
func (s *MemoryStore) Begin(src Source) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(src)
	st.seq++
	st.state = StateLoading
	return st.seq
}

// CompleteCampaigns replaces the campaign collection if seq is not stale.
func (s *MemoryStore) CompleteCampaigns(seq uint64, rows []models.Campaign) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(SourceCampaigns, seq) {
		return false
	}
	s.campaigns = append([]models.Campaign(nil), rows...)
	return true
}

func (s *MemoryStore) CompleteAdSets(seq uint64, rows []models.AdSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(SourceAdSets, seq) {
		return false
	}
	s.adsets = append([]models.AdSet(nil), rows...)
	return true
}

func (s *MemoryStore) CompleteInsights(seq uint64, rows []models.Insight) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(SourceInsights, seq) {
		return false
	}
	s.insights = append([]models.Insight(nil), rows...)
	return true
}

// Fail records err for src and keeps the previous data.
func (s *MemoryStore) Fail(src Source, seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(src)
	if seq <= st.applied {
		return false
	}
	st.applied = seq
	st.err = err
	st.updatedAt = s.now()
	if seq == st.seq {
		st.state = StateError
	}
	return true
}

// accept must be called with mu held.
func (s *MemoryStore) accept(src Source, seq uint64) bool {
	st := s.state(src)
	if seq <= st.applied {
		return false
	}
	st.applied = seq
	st.err = nil
	st.updatedAt = s.now()
	if seq == st.seq {
		st.state = StateReady
	}
	return true
}

func (s *MemoryStore) state(src Source) *sourceState {
	st, ok := s.states[src]
	if !ok {
		st = &sourceState{state: StateIdle}
		s.states[src] = st
	}
	return st
}

func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Campaigns: append([]models.Campaign(nil), s.campaigns...),
		AdSets:    append([]models.AdSet(nil), s.adsets...),
		Insights:  append([]models.Insight(nil), s.insights...),
	}
}

func (s *MemoryStore) Statuses() []SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SourceStatus, 0, len(Sources))
	for _, src := range Sources {
		st := s.states[src]
		ss := SourceStatus{Source: src, State: st.state, Rows: s.rows(src), UpdatedAt: st.updatedAt}
		if st.err != nil {
			ss.Error = st.err.Error()
		}
		out = append(out, ss)
	}
	return out
}

func (s *MemoryStore) rows(src Source) int {
	switch src {
	case SourceCampaigns:
		return len(s.campaigns)
	case SourceAdSets:
		return len(s.adsets)
	case SourceInsights:
		return len(s.insights)
	}
	return 0
}

// Ready reports whether every source has finished at least one load,
// successfully or not.
func (s *MemoryStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, src := range Sources {
		if s.states[src].applied == 0 {
			return false
		}
	}
	return true
}
