package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/telemetry"
)

// Backend is the companion ads API as seen by the dashboard.
type Backend interface {
	FetchCampaigns(ctx context.Context) ([]models.Campaign, error)
	FetchAdSets(ctx context.Context) ([]models.AdSet, error)
	FetchInsights(ctx context.Context, datePreset string) ([]models.Insight, error)
	SetStatus(ctx context.Context, kind models.Kind, id string, status models.Status) error
}

// Loader refreshes the store from the backend. The three collections are
// fetched independently; one failing does not hold back the others.
type Loader struct {
	be  Backend
	st  *store.MemoryStore
	log *slog.Logger
	tel *telemetry.Collectors

	mu     sync.RWMutex
	preset string
}

func NewLoader(be Backend, st *store.MemoryStore, log *slog.Logger, tel *telemetry.Collectors) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{be: be, st: st, log: log, tel: tel, preset: "today"}
}

// Preset returns the key of the date preset insights are loaded for.
func (l *Loader) Preset() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.preset
}

// SetPreset switches the insights window. It reports whether key was known;
// callers refresh afterwards.
func (l *Loader) SetPreset(key string) bool {
	p, ok := PresetByKey(key)
	if !ok {
		return false
	}
	l.mu.Lock()
	l.preset = p.Key
	l.mu.Unlock()
	return true
}

// Refresh replaces every collection with a fresh fetch. Failed sources keep
// their previous data; the joined error describes what failed.
func (l *Loader) Refresh(ctx context.Context) error {
	backendPreset := ""
	if p, ok := PresetByKey(l.Preset()); ok {
		backendPreset = p.Backend
	}

	var (
		g    errgroup.Group
		errs [3]error
	)
	g.Go(func() error {
		errs[0] = l.load(ctx, store.SourceCampaigns, func(seq uint64) (int, bool, error) {
			rows, err := l.be.FetchCampaigns(ctx)
			if err != nil {
				return 0, false, err
			}
			return len(rows), l.st.CompleteCampaigns(seq, rows), nil
		})
		return nil
	})
	g.Go(func() error {
		errs[1] = l.load(ctx, store.SourceAdSets, func(seq uint64) (int, bool, error) {
			rows, err := l.be.FetchAdSets(ctx)
			if err != nil {
				return 0, false, err
			}
			return len(rows), l.st.CompleteAdSets(seq, rows), nil
		})
		return nil
	})
	g.Go(func() error {
		errs[2] = l.load(ctx, store.SourceInsights, func(seq uint64) (int, bool, error) {
			rows, err := l.be.FetchInsights(ctx, backendPreset)
			if err != nil {
				return 0, false, err
			}
			return len(rows), l.st.CompleteInsights(seq, rows), nil
		})
		return nil
	})
	_ = g.Wait()
	return errors.Join(errs[:]...)
}

// load runs one fetch for src. fetch reports whether the store accepted the
// rows; a stale response leaves the gauge and the log alone.
func (l *Loader) load(ctx context.Context, src store.Source, fetch func(seq uint64) (int, bool, error)) error {
	seq := l.st.Begin(src)
	n, accepted, err := fetch(seq)
	if err != nil {
		l.st.Fail(src, seq, err)
		l.tel.SourceFailed(string(src))
		l.log.WarnContext(ctx, "source refresh failed", slog.String("source", string(src)), slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", src, err)
	}
	if !accepted {
		l.log.DebugContext(ctx, "stale response discarded", slog.String("source", string(src)), slog.Uint64("seq", seq))
		return nil
	}
	l.tel.SetRows(string(src), n)
	l.log.DebugContext(ctx, "source refreshed", slog.String("source", string(src)), slog.Int("rows", n))
	return nil
}

// Run refreshes every interval until ctx is done. A zero interval only
// performs the initial load.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	if err := l.Refresh(ctx); err != nil {
		l.log.Warn("initial load incomplete", slog.String("err", err.Error()))
	}
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := l.Refresh(ctx); err != nil {
				l.log.Warn("refresh incomplete", slog.String("err", err.Error()))
			}
		}
	}
}
