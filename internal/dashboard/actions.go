package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/telemetry"
)

var ErrRowNotFound = errors.New("dashboard: row not found")

// NextStatus is the status a toggle asks for.
func NextStatus(current models.Status) models.Status {
	if current == models.StatusPaused {
		return models.StatusActive
	}
	return models.StatusPaused
}

type ToggleResult struct {
	Ref       models.RowRef `json:"ref"`
	Requested models.Status `json:"requested"`
	Reloaded  bool          `json:"reloaded"`
	ReloadErr string        `json:"reload_error,omitempty"`
}

// Toggler flips a row's status through the backend and then reloads
// everything. Canonical data is never edited locally.
type Toggler struct {
	be     Backend
	st     *store.MemoryStore
	loader *Loader
	log    *slog.Logger
	tel    *telemetry.Collectors

	mu sync.Mutex
}

func NewToggler(be Backend, st *store.MemoryStore, loader *Loader, log *slog.Logger, tel *telemetry.Collectors) *Toggler {
	if log == nil {
		log = slog.Default()
	}
	return &Toggler{be: be, st: st, loader: loader, log: log, tel: tel}
}

func (t *Toggler) Toggle(ctx context.Context, ref models.RowRef) (ToggleResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := currentStatus(t.st.Snapshot(), ref)
	if !ok {
		return ToggleResult{}, fmt.Errorf("%w: %s %s", ErrRowNotFound, ref.Kind, ref.ID)
	}
	next := NextStatus(current)
	if err := t.be.SetStatus(ctx, ref.Kind, ref.ID, next); err != nil {
		t.log.ErrorContext(ctx, "status toggle failed",
			slog.String("kind", string(ref.Kind)), slog.String("id", ref.ID), slog.String("err", err.Error()))
		return ToggleResult{}, fmt.Errorf("dashboard: toggle %s %s: %w", ref.Kind, ref.ID, err)
	}
	t.tel.Toggled(string(ref.Kind), next.Wire())
	t.log.InfoContext(ctx, "status toggled",
		slog.String("kind", string(ref.Kind)), slog.String("id", ref.ID), slog.String("status", next.Wire()))

	res := ToggleResult{Ref: ref, Requested: next, Reloaded: true}
	if err := t.loader.Refresh(ctx); err != nil {
		res.Reloaded = false
		res.ReloadErr = err.Error()
	}
	return res, nil
}

func currentStatus(snap store.Snapshot, ref models.RowRef) (models.Status, bool) {
	switch ref.Kind {
	case models.KindCampaign:
		for _, c := range snap.Campaigns {
			if c.ID == ref.ID {
				return c.Status, true
			}
		}
	case models.KindAdSet:
		for _, a := range snap.AdSets {
			if a.ID == ref.ID {
				return a.Status, true
			}
		}
	}
	return "", false
}
