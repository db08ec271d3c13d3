// Package refresh reloads the catalog and reconciles vote counts, on
// demand and on cron schedules.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/metrics"
	"github.com/rs/zerolog/log"
)

// ErrIncomplete is returned when a reload is discarded because some
// documents failed while a catalog was already published
var ErrIncomplete = errors.New("incomplete data load")

// Loader fetches the static documents
type Loader interface {
	LoadAll(ctx context.Context) (data.Bundle, error)
}

// Refresher reloads a catalog store from a loader
type Refresher struct {
	loader      Loader
	store       *catalog.Store
	metrics     *metrics.Metrics
	reportDupes bool
}

// New creates a refresher. m may be nil.
func New(loader Loader, store *catalog.Store, m *metrics.Metrics, reportDupes bool) *Refresher {
	return &Refresher{loader: loader, store: store, metrics: m, reportDupes: reportDupes}
}

// Reload fetches the documents, publishes a new snapshot and syncs votes.
// On the first load failed documents count as empty collections. Once a
// non-empty catalog is published, a load with failed documents is discarded
// and the current snapshot kept.
func (r *Refresher) Reload(ctx context.Context) error {
	start := time.Now()
	bundle, err := r.loader.LoadAll(ctx)
	if err == nil && !bundle.Complete() && len(r.store.Snapshot().Resources()) > 0 {
		err = fmt.Errorf("%w: %v", ErrIncomplete, bundle.Failed)
	}
	r.metrics.ObserveLoad(time.Since(start), err)
	if err != nil {
		if errors.Is(err, ErrIncomplete) {
			log.Warn().Strs("failed", bundle.Failed).Msg("keeping current catalog")
		}
		return err
	}

	if r.reportDupes {
		report := data.FindDuplicates(bundle.Resources)
		for _, id := range report.ExactIDs {
			log.Warn().Str("resource_id", id).Msg("duplicate resource id")
		}
		for _, d := range report.DuplicateURLs {
			log.Warn().Str("url", d.URL).Strs("resource_ids", d.ResourceIDs).Msg("url shared by resources")
		}
		for _, s := range report.SimilarTitles {
			log.Warn().Int("similarity", s.Similarity).Strs("resource_ids", s.ResourceIDs).Msg("similar titles")
		}
	}

	snap := r.store.Replace(bundle)
	log.Info().
		Int("resources", len(snap.Resources())).
		Int("categories", len(snap.Categories())).
		Int("tags", len(snap.Tags())).
		Dur("took", time.Since(start)).
		Msg("catalog loaded")

	if err := r.SyncVotes(ctx); err != nil {
		log.Warn().Err(err).Msg("vote sync after reload failed")
	}
	return nil
}

// SyncVotes reconciles the store's vote counts with the vote service
func (r *Refresher) SyncVotes(ctx context.Context) error {
	n, err := r.store.SyncVotes(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int("reconciled", n).Msg("pending votes reconciled")
	}
	return nil
}
