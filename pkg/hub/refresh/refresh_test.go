package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/resourceshub/hub/pkg/hub/votes"
)

type fakeLoader struct {
	bundle data.Bundle
	err    error
	calls  int
}

func (f *fakeLoader) LoadAll(ctx context.Context) (data.Bundle, error) {
	f.calls++
	return f.bundle, f.err
}

type countsVoter struct {
	counts map[string]models.VoteCounts
	err    error
}

func (v countsVoter) Vote(ctx context.Context, b votes.Ballot) (votes.Tally, error) {
	return votes.Tally{}, errors.New("not used")
}

func (v countsVoter) Counts(ctx context.Context) (map[string]models.VoteCounts, error) {
	return v.counts, v.err
}

func bundle() data.Bundle {
	r := func(id string) models.Resource {
		return models.Resource{
			ID:         id,
			Title:      "Title " + id,
			Links:      []models.Link{{URL: "https://example.com/" + id}},
			Categories: []string{"c1"},
			Status:     models.StatusActive,
		}
	}
	return data.Bundle{
		Resources:  []models.Resource{r("r1"), r("r2")},
		Categories: []models.Category{{ID: "c1", Name: "One"}},
	}
}

func TestReload(t *testing.T) {
	loader := &fakeLoader{bundle: bundle()}
	store := catalog.NewStore(countsVoter{counts: map[string]models.VoteCounts{"r2": {Upvotes: 4}}}, nil)
	r := New(loader, store, nil, true)

	require.NoError(t, r.Reload(context.Background()))

	snap := store.Snapshot()
	assert.Len(t, snap.Resources(), 2)
	res, ok := snap.Resource("r2")
	require.True(t, ok)
	up, _ := res.Votes()
	assert.Equal(t, int64(4), up, "votes are synced after a reload")
}

func TestReloadKeepsSnapshotOnError(t *testing.T) {
	loader := &fakeLoader{bundle: bundle()}
	store := catalog.NewStore(nil, nil)
	r := New(loader, store, nil, false)
	require.NoError(t, r.Reload(context.Background()))
	before := store.Snapshot()

	loader.err = context.Canceled
	assert.ErrorIs(t, r.Reload(context.Background()), context.Canceled)
	assert.Same(t, before, store.Snapshot())
}

func TestReloadKeepsCatalogWhenDocumentFails(t *testing.T) {
	loader := &fakeLoader{bundle: bundle()}
	store := catalog.NewStore(nil, nil)
	r := New(loader, store, nil, false)
	require.NoError(t, r.Reload(context.Background()))
	before := store.Snapshot()

	loader.bundle = data.Bundle{
		Resources:  []models.Resource{},
		Categories: bundle().Categories,
		Failed:     []string{"resources/all-resources.json"},
	}
	assert.ErrorIs(t, r.Reload(context.Background()), ErrIncomplete)
	assert.Same(t, before, store.Snapshot())
	assert.Len(t, store.Snapshot().Resources(), 2)

	loader.bundle = bundle()
	require.NoError(t, r.Reload(context.Background()))
	assert.NotSame(t, before, store.Snapshot())
}

func TestFirstReloadAcceptsFailedDocuments(t *testing.T) {
	b := bundle()
	b.Tags = []models.Tag{}
	b.Failed = []string{"tags/tags.json"}
	loader := &fakeLoader{bundle: b}
	store := catalog.NewStore(nil, nil)
	r := New(loader, store, nil, false)

	require.NoError(t, r.Reload(context.Background()))
	assert.Len(t, store.Snapshot().Resources(), 2)
}

func TestReloadSurvivesVoteServiceOutage(t *testing.T) {
	loader := &fakeLoader{bundle: bundle()}
	store := catalog.NewStore(countsVoter{err: errors.New("connection refused")}, nil)
	r := New(loader, store, nil, false)

	require.NoError(t, r.Reload(context.Background()))
	assert.Len(t, store.Snapshot().Resources(), 2)
	assert.Error(t, r.SyncVotes(context.Background()))
}
