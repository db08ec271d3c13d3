package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/metrics"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/resourceshub/hub/pkg/hub/votes"
	"github.com/rs/zerolog/log"
)

type voteKey struct {
	id string
	t  models.VoteType
}

// Store owns the current snapshot. Readers never lock; writers serialize on mu.
//
// Displayed vote counts are derived from three layers: the counts in the
// loaded data, the last authoritative count seen from the vote service, and
// optimistic votes that the service has not confirmed yet.
type Store struct {
	current atomic.Pointer[Snapshot]
	voter   votes.Voter
	metrics *metrics.Metrics

	mu        sync.Mutex
	base      *Snapshot
	confirmed map[voteKey]int64
	pending   map[voteKey]int64
}

// NewStore creates a store holding an empty snapshot. voter may be nil, in
// which case votes are rejected. m may be nil.
func NewStore(voter votes.Voter, m *metrics.Metrics) *Store {
	s := &Store{
		voter:     voter,
		metrics:   m,
		base:      Empty(),
		confirmed: make(map[voteKey]int64),
		pending:   make(map[voteKey]int64),
	}
	s.current.Store(s.base)
	return s
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace publishes a snapshot built from b, keeping known vote counts
func (s *Store) Replace(b data.Bundle) *Snapshot {
	base := Load(b)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = base
	snap := s.rebuildLocked()
	s.metrics.SetCatalog(snap.StatusCounts(), snap.Stats().UsedCategories, snap.Stats().UnusedCategories)
	return snap
}

// Vote applies the ballot optimistically, then forwards it to the vote
// service. The count is replaced by the service's value on success and
// rolled back when the service rejects the vote. When the service cannot be
// reached the optimistic vote stays pending until the next SyncVotes and
// the returned error wraps votes.ErrPending.
func (s *Store) Vote(ctx context.Context, b votes.Ballot) (votes.Tally, error) {
	if err := b.Validate(); err != nil {
		return votes.Tally{}, err
	}
	if s.voter == nil {
		return votes.Tally{}, errors.New("voting is not configured")
	}

	k := voteKey{b.ResourceID, b.Type}
	s.mu.Lock()
	next, ok := ApplyVote(s.current.Load(), b.ResourceID, b.Type, 1)
	if !ok {
		s.mu.Unlock()
		return votes.Tally{}, votes.ErrUnknownResource
	}
	s.pending[k]++
	s.current.Store(next)
	s.metrics.SetPendingVotes(s.pendingCountLocked())
	s.mu.Unlock()

	tally, err := s.voter.Vote(ctx, b)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.resolveLocked(k)
		if tally.Count > s.confirmed[k] {
			s.confirmed[k] = tally.Count
		}
		s.publishLocked(k)
		s.metrics.ObserveVote(string(b.Type), "ok")
		return tally, nil

	case errors.Is(err, votes.ErrAlreadyVoted), errors.Is(err, votes.ErrInvalidBallot), errors.Is(err, votes.ErrRateLimited):
		s.resolveLocked(k)
		s.publishLocked(k)
		s.metrics.ObserveVote(string(b.Type), "rejected")
		return votes.Tally{}, err

	default:
		log.Warn().Err(err).Str("resource_id", b.ResourceID).Str("type", string(b.Type)).Msg("vote left pending")
		s.metrics.ObserveVote(string(b.Type), "pending")
		return votes.Tally{ResourceID: b.ResourceID, Type: b.Type, Count: s.displayLocked(k)},
			fmt.Errorf("%w: %v", votes.ErrPending, err)
	}
}

// Counts returns the vote service's counts
func (s *Store) Counts(ctx context.Context) (map[string]models.VoteCounts, error) {
	if s.voter == nil {
		return map[string]models.VoteCounts{}, nil
	}
	return s.voter.Counts(ctx)
}

// SyncVotes replaces every count the vote service reports and drops pending
// optimistic votes. Resources the service has no votes for fall back to the
// loaded counts. It returns the number of pending entries
// that were reconciled.
func (s *Store) SyncVotes(ctx context.Context) (int, error) {
	if s.voter == nil {
		return 0, nil
	}
	counts, err := s.voter.Counts(ctx)
	if err != nil {
		return 0, fmt.Errorf("sync votes: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	authoritative := make(map[voteKey]int64, 2*len(counts))
	for id, vc := range counts {
		authoritative[voteKey{id, models.VoteUp}] = vc.Upvotes
		authoritative[voteKey{id, models.VoteDown}] = vc.Downvotes
	}

	reconciled := 0
	for k, n := range s.pending {
		if n <= 0 {
			continue
		}
		reconciled++
		shown := s.displayLocked(k)
		got, ok := authoritative[k]
		if !ok {
			got = s.baseCount(k)
		}
		if got != shown {
			log.Info().Str("resource_id", k.id).Str("type", string(k.t)).
				Int64("shown", shown).Int64("service", got).Msg("vote count diverged")
		}
	}

	s.confirmed = authoritative
	s.pending = make(map[voteKey]int64)
	s.rebuildLocked()
	s.metrics.SetPendingVotes(0)
	return reconciled, nil
}

// Pending returns the number of unconfirmed optimistic votes
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingCountLocked()
}

func (s *Store) resolveLocked(k voteKey) {
	if s.pending[k] > 0 {
		s.pending[k]--
	}
	if s.pending[k] == 0 {
		delete(s.pending, k)
	}
	s.metrics.SetPendingVotes(s.pendingCountLocked())
}

func (s *Store) pendingCountLocked() int {
	n := 0
	for _, c := range s.pending {
		n += int(c)
	}
	return n
}

func (s *Store) baseCount(k voteKey) int64 {
	r, ok := s.base.Resource(k.id)
	if !ok {
		return 0
	}
	up, down := r.Votes()
	if k.t == models.VoteDown {
		return down
	}
	return up
}

// displayLocked is the count shown for k: the confirmed count when the
// service has reported one, else the loaded count, plus pending votes.
func (s *Store) displayLocked(k voteKey) int64 {
	n, ok := s.confirmed[k]
	if !ok {
		n = s.baseCount(k)
	}
	return n + s.pending[k]
}

func (s *Store) publishLocked(k voteKey) {
	if next, ok := SetVoteCount(s.current.Load(), k.id, k.t, s.displayLocked(k)); ok {
		s.current.Store(next)
	}
}

// rebuildLocked derives the current snapshot from base and the vote layers
func (s *Store) rebuildLocked() *Snapshot {
	overlay := make(map[string]models.VoteCounts)
	touch := func(k voteKey) {
		if _, ok := s.base.Resource(k.id); !ok {
			return
		}
		vc := overlay[k.id]
		vc.Upvotes = s.displayLocked(voteKey{k.id, models.VoteUp})
		vc.Downvotes = s.displayLocked(voteKey{k.id, models.VoteDown})
		overlay[k.id] = vc
	}
	for k := range s.confirmed {
		touch(k)
	}
	for k := range s.pending {
		touch(k)
	}
	snap := ApplyVoteCounts(s.base, overlay)
	s.current.Store(snap)
	return snap
}
