package votes

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
)

// DefaultWindow is how long a voter is locked out after voting for a resource
const DefaultWindow = 24 * time.Hour

// Service records votes in a Store
type Service struct {
	store  Store
	window time.Duration
}

// NewService creates a vote service. A non-positive window uses DefaultWindow.
func NewService(store Store, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{store: store, window: window}
}

// Vote increments the ballot's counter unless the voter already voted for
// the resource within the window.
func (s *Service) Vote(ctx context.Context, b Ballot) (Tally, error) {
	if err := b.Validate(); err != nil {
		return Tally{}, err
	}

	key := ReceiptKey(b.ResourceID, b.Voter)
	claimed, err := s.store.Claim(ctx, key, s.window)
	if err != nil {
		return Tally{}, err
	}
	if !claimed {
		return Tally{}, ErrAlreadyVoted
	}

	count, err := s.store.Increment(ctx, b.ResourceID, b.Type)
	if err != nil {
		// let the voter retry
		if rerr := s.store.Release(ctx, key); rerr != nil {
			log.Error().Err(rerr).Str("resource_id", b.ResourceID).Msg("release vote receipt")
		}
		return Tally{}, err
	}

	return Tally{ResourceID: b.ResourceID, Type: b.Type, Count: count}, nil
}

// Counts returns the counters of every resource that received a vote
func (s *Service) Counts(ctx context.Context) (map[string]models.VoteCounts, error) {
	return s.store.Counts(ctx)
}

// Purge drops expired receipts
func (s *Service) Purge(ctx context.Context) (int64, error) {
	return s.store.PurgeExpired(ctx)
}

// ReceiptKey derives the receipt key for a voter and resource. An empty
// voter address counts as a single shared "unknown" voter.
func ReceiptKey(resourceID, voter string) string {
	if voter == "" {
		voter = "unknown"
	}
	sum := blake2b.Sum256([]byte("vote:" + resourceID + ":" + voter))
	return hex.EncodeToString(sum[:])
}
