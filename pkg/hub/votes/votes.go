// Package votes counts up and down votes per resource, at most one vote per
// voter and resource within a time window.
package votes

import (
	"context"
	"errors"
	"strings"

	"github.com/resourceshub/hub/pkg/hub/models"
)

var (
	// ErrAlreadyVoted is returned when the voter already voted for the resource within the window
	ErrAlreadyVoted = errors.New("you have already voted for this resource")
	// ErrInvalidBallot is returned for a missing resource ID or an unknown vote type
	ErrInvalidBallot = errors.New("invalid request")
	// ErrRateLimited is returned when a client sends votes faster than allowed
	ErrRateLimited = errors.New("too many requests")
	// ErrUnknownResource is returned when voting for a resource that is not in the catalog
	ErrUnknownResource = errors.New("resource not found")
	// ErrPending is returned with a provisional tally when the vote could not be confirmed yet
	ErrPending = errors.New("vote accepted, confirmation pending")
)

// Ballot is a single vote request
type Ballot struct {
	ResourceID string          `json:"resourceId"`
	Type       models.VoteType `json:"type"`
	Voter      string          `json:"-"` // client address; only its hash is stored
}

// Validate checks the ballot's resource ID and vote type
func (b Ballot) Validate() error {
	if strings.TrimSpace(b.ResourceID) == "" || !b.Type.Valid() {
		return ErrInvalidBallot
	}
	return nil
}

// Tally is the authoritative count after a vote was recorded
type Tally struct {
	ResourceID string          `json:"resourceId"`
	Type       models.VoteType `json:"type"`
	Count      int64           `json:"count"`
}

// Voter records votes and reports aggregate counts
type Voter interface {
	Vote(ctx context.Context, b Ballot) (Tally, error)
	Counts(ctx context.Context) (map[string]models.VoteCounts, error)
}
