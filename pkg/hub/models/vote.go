package models

import (
	"time"
)

// VoteType is the direction of a vote
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether t is up or down
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// VoteCounts is the aggregate tally for one resource
type VoteCounts struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// Get returns the count for the given direction
func (v VoteCounts) Get(t VoteType) int64 {
	if t == VoteDown {
		return v.Downvotes
	}
	return v.Upvotes
}

// VoteCount is a persisted counter, one row per resource and direction
type VoteCount struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
	ResourceID string    `gorm:"not null;uniqueIndex:idx_vote_resource_type" json:"resource_id"`
	Type       VoteType  `gorm:"type:varchar(8);not null;uniqueIndex:idx_vote_resource_type" json:"type"`
	Count      int64     `gorm:"not null;default:0" json:"count"`
}

// VoteReceipt marks that a voter already voted for a resource.
// Hash is derived from the resource ID and the voter's address, never the address itself.
type VoteReceipt struct {
	Hash      string    `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}
