package votes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
)

// Handler serves the vote API
type Handler struct {
	voter   Voter
	limiter *RateLimiter
}

// NewHandler creates a vote handler. limiter may be nil to disable rate limiting.
func NewHandler(voter Voter, limiter *RateLimiter) *Handler {
	return &Handler{voter: voter, limiter: limiter}
}

// VoteRequest is the body of POST /api/vote
type VoteRequest struct {
	ResourceID string          `json:"resourceId"`
	Type       models.VoteType `json:"type"`
}

// Vote records an up or down vote from the requesting client
func (h *Handler) Vote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidBallot.Error()})
		return
	}

	tally, err := h.voter.Vote(c.Request.Context(), Ballot{
		ResourceID: req.ResourceID,
		Type:       req.Type,
		Voter:      c.ClientIP(),
	})
	if errors.Is(err, ErrPending) {
		c.JSON(http.StatusAccepted, tally)
		return
	}
	if err != nil {
		status := StatusFor(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("resource_id", req.ResourceID).Msg("vote failed")
			c.JSON(status, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tally)
}

// Counts lists the vote counts of every resource that has votes
func (h *Handler) Counts(c *gin.Context) {
	counts, err := h.voter.Counts(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list vote counts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if counts == nil {
		counts = map[string]models.VoteCounts{}
	}
	c.JSON(http.StatusOK, CountsResponse{Votes: counts})
}

// StatusFor maps vote errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidBallot):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownResource):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyVoted), errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// RegisterRoutes registers vote routes on the /api group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	if h.limiter != nil {
		rg.POST("/vote", h.limiter.Middleware(), h.Vote)
	} else {
		rg.POST("/vote", h.Vote)
	}
	rg.GET("/resources/votes", h.Counts)
}
