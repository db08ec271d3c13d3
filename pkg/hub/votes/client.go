package votes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
)

// Client talks to a remote vote service that serves the same API as Handler
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetry   time.Duration
}

// NewClient creates a client for the service at baseURL. Transient failures
// are retried with exponential backoff for at most maxRetry.
func NewClient(baseURL string, timeout, maxRetry time.Duration) *Client {
	if maxRetry <= 0 {
		maxRetry = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetry:   maxRetry,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// CountsResponse is the body of GET /api/resources/votes
type CountsResponse struct {
	Votes map[string]models.VoteCounts `json:"votes"`
}

func (c *Client) Vote(ctx context.Context, b Ballot) (Tally, error) {
	if err := b.Validate(); err != nil {
		return Tally{}, err
	}
	body, err := json.Marshal(b)
	if err != nil {
		return Tally{}, err
	}

	var tally Tally
	err = c.retry(ctx, "vote", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/vote", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if b.Voter != "" {
			req.Header.Set("X-Forwarded-For", b.Voter)
		}
		return c.do(req, &tally)
	})
	return tally, err
}

func (c *Client) Counts(ctx context.Context) (map[string]models.VoteCounts, error) {
	var resp CountsResponse
	err := c.retry(ctx, "counts", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/resources/votes", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		return c.do(req, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Votes == nil {
		resp.Votes = map[string]models.VoteCounts{}
	}
	return resp.Votes, nil
}

func (c *Client) retry(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = c.maxRetry
	return backoff.RetryNotify(fn, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Dur("retry_in", wait).Msg("vote service request failed")
	})
}

// do sends req and decodes a 200 or 202 response into v. Client errors are
// permanent; everything else is retried.
func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusAccepted:
		if err := json.Unmarshal(raw, v); err != nil {
			return backoff.Permanent(fmt.Errorf("decode vote service response: %w", err))
		}
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return backoff.Permanent(ErrInvalidBallot)
	case resp.StatusCode == http.StatusTooManyRequests:
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error == ErrRateLimited.Error() {
			return backoff.Permanent(ErrRateLimited)
		}
		return backoff.Permanent(ErrAlreadyVoted)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(fmt.Errorf("vote service: %s", resp.Status))
	default:
		return fmt.Errorf("vote service: %s", resp.Status)
	}
}
