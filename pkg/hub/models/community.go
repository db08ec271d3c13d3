package models

// CommunityMetrics holds crowd-sourced signals about a resource.
// All counters are non-negative.
type CommunityMetrics struct {
	Upvotes      int64 `json:"upvotes"`
	Downvotes    int64 `json:"downvotes"`
	WorkingCount int64 `json:"workingCount"`
	BrokenCount  int64 `json:"brokenCount"`
	ScamReports  int64 `json:"scamReports"`
}

// Score is upvotes minus downvotes
func (c *CommunityMetrics) Score() int64 {
	if c == nil {
		return 0
	}
	return c.Upvotes - c.Downvotes
}

// TrustScore is the upvote share as a percentage, 0 when nobody has voted
func (c *CommunityMetrics) TrustScore() float64 {
	if c == nil {
		return 0
	}
	total := c.Upvotes + c.Downvotes
	if total == 0 {
		return 0
	}
	return float64(c.Upvotes) / float64(total) * 100
}

// WorkingRatio is the share of "working" reports as a percentage.
// With no reports at all the resource is assumed to work (100).
func (c *CommunityMetrics) WorkingRatio() float64 {
	if c == nil {
		return 100
	}
	total := c.WorkingCount + c.BrokenCount
	if total == 0 {
		return 100
	}
	return float64(c.WorkingCount) / float64(total) * 100
}
