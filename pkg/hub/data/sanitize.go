package data

import (
	"fmt"

	"github.com/resourceshub/hub/pkg/hub/models"
)

// Problem describes one record that was dropped or repaired
type Problem struct {
	Index      int    `json:"index"`
	ResourceID string `json:"resourceId,omitempty"`
	Message    string `json:"message"`
	Dropped    bool   `json:"dropped"`
}

func (p Problem) String() string {
	id := p.ResourceID
	if id == "" {
		id = fmt.Sprintf("#%d", p.Index)
	}
	return fmt.Sprintf("%s: %s", id, p.Message)
}

// Sanitize drops resources that would break the browse pipeline and
// repairs the ones that only carry bad optional values. The input is not
// modified; order of the kept resources is preserved.
func Sanitize(resources []models.Resource) ([]models.Resource, []Problem) {
	out := make([]models.Resource, 0, len(resources))
	var problems []Problem
	seen := make(map[string]bool, len(resources))

	drop := func(i int, r models.Resource, msg string) {
		problems = append(problems, Problem{Index: i, ResourceID: r.ID, Message: msg, Dropped: true})
	}

	for i, r := range resources {
		switch {
		case r.ID == "":
			drop(i, r, "missing id")
			continue
		case seen[r.ID]:
			drop(i, r, "duplicate id")
			continue
		case r.Title == "":
			drop(i, r, "missing title")
			continue
		case len(r.Categories) == 0 || r.Categories[0] == "":
			drop(i, r, "missing primary category")
			continue
		case !hasUsableLink(r.Links):
			drop(i, r, "no link with a url")
			continue
		}
		seen[r.ID] = true

		r = r.Clone()
		if !r.Status.Valid() {
			problems = append(problems, Problem{Index: i, ResourceID: r.ID, Message: fmt.Sprintf("invalid status %q, treated as under-review", r.Status)})
			r.Status = models.StatusUnderReview
		}
		if c := r.Community; c != nil && (c.Upvotes < 0 || c.Downvotes < 0 || c.WorkingCount < 0 || c.BrokenCount < 0 || c.ScamReports < 0) {
			problems = append(problems, Problem{Index: i, ResourceID: r.ID, Message: "negative community counter clamped to 0"})
			c.Upvotes = max(c.Upvotes, 0)
			c.Downvotes = max(c.Downvotes, 0)
			c.WorkingCount = max(c.WorkingCount, 0)
			c.BrokenCount = max(c.BrokenCount, 0)
			c.ScamReports = max(c.ScamReports, 0)
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		out = append(out, r)
	}
	return out, problems
}

func hasUsableLink(links []models.Link) bool {
	for _, l := range links {
		if l.URL != "" {
			return true
		}
	}
	return false
}
