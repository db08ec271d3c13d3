package browse

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/filters"
	"github.com/resourceshub/hub/pkg/hub/models"
)

// EmptyMessage is shown when no resource matches a query
const EmptyMessage = "No resources found matching your criteria."

// Query describes one browse request
type Query struct {
	Text     string
	Filters  models.Filters
	Order    Order // empty: relevance with a search text, newest without
	Page     int
	PageSize int
	Grouped  bool
}

// EffectiveOrder resolves the default order
func (q Query) EffectiveOrder() Order {
	if q.Order != "" {
		return q.Order
	}
	if strings.TrimSpace(q.Text) != "" {
		return OrderRelevance
	}
	return OrderNewest
}

// ResourceView is a resource with the values clients derive for display
type ResourceView struct {
	models.Resource
	Score        int64   `json:"score"`
	TrustScore   float64 `json:"trustScore"`
	WorkingRatio float64 `json:"workingRatio"`
	Added        string  `json:"added,omitempty"` // "3 days ago"
}

type GroupView struct {
	Category  models.Category `json:"category"`
	Count     int             `json:"count"`
	Resources []ResourceView  `json:"resources"`
	Subgroups []SubgroupView  `json:"subgroups"`
}

type SubgroupView struct {
	Category  models.Category `json:"category"`
	Resources []ResourceView  `json:"resources"`
}

// Result is the response to a browse query
type Result struct {
	Query      string         `json:"query"`
	Order      Order          `json:"sort"`
	Filters    models.Filters `json:"filters"`
	Pagination Page           `json:"pagination"`
	Resources  []ResourceView `json:"resources"`
	Groups     []GroupView    `json:"groups,omitempty"`
	Empty      bool           `json:"empty"`
	Message    string         `json:"message,omitempty"`
}

// Pipeline runs browse queries against snapshots
type Pipeline struct {
	sorter *Sorter
	now    func() time.Time
}

// NewPipeline creates a pipeline sorting titles in the given language
func NewPipeline(lang string) *Pipeline {
	return &Pipeline{sorter: NewSorter(lang), now: time.Now}
}

// Matching returns every resource of snap that matches q, sorted. It is the
// list pagination and group selection work on.
func (p *Pipeline) Matching(snap *catalog.Snapshot, q Query) []models.Resource {
	list := snap.Resources()
	if strings.TrimSpace(q.Text) != "" {
		hits := snap.Index().Search(q.Text)
		ids := make([]string, len(hits))
		for i, h := range hits {
			ids[i] = h.ID
		}
		list = snap.Lookup(ids)
	}
	list = filters.Apply(list, q.Filters)
	return p.sorter.Sort(list, q.EffectiveOrder())
}

// Run searches, filters, sorts and paginates, then groups the page when
// q.Grouped is set. Grouping only sees the current page.
func (p *Pipeline) Run(snap *catalog.Snapshot, q Query) Result {
	list := p.Matching(snap, q)
	page := Paginate(list, q.Page, q.PageSize)

	res := Result{
		Query:      q.Text,
		Order:      q.EffectiveOrder(),
		Filters:    q.Filters,
		Pagination: page,
		Resources:  p.Views(page.Items),
	}
	if len(list) == 0 {
		res.Empty = true
		res.Message = EmptyMessage
	}
	if q.Grouped {
		res.Groups = p.groupViews(GroupByCategory(page.Items, snap.Tree()))
	}
	return res
}

// View derives the display values of r
func (p *Pipeline) View(r models.Resource) ResourceView {
	v := ResourceView{
		Resource:     r,
		Score:        r.Community.Score(),
		TrustScore:   r.Community.TrustScore(),
		WorkingRatio: r.Community.WorkingRatio(),
	}
	if t, ok := AddedAt(r); ok {
		v.Added = humanize.RelTime(t, p.now(), "ago", "from now")
	}
	return v
}

func (p *Pipeline) Views(list []models.Resource) []ResourceView {
	out := make([]ResourceView, len(list))
	for i, r := range list {
		out[i] = p.View(r)
	}
	return out
}

func (p *Pipeline) groupViews(groups []Group) []GroupView {
	out := make([]GroupView, len(groups))
	for i, g := range groups {
		gv := GroupView{
			Category:  g.Category,
			Count:     g.Count(),
			Resources: p.Views(g.Resources),
			Subgroups: make([]SubgroupView, len(g.Subgroups)),
		}
		for j, s := range g.Subgroups {
			gv.Subgroups[j] = SubgroupView{Category: s.Category, Resources: p.Views(s.Resources)}
		}
		out[i] = gv
	}
	return out
}
