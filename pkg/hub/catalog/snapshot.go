package catalog

import (
	"errors"
	"time"

	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/resourceshub/hub/pkg/hub/search"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a resource or category ID is not in the snapshot
var ErrNotFound = errors.New("not found")

// Snapshot is an immutable view of the catalog. Slices returned by its
// accessors are shared and must not be modified.
type Snapshot struct {
	resources  []models.Resource
	byID       map[string]int
	categories []models.Category
	tags       []models.Tag
	tree       *CategoryTree
	index      *search.Index
	stats      Stats
	loadedAt   time.Time
}

// Empty returns a snapshot with no data
func Empty() *Snapshot {
	return Load(data.Bundle{})
}

// Load builds a snapshot from freshly loaded documents. Malformed resources
// are dropped, derived counts are recomputed and the search index is built.
func Load(b data.Bundle) *Snapshot {
	resources, problems := data.Sanitize(b.Resources)
	for _, p := range problems {
		ev := log.Warn()
		if p.Dropped {
			ev = log.Error()
		}
		ev.Int("index", p.Index).Str("resource_id", p.ResourceID).Msg(p.Message)
	}

	tree := NewCategoryTree(b.Categories)
	for _, r := range resources {
		if _, ok := tree.Get(r.PrimaryCategory()); !ok {
			log.Warn().Str("resource_id", r.ID).Str("category_id", r.PrimaryCategory()).Msg("primary category does not exist")
		}
	}

	categories, tags := RecomputeCounts(resources, tree, b.Tags)
	// rebuild so lookups see the recomputed counts
	tree = NewCategoryTree(categories)

	s := &Snapshot{
		resources:  resources,
		byID:       indexByID(resources),
		categories: categories,
		tags:       tags,
		tree:       tree,
		index:      search.NewIndex(resources),
		stats:      ComputeStats(resources, categories, tags),
		loadedAt:   time.Now(),
	}
	return s
}

func indexByID(resources []models.Resource) map[string]int {
	m := make(map[string]int, len(resources))
	for i, r := range resources {
		m[r.ID] = i
	}
	return m
}

func (s *Snapshot) Resources() []models.Resource  { return s.resources }
func (s *Snapshot) Categories() []models.Category { return s.categories }
func (s *Snapshot) Tags() []models.Tag            { return s.tags }
func (s *Snapshot) Tree() *CategoryTree           { return s.tree }
func (s *Snapshot) Index() *search.Index          { return s.index }
func (s *Snapshot) Stats() Stats                  { return s.stats }
func (s *Snapshot) LoadedAt() time.Time           { return s.loadedAt }

// Resource looks up a resource by ID
func (s *Snapshot) Resource(id string) (models.Resource, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Resource{}, false
	}
	return s.resources[i], true
}

// Lookup returns the resources for ids in the given order, skipping unknown IDs
func (s *Snapshot) Lookup(ids []string) []models.Resource {
	out := make([]models.Resource, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.Resource(id); ok {
			out = append(out, r)
		}
	}
	return out
}

// StatusCounts counts resources by status
func (s *Snapshot) StatusCounts() map[string]int {
	counts := make(map[string]int, len(models.Statuses))
	for _, st := range models.Statuses {
		counts[string(st)] = 0
	}
	for _, r := range s.resources {
		counts[string(r.Status)]++
	}
	return counts
}

// withResources returns a copy of s sharing everything but the resource slice
func (s *Snapshot) withResources(resources []models.Resource) *Snapshot {
	next := *s
	next.resources = resources
	return &next
}

// ApplyVoteCounts returns a snapshot whose resources listed in counts carry
// those up and down counts. Resources not listed keep their values.
func ApplyVoteCounts(s *Snapshot, counts map[string]models.VoteCounts) *Snapshot {
	if len(counts) == 0 {
		return s
	}
	resources := make([]models.Resource, len(s.resources))
	copy(resources, s.resources)
	for id, vc := range counts {
		i, ok := s.byID[id]
		if !ok {
			continue
		}
		r := resources[i].Clone()
		if r.Community == nil {
			r.Community = &models.CommunityMetrics{}
		}
		r.Community.Upvotes = max(vc.Upvotes, 0)
		r.Community.Downvotes = max(vc.Downvotes, 0)
		resources[i] = r
	}
	return s.withResources(resources)
}

// ApplyVote returns a snapshot with delta added to one counter, clamped at
// zero. ok is false when the resource is unknown.
func ApplyVote(s *Snapshot, id string, t models.VoteType, delta int64) (next *Snapshot, ok bool) {
	r, ok := s.Resource(id)
	if !ok {
		return s, false
	}
	up, down := r.Votes()
	if t == models.VoteDown {
		return SetVoteCount(s, id, t, down+delta)
	}
	return SetVoteCount(s, id, t, up+delta)
}

// SetVoteCount returns a snapshot with one counter replaced.
// ok is false when the resource is unknown.
func SetVoteCount(s *Snapshot, id string, t models.VoteType, count int64) (next *Snapshot, ok bool) {
	i, ok := s.byID[id]
	if !ok {
		return s, false
	}
	resources := make([]models.Resource, len(s.resources))
	copy(resources, s.resources)

	r := resources[i].Clone()
	if r.Community == nil {
		r.Community = &models.CommunityMetrics{}
	}
	count = max(count, 0)
	if t == models.VoteDown {
		r.Community.Downvotes = count
	} else {
		r.Community.Upvotes = count
	}
	resources[i] = r
	return s.withResources(resources), true
}
