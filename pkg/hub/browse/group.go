package browse

import (
	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
)

// Group collects resources under a top-level category. Resources whose
// primary category is the top-level category itself are listed directly;
// the rest sit in a subgroup keyed by their primary category.
type Group struct {
	Category  models.Category   `json:"category"`
	Resources []models.Resource `json:"resources"`
	Subgroups []Subgroup        `json:"subgroups"`
}

type Subgroup struct {
	Category  models.Category   `json:"category"`
	Resources []models.Resource `json:"resources"`
}

// Count is the number of resources in the group and all its subgroups
func (g Group) Count() int {
	n := len(g.Resources)
	for _, s := range g.Subgroups {
		n += len(s.Resources)
	}
	return n
}

// GroupByCategory groups list by the top-level ancestor of each resource's
// primary category. Groups and subgroups appear in the order their first
// resource appears. Resources with an unknown primary category are logged
// and left out.
func GroupByCategory(list []models.Resource, tree *catalog.CategoryTree) []Group {
	groups := []Group{}
	groupIdx := map[string]int{}
	subIdx := map[string]map[string]int{}

	for _, r := range list {
		primary := r.PrimaryCategory()
		top, ok := tree.TopLevel(primary)
		if !ok {
			log.Warn().Str("resource_id", r.ID).Str("category_id", primary).Msg("resource skipped: unknown primary category")
			continue
		}

		gi, ok := groupIdx[top]
		if !ok {
			c, _ := tree.Get(top)
			groups = append(groups, Group{Category: c, Resources: []models.Resource{}, Subgroups: []Subgroup{}})
			gi = len(groups) - 1
			groupIdx[top] = gi
			subIdx[top] = map[string]int{}
		}
		g := &groups[gi]

		if primary == top {
			g.Resources = append(g.Resources, r)
			continue
		}
		si, ok := subIdx[top][primary]
		if !ok {
			c, _ := tree.Get(primary)
			g.Subgroups = append(g.Subgroups, Subgroup{Category: c, Resources: []models.Resource{}})
			si = len(g.Subgroups) - 1
			subIdx[top][primary] = si
		}
		g.Subgroups[si].Resources = append(g.Subgroups[si].Resources, r)
	}
	return groups
}

// SelectGroup returns every resource of list that GroupByCategory would put
// in group groupID, or only those in its subgroup subID when subID is set.
// It works on the full list so a selection is not limited to one page.
func SelectGroup(list []models.Resource, tree *catalog.CategoryTree, groupID, subID string) []models.Resource {
	out := []models.Resource{}
	for _, r := range list {
		primary := r.PrimaryCategory()
		top, ok := tree.TopLevel(primary)
		if !ok || top != groupID {
			continue
		}
		if subID != "" && primary != subID {
			continue
		}
		out = append(out, r)
	}
	return out
}
