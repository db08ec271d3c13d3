package catalog

import "github.com/resourceshub/hub/pkg/hub/models"

// RecomputeCounts returns copies of categories and tags with ResourceCount
// and UsageCount derived from resources. A category counts the resources
// listing it directly plus the counts of all its descendants.
func RecomputeCounts(resources []models.Resource, tree *CategoryTree, tags []models.Tag) ([]models.Category, []models.Tag) {
	direct := make(map[string]int)
	tagUse := make(map[string]int)
	for _, r := range resources {
		for _, c := range r.Categories {
			direct[c]++
		}
		for _, t := range r.Tags {
			tagUse[t]++
		}
	}

	categories := tree.All()
	for i := range categories {
		n := direct[categories[i].ID]
		for _, d := range tree.Descendants(categories[i].ID) {
			n += direct[d]
		}
		categories[i].ResourceCount = n
	}

	outTags := make([]models.Tag, len(tags))
	for i, t := range tags {
		t.UsageCount = tagUse[t.ID]
		outTags[i] = t
	}
	return categories, outTags
}

// Stats summarizes a snapshot
type Stats struct {
	TotalResources    int `json:"totalResources"`
	VerifiedResources int `json:"verifiedResources"`
	FeaturedResources int `json:"featuredResources"`
	ActiveResources   int `json:"activeResources"`
	BrokenResources   int `json:"brokenResources"`
	TotalCategories   int `json:"totalCategories"`
	UsedCategories    int `json:"usedCategories"`
	UnusedCategories  int `json:"unusedCategories"`
	TotalTags         int `json:"totalTags"`
	TagsUsed          int `json:"tagsUsed"`
}

// ComputeStats counts resources by flag and status and categories by use.
// Categories must already carry recomputed counts.
func ComputeStats(resources []models.Resource, categories []models.Category, tags []models.Tag) Stats {
	s := Stats{
		TotalResources:  len(resources),
		TotalCategories: len(categories),
		TotalTags:       len(tags),
	}
	used := make(map[string]bool)
	for _, r := range resources {
		if r.Verified {
			s.VerifiedResources++
		}
		if r.Featured {
			s.FeaturedResources++
		}
		switch r.Status {
		case models.StatusActive:
			s.ActiveResources++
		case models.StatusBroken:
			s.BrokenResources++
		}
		for _, t := range r.Tags {
			used[t] = true
		}
	}
	for _, c := range categories {
		if c.ResourceCount > 0 {
			s.UsedCategories++
		} else {
			s.UnusedCategories++
		}
	}
	s.TagsUsed = len(used)
	return s
}
