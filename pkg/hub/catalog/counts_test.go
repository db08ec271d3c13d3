package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resourceshub/hub/pkg/hub/models"
)

func TestRecomputeCounts(t *testing.T) {
	tree := testTree()
	resources := []models.Resource{
		{ID: "r1", Categories: []string{"llm"}, Tags: []string{"go"}},
		{ID: "r2", Categories: []string{"ai-tools", "dev"}, Tags: []string{"go", "cli"}},
		{ID: "r3", Categories: []string{"ai"}},
		{ID: "r4", Categories: []string{"dev"}, Tags: []string{"unknown-tag"}},
	}
	stale := []models.Tag{{ID: "go", UsageCount: 99}, {ID: "cli"}, {ID: "rust", UsageCount: 7}}

	categories, tags := RecomputeCounts(resources, tree, stale)

	counts := map[string]int{}
	for _, c := range categories {
		counts[c.ID] = c.ResourceCount
	}
	assert.Equal(t, map[string]int{
		"ai":       3, // r3 direct, r2 via ai-tools, r1 via llm
		"ai-tools": 2,
		"llm":      1,
		"dev":      2,
		"orphan":   0,
		"ai-art":   0,
	}, counts)

	assert.Equal(t, []models.Tag{{ID: "go", UsageCount: 2}, {ID: "cli", UsageCount: 1}, {ID: "rust", UsageCount: 0}}, tags)
	assert.Equal(t, 99, stale[0].UsageCount, "input tags must not change")
}

func TestComputeStats(t *testing.T) {
	resources := []models.Resource{
		{ID: "r1", Status: models.StatusActive, Verified: true, Tags: []string{"go"}},
		{ID: "r2", Status: models.StatusBroken, Featured: true, Tags: []string{"go", "cli"}},
		{ID: "r3", Status: models.StatusActive, Verified: true, Featured: true},
		{ID: "r4", Status: models.StatusArchived},
	}
	categories := []models.Category{{ID: "a", ResourceCount: 2}, {ID: "b"}, {ID: "c", ResourceCount: 1}}
	tags := []models.Tag{{ID: "go"}, {ID: "cli"}, {ID: "rust"}}

	assert.Equal(t, Stats{
		TotalResources:    4,
		VerifiedResources: 2,
		FeaturedResources: 2,
		ActiveResources:   2,
		BrokenResources:   1,
		TotalCategories:   3,
		UsedCategories:    2,
		UnusedCategories:  1,
		TotalTags:         3,
		TagsUsed:          2,
	}, ComputeStats(resources, categories, tags))
}
