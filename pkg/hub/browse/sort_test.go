package browse

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resourceshub/hub/pkg/hub/models"
)

func ids(list []models.Resource) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func voted(id string, up, down int64) models.Resource {
	return models.Resource{ID: id, Community: &models.CommunityMetrics{Upvotes: up, Downvotes: down}}
}

func TestSortPopular(t *testing.T) {
	list := []models.Resource{
		voted("low", 5, 0),
		{ID: "none"},
		voted("high", 10, 2),
		voted("neg", 0, 3),
		voted("tie", 5, 0),
	}

	got := Sort(list, OrderPopular)
	assert.Equal(t, []string{"high", "low", "tie", "none", "neg"}, ids(got))
	assert.Equal(t, "low", list[0].ID, "input must not be reordered")
}

func TestSortPopularEqualScoresKeepOrder(t *testing.T) {
	list := []models.Resource{{ID: "r1"}, {ID: "r3"}, voted("r5", 1, 1)}
	assert.Equal(t, []string{"r1", "r3", "r5"}, ids(Sort(list, OrderPopular)))
}

func TestSortNewest(t *testing.T) {
	list := []models.Resource{
		{ID: "old", DateAdded: "2023-05-01"},
		{ID: "garbage", DateAdded: "not a date"},
		{ID: "new", DateAdded: "2025-02-10T08:00:00Z"},
		{ID: "missing"},
		{ID: "mid", DateAdded: "2024-12-31"},
	}

	got := Sort(list, OrderNewest)
	assert.Equal(t, []string{"new", "mid", "old", "garbage", "missing"}, ids(got))
}

func TestSortAlphabetical(t *testing.T) {
	list := []models.Resource{
		{ID: "z", Title: "zed"},
		{ID: "e", Title: "Émile"},
		{ID: "a", Title: "apple"},
		{ID: "b", Title: "Banana"},
	}

	got := Sort(list, OrderAlphabetical)
	assert.Equal(t, []string{"a", "b", "e", "z"}, ids(got))
}

func TestSortAlphabeticalIdempotent(t *testing.T) {
	list := []models.Resource{
		{ID: "b2", Title: "Banana"},
		{ID: "a1", Title: "Apple"},
		{ID: "a2", Title: "apple"},
		{ID: "b1", Title: "Banana"},
		{ID: "a3", Title: "Apple"},
	}

	once := Sort(list, OrderAlphabetical)
	twice := Sort(once, OrderAlphabetical)
	assert.Equal(t, ids(once), ids(twice))

	// equal titles keep their input order
	pos := func(id string) int { return slices.Index(ids(once), id) }
	assert.Less(t, pos("a1"), pos("a3"))
	assert.Less(t, pos("b2"), pos("b1"))
	assert.Less(t, pos("a3"), pos("b2"))
}

func TestSortAlphabeticalLocale(t *testing.T) {
	list := []models.Resource{
		{ID: "z", Title: "zebra"},
		{ID: "a", Title: "ärger"},
	}
	// Swedish sorts ä after z
	assert.Equal(t, []string{"z", "a"}, ids(NewSorter("sv").Sort(list, OrderAlphabetical)))
	assert.Equal(t, []string{"a", "z"}, ids(NewSorter("de").Sort(list, OrderAlphabetical)))
}

func TestSortRelevanceKeepsOrder(t *testing.T) {
	list := []models.Resource{{ID: "b"}, {ID: "a"}}
	got := Sort(list, OrderRelevance)
	assert.Equal(t, []string{"b", "a"}, ids(got))

	got[0].ID = "changed"
	assert.Equal(t, "b", list[0].ID, "result is a copy")
}

func TestSortEmpty(t *testing.T) {
	got := Sort(nil, OrderNewest)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseOrder(t *testing.T) {
	o, ok := ParseOrder("popular")
	assert.True(t, ok)
	assert.Equal(t, OrderPopular, o)

	_, ok = ParseOrder("random")
	assert.False(t, ok)
	_, ok = ParseOrder("")
	assert.False(t, ok)
}

func TestNewSorterFallsBack(t *testing.T) {
	s := NewSorter("!!")
	list := []models.Resource{{ID: "b", Title: "b"}, {ID: "a", Title: "a"}}
	assert.Equal(t, []string{"a", "b"}, ids(s.Sort(list, OrderAlphabetical)))
}
