// Package browse turns a catalog snapshot and a query into the page of
// resources a client displays: search, filter, sort, paginate and group.
package browse

import (
	"slices"
	"time"

	"github.com/araddon/dateparse"
	"github.com/resourceshub/hub/pkg/hub/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Order is a sort order for resource lists
type Order string

const (
	OrderNewest       Order = "newest"
	OrderPopular      Order = "popular"
	OrderAlphabetical Order = "alphabetical"
	// OrderRelevance keeps the order of search hits
	OrderRelevance Order = "relevance"
)

// Orders lists the accepted sort orders
var Orders = []Order{OrderNewest, OrderPopular, OrderAlphabetical, OrderRelevance}

// ParseOrder validates s. The empty string is not a valid order.
func ParseOrder(s string) (Order, bool) {
	for _, o := range Orders {
		if Order(s) == o {
			return o, true
		}
	}
	return "", false
}

// epoch is where resources with an unparsable dateAdded sort to
var epoch = time.Unix(0, 0).UTC()

// AddedAt parses a resource's dateAdded, reading dates without a zone as
// UTC. ok is false when it cannot be parsed.
func AddedAt(r models.Resource) (t time.Time, ok bool) {
	if r.DateAdded == "" {
		return epoch, false
	}
	t, err := dateparse.ParseIn(r.DateAdded, time.UTC)
	if err != nil {
		return epoch, false
	}
	return t, true
}

// Sorter sorts resource lists; alphabetical order follows its language
type Sorter struct {
	lang language.Tag
}

// NewSorter creates a sorter for a BCP 47 language tag, falling back to English
func NewSorter(lang string) *Sorter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Sorter{lang: tag}
}

// Sort returns a sorted copy of list. Equal elements keep their relative
// order. Unknown orders, including relevance, return an unchanged copy.
func (s *Sorter) Sort(list []models.Resource, order Order) []models.Resource {
	out := slices.Clone(list)
	if out == nil {
		out = []models.Resource{}
	}

	switch order {
	case OrderNewest:
		type dated struct {
			r models.Resource
			t time.Time
		}
		ds := make([]dated, len(out))
		for i, r := range out {
			ds[i].r = r
			ds[i].t, _ = AddedAt(r)
		}
		slices.SortStableFunc(ds, func(a, b dated) int {
			return b.t.Compare(a.t)
		})
		for i := range ds {
			out[i] = ds[i].r
		}

	case OrderPopular:
		slices.SortStableFunc(out, func(a, b models.Resource) int {
			as, bs := a.Community.Score(), b.Community.Score()
			switch {
			case as > bs:
				return -1
			case as < bs:
				return 1
			}
			return 0
		})

	case OrderAlphabetical:
		// collators keep internal buffers, so each call gets its own
		c := collate.New(s.lang)
		slices.SortStableFunc(out, func(a, b models.Resource) int {
			return c.CompareString(a.Title, b.Title)
		})
	}
	return out
}

var defaultSorter = NewSorter("en")

// Sort sorts with English collation
func Sort(list []models.Resource, order Order) []models.Resource {
	return defaultSorter.Sort(list, order)
}
