package browse

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/resourceshub/hub/pkg/hub/filters"
)

// QueryOptions bounds what ParseQuery accepts
type QueryOptions struct {
	PageSizes       []int
	DefaultPageSize int
}

// ParseQuery reads a browse query from URL parameters: q, sort, page,
// pageSize, group and the filter parameters understood by filters.FromQuery.
// A malformed page number means page 1; an unknown sort order or a page
// size outside opts.PageSizes is an error.
func ParseQuery(v url.Values, opts QueryOptions) (Query, error) {
	q := Query{
		Text:     strings.TrimSpace(v.Get("q")),
		Filters:  filters.FromQuery(v),
		Page:     1,
		PageSize: opts.DefaultPageSize,
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	if s := v.Get("sort"); s != "" {
		o, ok := ParseOrder(s)
		if !ok {
			return q, fmt.Errorf("unknown sort order %q", s)
		}
		q.Order = o
	}

	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = n
	}

	if s := v.Get("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || (len(opts.PageSizes) > 0 && !slices.Contains(opts.PageSizes, n)) || n <= 0 {
			return q, fmt.Errorf("page size must be one of %v", opts.PageSizes)
		}
		q.PageSize = n
	}

	switch v.Get("group") {
	case "category", "true", "1":
		q.Grouped = true
	}
	return q, nil
}
