package browse

import "github.com/resourceshub/hub/pkg/hub/models"

// DefaultPageSize is used when a request does not name a valid page size
const DefaultPageSize = 75

// Page is one slice of a resource list
type Page struct {
	Items      []models.Resource `json:"-"`
	Number     int               `json:"page"`
	Size       int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	TotalItems int               `json:"totalItems"`
	HasPrev    bool              `json:"hasPrev"`
	HasNext    bool              `json:"hasNext"`
}

// Paginate returns page number (1-indexed) of list. The page number is
// clamped to [1, TotalPages]; a non-positive size uses DefaultPageSize.
// An empty list yields page 1 of 0 with no items.
func Paginate(list []models.Resource, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(list)
	pages := (total + size - 1) / size

	number = min(number, pages)
	number = max(number, 1)

	p := Page{
		Items:      []models.Resource{},
		Number:     number,
		Size:       size,
		TotalPages: pages,
		TotalItems: total,
		HasPrev:    number > 1,
		HasNext:    number < pages,
	}
	if total == 0 {
		return p
	}

	start := (number - 1) * size
	end := min(start+size, total)
	p.Items = list[start:end]
	return p
}
