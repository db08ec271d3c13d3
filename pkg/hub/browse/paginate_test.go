package browse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resourceshub/hub/pkg/hub/models"
)

func numbered(n int) []models.Resource {
	out := make([]models.Resource, n)
	for i := range out {
		out[i] = models.Resource{ID: fmt.Sprintf("r%03d", i+1)}
	}
	return out
}

func TestPaginate(t *testing.T) {
	list := numbered(200)

	tests := []struct {
		name      string
		page      int
		size      int
		wantPage  int
		wantFirst string
		wantLen   int
	}{
		{"first page", 1, 75, 1, "r001", 75},
		{"second page", 2, 75, 2, "r076", 75},
		{"last page is partial", 3, 75, 3, "r151", 50},
		{"beyond the end clamps", 9, 75, 3, "r151", 50},
		{"zero clamps to first", 0, 75, 1, "r001", 75},
		{"negative clamps to first", -4, 100, 1, "r001", 100},
		{"exact fit", 2, 100, 2, "r101", 100},
		{"default size", 1, 0, 1, "r001", 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(list, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Number)
			assert.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Items[0].ID)
			assert.Equal(t, 200, p.TotalItems)
		})
	}
}

func TestPaginateTotals(t *testing.T) {
	p := Paginate(numbered(200), 3, 75)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)

	p = Paginate(numbered(150), 1, 150)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 5, 75)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.TotalPages)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}
