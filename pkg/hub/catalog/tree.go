// Package catalog holds the loaded resources, categories and tags as an
// immutable snapshot and applies vote updates to it.
package catalog

import (
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
)

// CategoryTree indexes categories by ID and by parent
type CategoryTree struct {
	byID     map[string]models.Category
	order    []string
	children map[string][]string
}

// NewCategoryTree builds a tree from parent pointers. A category whose parent
// is unknown is treated as top-level. Later duplicates of an ID are ignored.
func NewCategoryTree(categories []models.Category) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[string]models.Category, len(categories)),
		children: make(map[string][]string),
	}
	for _, c := range categories {
		if _, dup := t.byID[c.ID]; dup {
			log.Warn().Str("category_id", c.ID).Msg("duplicate category ignored")
			continue
		}
		t.byID[c.ID] = c
		t.order = append(t.order, c.ID)
	}
	for _, id := range t.order {
		if p := t.Parent(id); p != "" {
			t.children[p] = append(t.children[p], id)
		}
	}
	return t
}

// Len returns the number of categories
func (t *CategoryTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Get looks up a category
func (t *CategoryTree) Get(id string) (models.Category, bool) {
	if t == nil {
		return models.Category{}, false
	}
	c, ok := t.byID[id]
	return c, ok
}

// Parent returns the ID of the category's parent, or "" when the category
// is top-level, unknown, or points at a parent that does not exist.
func (t *CategoryTree) Parent(id string) string {
	c, ok := t.Get(id)
	if !ok {
		return ""
	}
	p := c.ParentID()
	if p == id {
		return ""
	}
	if _, ok := t.byID[p]; !ok {
		return ""
	}
	return p
}

// TopLevel walks up from id to its root. ok is false for unknown IDs.
// On a parent cycle the walk stops at the last category before the repeat.
func (t *CategoryTree) TopLevel(id string) (root string, ok bool) {
	if _, ok := t.Get(id); !ok {
		return "", false
	}
	seen := map[string]bool{id: true}
	for {
		p := t.Parent(id)
		if p == "" {
			return id, true
		}
		if seen[p] {
			log.Warn().Str("category_id", id).Msg("category parent cycle")
			return id, true
		}
		seen[p] = true
		id = p
	}
}

// IsTopLevel reports whether id is a known category without a parent
func (t *CategoryTree) IsTopLevel(id string) bool {
	_, ok := t.Get(id)
	return ok && t.Parent(id) == ""
}

// Roots returns the top-level categories in input order
func (t *CategoryTree) Roots() []models.Category {
	if t == nil {
		return nil
	}
	var out []models.Category
	for _, id := range t.order {
		if t.Parent(id) == "" {
			out = append(out, t.byID[id])
		}
	}
	return out
}

// Children returns the direct subcategories of id in input order
func (t *CategoryTree) Children(id string) []models.Category {
	if t == nil {
		return nil
	}
	var out []models.Category
	for _, cid := range t.children[id] {
		out = append(out, t.byID[cid])
	}
	return out
}

// Descendants returns the IDs of every category below id, depth first
func (t *CategoryTree) Descendants(id string) []string {
	if t == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(p string) {
		for _, cid := range t.children[p] {
			if seen[cid] {
				continue
			}
			seen[cid] = true
			out = append(out, cid)
			walk(cid)
		}
	}
	walk(id)
	return out
}

// All returns every category in input order
func (t *CategoryTree) All() []models.Category {
	if t == nil {
		return nil
	}
	out := make([]models.Category, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}
