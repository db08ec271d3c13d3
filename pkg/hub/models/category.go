package models

// Category represents a node of the category tree.
// Top-level categories have no parent.
type Category struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Icon           string   `json:"icon,omitempty"`
	Color          string   `json:"color,omitempty"`
	ParentCategory *string  `json:"parentCategory"`
	Subcategories  []string `json:"subcategories,omitempty"`
	Featured       bool     `json:"featured,omitempty"`
	ResourceCount  int      `json:"resourceCount"` // derived; recomputed on every load
}

// ParentID returns the parent category ID, or "" for a top-level category
func (c Category) ParentID() string {
	if c.ParentCategory == nil {
		return ""
	}
	return *c.ParentCategory
}
