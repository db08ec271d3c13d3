package models

// Tag represents a free-text label applied to resources
type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color,omitempty"`
	UsageCount  int    `json:"usageCount"` // derived; recomputed on every load
}
