package models

// Filters is the query state of the browse pipeline.
// Empty sets do not constrain; true toggles require the matching field.
type Filters struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Platforms  []string `json:"platforms"`
	Pricing    []string `json:"pricing"`
	Status     []string `json:"status"`
	Verified   bool     `json:"verified"`
	Featured   bool     `json:"featured"`
	NoSignup   bool     `json:"noSignup"`
	OpenSource bool     `json:"openSource"`
}

// DefaultFilters returns the filter state a fresh browse session starts with
func DefaultFilters() Filters {
	return Filters{
		Categories: []string{},
		Tags:       []string{},
		Platforms:  []string{},
		Pricing:    []string{},
		Status:     []string{string(StatusActive)},
	}
}
