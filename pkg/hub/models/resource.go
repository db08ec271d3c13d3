package models

// Status represents the lifecycle state of a resource
type Status string

const (
	StatusActive      Status = "active"
	StatusDeprecated  Status = "deprecated"
	StatusBroken      Status = "broken"
	StatusUnderReview Status = "under-review"
	StatusArchived    Status = "archived"
)

// Statuses lists every known status in display order
var Statuses = []Status{StatusActive, StatusDeprecated, StatusBroken, StatusUnderReview, StatusArchived}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// LinkType represents the kind of destination a resource link points at
type LinkType string

const (
	LinkWebsite       LinkType = "website"
	LinkGitHub        LinkType = "github"
	LinkDocumentation LinkType = "documentation"
	LinkDownload      LinkType = "download"
	LinkAPI           LinkType = "api"
	LinkDemo          LinkType = "demo"
	LinkTutorial      LinkType = "tutorial"
	LinkVideo         LinkType = "video"
	LinkArticle       LinkType = "article"
	LinkOther         LinkType = "other"
)

// Pricing represents the pricing tier a resource declares
type Pricing string

const (
	PricingFree         Pricing = "free"
	PricingFreemium     Pricing = "freemium"
	PricingPaid         Pricing = "paid"
	PricingOpenSource   Pricing = "open-source"
	PricingSubscription Pricing = "subscription"
)

// Resource represents a curated tool, link or document in the directory.
// Resources are read-only at request time; only community vote counts change.
type Resource struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	ShortDescription string            `json:"shortDescription"`
	LongDescription  string            `json:"longDescription,omitempty"`
	Links            []Link            `json:"links"`
	Categories       []string          `json:"categories"` // first entry is the primary category
	Tags             []string          `json:"tags"`
	Verified         bool              `json:"verified,omitempty"`
	Featured         bool              `json:"featured,omitempty"`
	DateAdded        string            `json:"dateAdded"`
	LastChecked      string            `json:"lastChecked,omitempty"`
	Status           Status            `json:"status"`
	Community        *CommunityMetrics `json:"community,omitempty"`
	Metadata         *Metadata         `json:"metadata,omitempty"`
}

// Link represents one destination of a resource
type Link struct {
	Type  LinkType `json:"type"`
	URL   string   `json:"url"`
	Label string   `json:"label"`
}

// Metadata holds optional descriptive attributes of a resource.
// The boolean fields are pointers because "not declared" differs from false.
type Metadata struct {
	Platform       []string `json:"platform,omitempty"`
	License        string   `json:"license,omitempty"`
	Pricing        Pricing  `json:"pricing,omitempty"`
	Language       string   `json:"language,omitempty"`
	RequiresSignup *bool    `json:"requiresSignup,omitempty"`
	OpenSource     *bool    `json:"openSource,omitempty"`
	SelfHostable   *bool    `json:"selfHostable,omitempty"`
}

// PrimaryCategory returns the first category of the resource, or "" when it has none
func (r Resource) PrimaryCategory() string {
	if len(r.Categories) == 0 {
		return ""
	}
	return r.Categories[0]
}

// PrimaryURL returns the URL of the first link, or "" when the resource has no links
func (r Resource) PrimaryURL() string {
	if len(r.Links) == 0 {
		return ""
	}
	return r.Links[0].URL
}

// HasCategory reports whether id is one of the resource's categories
func (r Resource) HasCategory(id string) bool {
	for _, c := range r.Categories {
		if c == id {
			return true
		}
	}
	return false
}

// Votes returns the up and down counts, treating missing metrics as zero
func (r Resource) Votes() (up, down int64) {
	if r.Community == nil {
		return 0, 0
	}
	return r.Community.Upvotes, r.Community.Downvotes
}

// Clone returns a copy of r whose community metrics can be changed
// without affecting r. Other slices are shared; they are never mutated.
func (r Resource) Clone() Resource {
	if r.Community != nil {
		cm := *r.Community
		r.Community = &cm
	}
	return r
}

// Bool returns a pointer to b, for building Metadata literals
func Bool(b bool) *bool {
	return &b
}
