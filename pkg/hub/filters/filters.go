// Package filters implements the conjunctive resource filter.
package filters

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/resourceshub/hub/pkg/hub/models"
)

// Apply returns the resources that pass every active predicate of f, in
// their original order. The input slice is not modified.
func Apply(resources []models.Resource, f models.Filters) []models.Resource {
	categories := toSet(f.Categories)
	tags := toSet(f.Tags)
	platforms := toSet(f.Platforms)
	pricing := toSet(f.Pricing)
	status := toSet(f.Status)

	out := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if matches(r, f, categories, tags, platforms, pricing, status) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single resource passes f
func Match(r models.Resource, f models.Filters) bool {
	return matches(r, f, toSet(f.Categories), toSet(f.Tags), toSet(f.Platforms), toSet(f.Pricing), toSet(f.Status))
}

func matches(r models.Resource, f models.Filters, categories, tags, platforms, pricing, status map[string]bool) bool {
	if len(categories) > 0 && !anyIn(r.Categories, categories) {
		return false
	}
	if len(tags) > 0 && !anyIn(r.Tags, tags) {
		return false
	}

	md := r.Metadata
	// Resources without platform metadata cannot satisfy a platform filter.
	if len(platforms) > 0 && (md == nil || !anyIn(md.Platform, platforms)) {
		return false
	}
	// Pricing only constrains resources that declare one.
	if len(pricing) > 0 && md != nil && md.Pricing != "" && !pricing[string(md.Pricing)] {
		return false
	}
	if len(status) > 0 && !status[string(r.Status)] {
		return false
	}

	if f.Verified && !r.Verified {
		return false
	}
	if f.Featured && !r.Featured {
		return false
	}
	if f.NoSignup && (md == nil || md.RequiresSignup == nil || *md.RequiresSignup) {
		return false
	}
	if f.OpenSource && (md == nil || md.OpenSource == nil || !*md.OpenSource) {
		return false
	}
	return true
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func anyIn(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}

// StatusAll in the status parameter disables the status filter
const StatusAll = "all"

// FromQuery builds Filters from browse query parameters. List parameters
// accept repeated keys and comma-separated values. Without a status
// parameter the default {active} applies.
func FromQuery(q url.Values) models.Filters {
	f := models.DefaultFilters()
	f.Categories = list(q, "categories")
	f.Tags = list(q, "tags")
	f.Platforms = list(q, "platforms")
	f.Pricing = list(q, "pricing")
	if _, ok := q["status"]; ok {
		f.Status = list(q, "status")
		for _, s := range f.Status {
			if s == StatusAll {
				f.Status = []string{}
				break
			}
		}
	}
	f.Verified = flag(q, "verified")
	f.Featured = flag(q, "featured")
	f.NoSignup = flag(q, "noSignup")
	f.OpenSource = flag(q, "openSource")
	return f
}

// Query is the inverse of FromQuery
func Query(f models.Filters) url.Values {
	q := url.Values{}
	set := func(key string, values []string) {
		if len(values) > 0 {
			q.Set(key, strings.Join(values, ","))
		}
	}
	set("categories", f.Categories)
	set("tags", f.Tags)
	set("platforms", f.Platforms)
	set("pricing", f.Pricing)
	if len(f.Status) == 0 {
		q.Set("status", StatusAll)
	} else {
		set("status", f.Status)
	}
	for key, on := range map[string]bool{"verified": f.Verified, "featured": f.Featured, "noSignup": f.NoSignup, "openSource": f.OpenSource} {
		if on {
			q.Set(key, "true")
		}
	}
	return q
}

func list(q url.Values, key string) []string {
	out := []string{}
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func flag(q url.Values, key string) bool {
	b, err := strconv.ParseBool(q.Get(key))
	return err == nil && b
}
