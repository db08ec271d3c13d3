package data

import (
	"strings"

	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/xrash/smetrics"
)

// TitleSimilarityThreshold flags title pairs that are more similar than this
const TitleSimilarityThreshold = 0.85

// DuplicateReport lists likely duplicates in a resource collection
type DuplicateReport struct {
	ExactIDs      []string        `json:"exactIds"`
	DuplicateURLs []DuplicateURL  `json:"duplicateUrls"`
	SimilarTitles []SimilarTitles `json:"similarTitles"`
}

type DuplicateURL struct {
	URL         string   `json:"url"`
	ResourceIDs []string `json:"resourceIds"`
}

type SimilarTitles struct {
	Similarity  int      `json:"similarity"` // percent
	ResourceIDs []string `json:"resourceIds"`
}

// Empty reports whether nothing suspicious was found
func (r DuplicateReport) Empty() bool {
	return len(r.ExactIDs) == 0 && len(r.DuplicateURLs) == 0 && len(r.SimilarTitles) == 0
}

// FindDuplicates checks for repeated IDs, URLs shared between different
// resources and near-identical titles. Title comparison is quadratic; it is
// meant for load-time reporting, not the request path.
func FindDuplicates(resources []models.Resource) DuplicateReport {
	report := DuplicateReport{}

	ids := make(map[string]bool, len(resources))
	urlOwner := make(map[string]string)
	urlIndex := make(map[string]int)
	for _, r := range resources {
		if ids[r.ID] {
			report.ExactIDs = append(report.ExactIDs, r.ID)
		}
		ids[r.ID] = true

		for _, l := range r.Links {
			if l.URL == "" {
				continue
			}
			owner, ok := urlOwner[l.URL]
			if !ok {
				urlOwner[l.URL] = r.ID
				continue
			}
			if owner == r.ID {
				continue
			}
			if i, ok := urlIndex[l.URL]; ok {
				if !contains(report.DuplicateURLs[i].ResourceIDs, r.ID) {
					report.DuplicateURLs[i].ResourceIDs = append(report.DuplicateURLs[i].ResourceIDs, r.ID)
				}
				continue
			}
			urlIndex[l.URL] = len(report.DuplicateURLs)
			report.DuplicateURLs = append(report.DuplicateURLs, DuplicateURL{URL: l.URL, ResourceIDs: []string{owner, r.ID}})
		}
	}

	titles := make([]string, len(resources))
	for i, r := range resources {
		titles[i] = strings.ToLower(r.Title)
	}
	for i := 0; i < len(resources); i++ {
		for j := i + 1; j < len(resources); j++ {
			if resources[i].ID == resources[j].ID {
				continue
			}
			sim := Similarity(titles[i], titles[j])
			if sim > TitleSimilarityThreshold {
				report.SimilarTitles = append(report.SimilarTitles, SimilarTitles{
					Similarity:  int(sim*100 + 0.5),
					ResourceIDs: []string{resources[i].ID, resources[j].ID},
				})
			}
		}
	}
	return report
}

// Similarity is 1 - editDistance/len(longer), in [0, 1], measured in bytes
// like the underlying edit distance. Two empty strings are identical.
func Similarity(a, b string) float64 {
	longer := max(len(a), len(b))
	if longer == 0 {
		return 1
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 1)
	return float64(longer-d) / float64(longer)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
