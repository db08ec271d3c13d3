package data

import (
	"testing"

	"github.com/resourceshub/hub/pkg/hub/models"
)

func TestFindDuplicates(t *testing.T) {
	resources := []models.Resource{
		{ID: "gh", Title: "GitHub", Links: link("https://github.com")},
		{ID: "gh2", Title: "Github.", Links: link("https://github.com")},
		{ID: "gl", Title: "GitLab", Links: link("https://gitlab.com")},
		{ID: "gh", Title: "Something else", Links: link("https://other.example")},
	}

	report := FindDuplicates(resources)

	if len(report.ExactIDs) != 1 || report.ExactIDs[0] != "gh" {
		t.Errorf("Expected exact duplicate id gh, got %v", report.ExactIDs)
	}
	if len(report.DuplicateURLs) != 1 || report.DuplicateURLs[0].URL != "https://github.com" {
		t.Fatalf("Expected one shared URL, got %+v", report.DuplicateURLs)
	}
	if ids := report.DuplicateURLs[0].ResourceIDs; len(ids) != 2 || ids[0] != "gh" || ids[1] != "gh2" {
		t.Errorf("Unexpected URL owners %v", ids)
	}
	if len(report.SimilarTitles) != 1 {
		t.Fatalf("Expected one similar title pair, got %+v", report.SimilarTitles)
	}
	if pair := report.SimilarTitles[0]; pair.ResourceIDs[0] != "gh" || pair.ResourceIDs[1] != "gh2" {
		t.Errorf("Unexpected similar pair %+v", pair)
	}
	if report.Empty() {
		t.Error("Expected report to be non-empty")
	}
}

func TestFindDuplicatesClean(t *testing.T) {
	report := FindDuplicates([]models.Resource{
		{ID: "a", Title: "Postgres", Links: link("https://postgresql.org")},
		{ID: "b", Title: "Redis", Links: link("https://redis.io")},
	})
	if !report.Empty() {
		t.Errorf("Expected empty report, got %+v", report)
	}
}

func TestSimilarity(t *testing.T) {
	if Similarity("", "") != 1 {
		t.Error("Expected empty strings to be identical")
	}
	if Similarity("abc", "abc") != 1 {
		t.Error("Expected identical strings to score 1")
	}
	// one substitution in six bytes
	if got := Similarity("github", "gitxub"); got < 0.83 || got > 0.84 {
		t.Errorf("Expected ~0.833, got %v", got)
	}
}
