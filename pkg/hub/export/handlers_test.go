package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/resourceshub/hub/pkg/hub/browse"
	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/models"
)

type staticSource struct{ snap *catalog.Snapshot }

func (s staticSource) Snapshot() *catalog.Snapshot { return s.snap }

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	resources := sample()
	resources[0].Status = models.StatusActive
	resources[1].Status = models.StatusArchived
	resources = append(resources, models.Resource{
		ID:               "gl",
		Title:            "GitLab",
		ShortDescription: "DevOps platform",
		Links:            []models.Link{{URL: "https://gitlab.com"}},
		Categories:       []string{"dev"},
		Tags:             []string{"git"},
		Status:           models.StatusActive,
		DateAdded:        "2024-01-01",
	})
	snap := catalog.Load(data.Bundle{
		Resources:  resources,
		Categories: []models.Category{{ID: "dev", Name: "Dev"}, {ID: "misc", Name: "Misc"}},
	})

	r := gin.New()
	handler := NewHandler(staticSource{snap}, browse.NewPipeline("en"), browse.QueryOptions{PageSizes: []int{75}, DefaultPageSize: 75})
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestExportByIDs(t *testing.T) {
	router := setupTestRouter()

	resp := doGet(router, "/api/export?format=pinboard&ids=gl,missing,gh")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var bookmarks []PinboardBookmark
	if err := json.Unmarshal(resp.Body.Bytes(), &bookmarks); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("Expected 2 bookmarks, got %d", len(bookmarks))
	}
	if bookmarks[0].Href != "https://gitlab.com" || bookmarks[1].Href != "https://github.com" {
		t.Errorf("Expected requested order, got %+v", bookmarks)
	}
}

func TestExportByFilters(t *testing.T) {
	router := setupTestRouter()

	resp := doGet(router, "/api/export?format=csv&sort=alphabetical")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("Expected CSV content type, got %s", ct)
	}

	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 active resources, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], `"GitHub ""Pro"""`) || !strings.HasPrefix(lines[2], "GitLab") {
		t.Errorf("Unexpected rows: %v", lines[1:])
	}
}

func TestExportDownload(t *testing.T) {
	router := setupTestRouter()

	resp := doGet(router, "/api/export?format=md&download=true")
	if cd := resp.Header().Get("Content-Disposition"); cd != "attachment; filename=resources-hub-export.md" {
		t.Errorf("Unexpected Content-Disposition: %q", cd)
	}

	resp = doGet(router, "/api/export?format=md")
	if cd := resp.Header().Get("Content-Disposition"); cd != "" {
		t.Errorf("Expected no Content-Disposition, got %q", cd)
	}
}

func TestExportBadRequest(t *testing.T) {
	router := setupTestRouter()

	if resp := doGet(router, "/api/export?format=xml"); resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown format, got %d", resp.Code)
	}
	if resp := doGet(router, "/api/export?sort=random"); resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad sort, got %d", resp.Code)
	}
}

func TestExportSingle(t *testing.T) {
	router := setupTestRouter()

	resp := doGet(router, "/api/export/gl")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}
	var bookmarks []PinboardBookmark
	json.Unmarshal(resp.Body.Bytes(), &bookmarks)
	if len(bookmarks) != 1 || bookmarks[0].Description != "GitLab" {
		t.Errorf("Unexpected export: %s", resp.Body.String())
	}

	if resp := doGet(router, "/api/export/nope"); resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
