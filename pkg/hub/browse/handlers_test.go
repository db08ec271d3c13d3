package browse

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/data"
	"github.com/resourceshub/hub/pkg/hub/models"
)

type staticSource struct{ snap *catalog.Snapshot }

func (s staticSource) Snapshot() *catalog.Snapshot { return s.snap }

func handlerSnapshot() *catalog.Snapshot {
	r1 := resource("r1", "Alpha", "ai-tools", models.StatusActive, "2025-01-03")
	r1.Tags = []string{"go"}
	r1.Community = &models.CommunityMetrics{Upvotes: 10, Downvotes: 2}
	r2 := resource("r2", "Beta", "ai", models.StatusBroken, "2025-01-02")
	r3 := resource("r3", "Gamma", "dev", models.StatusActive, "2025-01-01")
	r3.Tags = []string{"go", "cli"}
	r3.Community = &models.CommunityMetrics{Upvotes: 5}
	r4 := resource("r4", "Delta", "ai", models.StatusActive, "2024-12-01")

	return catalog.Load(data.Bundle{
		Resources: []models.Resource{r1, r2, r3, r4},
		Categories: []models.Category{
			category("ai", ""),
			category("ai-tools", "ai"),
			category("dev", ""),
			category("empty", ""),
		},
		Tags: []models.Tag{{ID: "go", Name: "Go"}, {ID: "cli", Name: "CLI"}, {ID: "rust", Name: "Rust"}},
	})
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(staticSource{handlerSnapshot()}, NewPipeline("en"), QueryOptions{PageSizes: []int{75, 100, 150}, DefaultPageSize: 75})
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func get(t *testing.T, router *gin.Engine, path string, wantStatus int) map[string]interface{} {
	t.Helper()
	req, _ := http.NewRequest("GET", path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != wantStatus {
		t.Fatalf("GET %s: expected status %d, got %d: %s", path, wantStatus, resp.Code, resp.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return body
}

func resourceIDs(body map[string]interface{}, key string) []string {
	var out []string
	for _, item := range body[key].([]interface{}) {
		out = append(out, item.(map[string]interface{})["id"].(string))
	}
	return out
}

func TestListResources(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/resources", http.StatusOK)
	if got := resourceIDs(body, "resources"); len(got) != 3 || got[0] != "r1" || got[2] != "r4" {
		t.Errorf("Expected newest-first active resources [r1 r3 r4], got %v", got)
	}
	if body["sort"] != "newest" {
		t.Errorf("Expected default sort newest, got %v", body["sort"])
	}
	pagination := body["pagination"].(map[string]interface{})
	if pagination["pageSize"].(float64) != 75 || pagination["totalItems"].(float64) != 3 {
		t.Errorf("Unexpected pagination: %v", pagination)
	}
}

func TestListResourcesFiltersAndSort(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/resources?tags=go&sort=popular", http.StatusOK)
	got := resourceIDs(body, "resources")
	if len(got) != 2 || got[0] != "r1" || got[1] != "r3" {
		t.Errorf("Expected [r1 r3], got %v", got)
	}

	body = get(t, router, "/api/resources?status=all&categories=ai&sort=alphabetical", http.StatusOK)
	got = resourceIDs(body, "resources")
	if len(got) != 2 || got[0] != "r2" || got[1] != "r4" {
		t.Errorf("Expected [r2 r4], got %v", got)
	}
}

func TestListResourcesGrouped(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/resources?group=category", http.StatusOK)
	groups := body["groups"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	ai := groups[0].(map[string]interface{})
	if ai["category"].(map[string]interface{})["id"] != "ai" {
		t.Errorf("Expected first group ai, got %v", ai["category"])
	}
	subs := ai["subgroups"].([]interface{})
	if len(subs) != 1 || subs[0].(map[string]interface{})["category"].(map[string]interface{})["id"] != "ai-tools" {
		t.Errorf("Expected ai-tools subgroup, got %v", subs)
	}
}

func TestListResourcesEmpty(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/resources?q=kubernetes", http.StatusOK)
	if body["empty"] != true || body["message"] != EmptyMessage {
		t.Errorf("Expected empty state, got %v", body)
	}
	if len(body["resources"].([]interface{})) != 0 {
		t.Error("Expected empty resources array")
	}
}

func TestListResourcesBadParams(t *testing.T) {
	router := setupTestRouter()

	get(t, router, "/api/resources?sort=random", http.StatusBadRequest)
	get(t, router, "/api/resources?pageSize=10", http.StatusBadRequest)
	get(t, router, "/api/resources?pageSize=100&page=abc", http.StatusOK)
}

func TestGetResource(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/resources/r1", http.StatusOK)
	if body["title"] != "Alpha" || body["score"].(float64) != 8 {
		t.Errorf("Unexpected resource: %v", body)
	}
	if body["trustScore"].(float64) < 83 || body["trustScore"].(float64) > 84 {
		t.Errorf("Expected trust score about 83.3, got %v", body["trustScore"])
	}

	get(t, router, "/api/resources/nope", http.StatusNotFound)
}

func TestSelection(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/resources/selection?groupId=ai&status=all", http.StatusOK)
	if body["count"].(float64) != 3 {
		t.Errorf("Expected 3 resources in ai, got %v", body["ids"])
	}

	body = get(t, router, "/api/resources/selection?groupId=ai&subId=ai-tools", http.StatusOK)
	if body["count"].(float64) != 1 {
		t.Errorf("Expected 1 resource in ai-tools, got %v", body["ids"])
	}

	get(t, router, "/api/resources/selection", http.StatusBadRequest)
}

func TestCategories(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/categories", http.StatusOK)
	cats := body["categories"].([]interface{})
	if len(cats) != 3 {
		t.Fatalf("Expected 3 top-level categories, got %d", len(cats))
	}
	ai := cats[0].(map[string]interface{})
	if ai["resourceCount"].(float64) != 3 {
		t.Errorf("Expected ai count 3, got %v", ai["resourceCount"])
	}
	if len(ai["children"].([]interface{})) != 1 {
		t.Errorf("Expected one child of ai, got %v", ai["children"])
	}

	body = get(t, router, "/api/categories?used=true", http.StatusOK)
	if len(body["categories"].([]interface{})) != 2 {
		t.Errorf("Expected unused category to be pruned, got %v", body["categories"])
	}
}

func TestCategory(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/categories/ai", http.StatusOK)
	if got := resourceIDs(body, "resources"); len(got) != 1 || got[0] != "r4" {
		t.Errorf("Expected only active direct resource r4, got %v", got)
	}
	if len(body["subcategories"].([]interface{})) != 1 {
		t.Errorf("Expected 1 subcategory, got %v", body["subcategories"])
	}

	body = get(t, router, "/api/categories/ai?sub=ai-tools", http.StatusOK)
	if got := resourceIDs(body, "resources"); len(got) != 1 || got[0] != "r1" {
		t.Errorf("Expected [r1], got %v", got)
	}

	get(t, router, "/api/categories/nope", http.StatusNotFound)
}

func TestTagsAndStats(t *testing.T) {
	router := setupTestRouter()

	body := get(t, router, "/api/tags", http.StatusOK)
	tags := body["tags"].([]interface{})
	if tags[0].(map[string]interface{})["usageCount"].(float64) != 2 {
		t.Errorf("Expected go usage 2, got %v", tags[0])
	}

	body = get(t, router, "/api/stats", http.StatusOK)
	stats := body["statistics"].(map[string]interface{})
	if stats["totalResources"].(float64) != 4 || stats["activeResources"].(float64) != 3 || stats["unusedCategories"].(float64) != 1 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}
