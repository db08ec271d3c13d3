package browse

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resourceshub/hub/pkg/hub/catalog"
	"github.com/resourceshub/hub/pkg/hub/models"
)

// Source provides the current catalog snapshot
type Source interface {
	Snapshot() *catalog.Snapshot
}

// Handler serves the read-only browse API
type Handler struct {
	source   Source
	pipeline *Pipeline
	opts     QueryOptions
}

// NewHandler creates a browse handler
func NewHandler(source Source, pipeline *Pipeline, opts QueryOptions) *Handler {
	return &Handler{source: source, pipeline: pipeline, opts: opts}
}

// List runs a browse query and returns one page of results
func (h *Handler) List(c *gin.Context) {
	q, err := ParseQuery(c.Request.URL.Query(), h.opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.pipeline.Run(h.source.Snapshot(), q))
}

// Get returns a single resource
func (h *Handler) Get(c *gin.Context) {
	r, ok := h.source.Snapshot().Resource(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}
	c.JSON(http.StatusOK, h.pipeline.View(r))
}

// Selection returns every matching resource of one category group, across
// all pages. Parameters are those of List plus groupId and subId.
func (h *Handler) Selection(c *gin.Context) {
	groupID := c.Query("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupId is required"})
		return
	}
	q, err := ParseQuery(c.Request.URL.Query(), h.opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap := h.source.Snapshot()
	selected := SelectGroup(h.pipeline.Matching(snap, q), snap.Tree(), groupID, c.Query("subId"))
	ids := make([]string, len(selected))
	for i, r := range selected {
		ids[i] = r.ID
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids, "count": len(ids)})
}

// CategoryNode is a category with its subcategories
type CategoryNode struct {
	models.Category
	Children []CategoryNode `json:"children"`
}

func buildNodes(tree *catalog.CategoryTree, cats []models.Category, seen map[string]bool) []CategoryNode {
	nodes := make([]CategoryNode, 0, len(cats))
	for _, c := range cats {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		nodes = append(nodes, CategoryNode{Category: c, Children: buildNodes(tree, tree.Children(c.ID), seen)})
	}
	return nodes
}

// Categories returns the category tree with resource counts. With
// used=true, categories without resources are left out.
func (h *Handler) Categories(c *gin.Context) {
	tree := h.source.Snapshot().Tree()
	nodes := buildNodes(tree, tree.Roots(), map[string]bool{})
	if c.Query("used") == "true" {
		nodes = pruneUnused(nodes)
	}
	c.JSON(http.StatusOK, gin.H{"categories": nodes})
}

func pruneUnused(nodes []CategoryNode) []CategoryNode {
	out := []CategoryNode{}
	for _, n := range nodes {
		if n.ResourceCount == 0 {
			continue
		}
		n.Children = pruneUnused(n.Children)
		out = append(out, n)
	}
	return out
}

// Category returns a category, its direct subcategories and the active
// resources listed in it, or in subcategory sub when given.
func (h *Handler) Category(c *gin.Context) {
	snap := h.source.Snapshot()
	tree := snap.Tree()
	cat, ok := tree.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	target := cat.ID
	if sub := c.Query("sub"); sub != "" {
		if _, ok := tree.Get(sub); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		target = sub
	}

	resources := []models.Resource{}
	for _, r := range snap.Resources() {
		if r.Status == models.StatusActive && r.HasCategory(target) {
			resources = append(resources, r)
		}
	}

	subcategories := tree.Children(cat.ID)
	if subcategories == nil {
		subcategories = []models.Category{}
	}
	c.JSON(http.StatusOK, gin.H{
		"category":      cat,
		"subcategories": subcategories,
		"resources":     h.pipeline.Views(resources),
		"count":         len(resources),
	})
}

// Tags returns all tags with usage counts
func (h *Handler) Tags(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tags": h.source.Snapshot().Tags()})
}

// Stats returns catalog totals
func (h *Handler) Stats(c *gin.Context) {
	snap := h.source.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"statistics": snap.Stats(),
		"lastLoaded": snap.LoadedAt(),
	})
}

// RegisterRoutes registers browse routes on the /api group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resources", h.List)
	rg.GET("/resources/selection", h.Selection)
	rg.GET("/resources/:id", h.Get)
	rg.GET("/categories", h.Categories)
	rg.GET("/categories/:id", h.Category)
	rg.GET("/tags", h.Tags)
	rg.GET("/stats", h.Stats)
}
