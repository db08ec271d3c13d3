package export

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/resourceshub/hub/pkg/hub/browse"
	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
)

// Handler handles export requests
type Handler struct {
	source   browse.Source
	pipeline *browse.Pipeline
	opts     browse.QueryOptions
	exporter *Exporter
}

// NewHandler creates a new export handler
func NewHandler(source browse.Source, pipeline *browse.Pipeline, opts browse.QueryOptions) *Handler {
	return &Handler{source: source, pipeline: pipeline, opts: opts, exporter: NewExporter()}
}

// Export renders a set of resources. With ids (comma-separated) the
// resources are exported in that order; without, every resource matching
// the browse parameters is exported.
func (h *Handler) Export(c *gin.Context) {
	format, ok := ParseFormat(c.DefaultQuery("format", string(FormatJSON)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown export format"})
		return
	}

	snap := h.source.Snapshot()
	var resources []models.Resource
	if ids := splitIDs(c.Query("ids")); len(ids) > 0 {
		resources = snap.Lookup(ids)
	} else {
		q, err := browse.ParseQuery(c.Request.URL.Query(), h.opts)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resources = h.pipeline.Matching(snap, q)
	}

	h.render(c, format, resources)
}

// ExportSingle renders one resource
func (h *Handler) ExportSingle(c *gin.Context) {
	format, ok := ParseFormat(c.DefaultQuery("format", string(FormatPinboard)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown export format"})
		return
	}
	r, ok := h.source.Snapshot().Resource(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return
	}
	h.render(c, format, []models.Resource{r})
}

func (h *Handler) render(c *gin.Context, format Format, resources []models.Resource) {
	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, format, resources); err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export resources"})
		return
	}

	// Set content disposition for download
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", "attachment; filename="+format.Filename())
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// RegisterRoutes registers export routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.Export)
	rg.GET("/export/:id", h.ExportSingle)
}
