// Package data loads the static resource, category and tag documents.
//
// A document that cannot be fetched or parsed is logged and treated as an
// empty collection, so a broken data host degrades to an empty directory
// instead of a failed start.
package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// maxDocumentSize bounds a single JSON document
const maxDocumentSize = 64 << 20

// Paths are the document locations relative to the base URL
type Paths struct {
	Resources  string
	Categories string
	Tags       string
}

// DefaultPaths matches the layout written by the sync tooling
var DefaultPaths = Paths{
	Resources:  "resources/all-resources.json",
	Categories: "categories/categories.json",
	Tags:       "tags/tags.json",
}

// Client fetches the data documents from one base URL
type Client struct {
	base  *url.URL
	paths Paths
	http  *http.Client
}

// Bundle is the result of one load cycle
type Bundle struct {
	Resources  []models.Resource
	Categories []models.Category
	Tags       []models.Tag

	// Failed lists the paths of documents that could not be fetched or
	// parsed and were replaced by empty collections.
	Failed []string
	// Skipped lists resource records that did not decode
	Skipped []Problem
}

// Complete reports whether every document loaded
func (b Bundle) Complete() bool {
	return len(b.Failed) == 0
}

type resourcesDocument struct {
	Resources []json.RawMessage `json:"resources"`
}

type categoriesDocument struct {
	Categories []models.Category `json:"categories"`
}

type tagsDocument struct {
	Tags []models.Tag `json:"tags"`
}

// NewClient creates a client for baseURL. A file:// base URL reads from
// the local filesystem.
func NewClient(baseURL string, paths Paths, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse data url %q: %w", baseURL, err)
	}

	hc := &http.Client{Timeout: timeout}
	switch base.Scheme {
	case "http", "https":
	case "file":
		t := &http.Transport{}
		t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
		hc.Transport = t
	default:
		return nil, fmt.Errorf("unsupported data url scheme %q", base.Scheme)
	}

	return &Client{base: base, paths: paths, http: hc}, nil
}

// LoadAll fetches the three documents concurrently.
// It only returns an error when ctx is cancelled.
// Documents that fail are recorded in Bundle.Failed.
func (c *Client) LoadAll(ctx context.Context) (Bundle, error) {
	var (
		b                      Bundle
		resErr, catErr, tagErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.Resources, b.Skipped, resErr = c.loadResources(gctx)
		return nil
	})
	g.Go(func() error {
		b.Categories, catErr = c.loadCategories(gctx)
		return nil
	})
	g.Go(func() error {
		b.Tags, tagErr = c.loadTags(gctx)
		return nil
	})
	g.Wait()

	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	if resErr != nil {
		b.Failed = append(b.Failed, c.paths.Resources)
	}
	if catErr != nil {
		b.Failed = append(b.Failed, c.paths.Categories)
	}
	if tagErr != nil {
		b.Failed = append(b.Failed, c.paths.Tags)
	}
	return b, nil
}

// LoadResources returns the resource collection, or an empty one on failure.
// Records that do not decode are logged and skipped.
func (c *Client) LoadResources(ctx context.Context) []models.Resource {
	resources, _, _ := c.loadResources(ctx)
	return resources
}

// LoadCategories returns the category collection, or an empty one on failure
func (c *Client) LoadCategories(ctx context.Context) []models.Category {
	categories, _ := c.loadCategories(ctx)
	return categories
}

// LoadTags returns the tag collection, or an empty one on failure
func (c *Client) LoadTags(ctx context.Context) []models.Tag {
	tags, _ := c.loadTags(ctx)
	return tags
}

func (c *Client) loadResources(ctx context.Context) ([]models.Resource, []Problem, error) {
	var doc resourcesDocument
	if err := c.fetch(ctx, c.paths.Resources, &doc); err != nil {
		log.Error().Err(err).Str("document", c.paths.Resources).Msg("Failed to load resources")
		return []models.Resource{}, nil, err
	}
	resources, skipped := DecodeResources(doc.Resources)
	for _, p := range skipped {
		log.Warn().Int("index", p.Index).Str("resource_id", p.ResourceID).Str("problem", p.Message).Msg("resource record skipped")
	}
	return resources, skipped, nil
}

func (c *Client) loadCategories(ctx context.Context) ([]models.Category, error) {
	var doc categoriesDocument
	if err := c.fetch(ctx, c.paths.Categories, &doc); err != nil {
		log.Error().Err(err).Str("document", c.paths.Categories).Msg("Failed to load categories")
		return []models.Category{}, err
	}
	if doc.Categories == nil {
		return []models.Category{}, nil
	}
	return doc.Categories, nil
}

func (c *Client) loadTags(ctx context.Context) ([]models.Tag, error) {
	var doc tagsDocument
	if err := c.fetch(ctx, c.paths.Tags, &doc); err != nil {
		log.Error().Err(err).Str("document", c.paths.Tags).Msg("Failed to load tags")
		return []models.Tag{}, err
	}
	if doc.Tags == nil {
		return []models.Tag{}, nil
	}
	return doc.Tags, nil
}

// DecodeResources decodes each record on its own, so one malformed record
// only loses itself. Records that fail are returned as dropped problems.
func DecodeResources(raw []json.RawMessage) ([]models.Resource, []Problem) {
	out := make([]models.Resource, 0, len(raw))
	var skipped []Problem
	for i, msg := range raw {
		var r models.Resource
		if err := json.Unmarshal(msg, &r); err != nil {
			skipped = append(skipped, Problem{Index: i, ResourceID: recordID(msg), Message: err.Error(), Dropped: true})
			continue
		}
		out = append(out, r)
	}
	return out, skipped
}

// recordID recovers the id of a record that failed to decode, if it has one
func recordID(msg json.RawMessage) string {
	var v struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(msg, &v) != nil {
		return ""
	}
	return v.ID
}

func (c *Client) fetch(ctx context.Context, path string, v interface{}) error {
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	u := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", u, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return fmt.Errorf("read %s: %w", u, err)
	}
	return Decode(raw, v)
}

// Decode unmarshals a JSON document, tolerating a leading byte-order mark
func Decode(raw []byte, v interface{}) error {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
