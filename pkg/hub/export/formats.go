// Package export renders resource lists for download: CSV, Markdown,
// Netscape bookmarks, JSON and Pinboard JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/resourceshub/hub/pkg/hub/browse"
	"github.com/resourceshub/hub/pkg/hub/models"
)

// Format is an export file format
type Format string

const (
	FormatCSV       Format = "csv"
	FormatMarkdown  Format = "markdown"
	FormatBookmarks Format = "bookmarks"
	FormatJSON      Format = "json"
	FormatPinboard  Format = "pinboard"
)

type formatInfo struct {
	contentType string
	extension   string
}

var formats = map[Format]formatInfo{
	FormatCSV:       {"text/csv; charset=utf-8", "csv"},
	FormatMarkdown:  {"text/markdown; charset=utf-8", "md"},
	FormatBookmarks: {"text/html; charset=utf-8", "html"},
	FormatJSON:      {"application/json; charset=utf-8", "json"},
	FormatPinboard:  {"application/json; charset=utf-8", "json"},
}

// ParseFormat validates s; "md" and "html" are accepted as aliases
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "md":
		return FormatMarkdown, true
	case "html":
		return FormatBookmarks, true
	}
	f := Format(s)
	_, ok := formats[f]
	return f, ok
}

func (f Format) ContentType() string { return formats[f].contentType }

// Filename is the download name for an export in format f
func (f Format) Filename() string {
	return "resources-hub-export." + formats[f].extension
}

// Exporter renders resources. now stamps Markdown and bookmark exports.
type Exporter struct {
	now func() time.Time
}

func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// Write renders resources to w in format f
func (e *Exporter) Write(w io.Writer, f Format, resources []models.Resource) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, resources)
	case FormatMarkdown:
		return WriteMarkdown(w, resources, e.now())
	case FormatBookmarks:
		return WriteBookmarks(w, resources, e.now())
	case FormatJSON:
		return WriteJSON(w, resources)
	case FormatPinboard:
		return WritePinboard(w, resources)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteCSV writes one row per resource under a header row
func WriteCSV(w io.Writer, resources []models.Resource) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Description", "Link", "Categories", "Tags", "Verified"}); err != nil {
		return err
	}
	for _, r := range resources {
		verified := "No"
		if r.Verified {
			verified = "Yes"
		}
		row := []string{
			r.Title,
			r.ShortDescription,
			r.PrimaryURL(),
			strings.Join(r.Categories, "; "),
			strings.Join(r.Tags, "; "),
			verified,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown writes a heading per resource with its description and tags
func WriteMarkdown(w io.Writer, resources []models.Resource, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Exported Resources (%s)\n\n", now.Format("2006-01-02"))
	for _, r := range resources {
		fmt.Fprintf(&b, "### [%s](%s)\n", markdownText(r.Title), markdownURL(r.PrimaryURL()))
		fmt.Fprintf(&b, "%s\n\n", singleLine(r.ShortDescription))
		if len(r.Tags) > 0 {
			tags := make([]string, len(r.Tags))
			for i, t := range r.Tags {
				tags[i] = "`#" + t + "`"
			}
			fmt.Fprintf(&b, "*Tags: %s*\n\n", strings.Join(tags, ", "))
		}
		b.WriteString("---\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var (
	markdownEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`)
	urlEscaper      = strings.NewReplacer("\n", "", "\r", "", "(", "%28", ")", "%29", " ", "%20", "<", "%3C", ">", "%3E")
)

// singleLine collapses runs of whitespace, newlines included, to one space
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// markdownText makes s safe inside link text
func markdownText(s string) string {
	return markdownEscaper.Replace(singleLine(s))
}

// markdownURL makes u safe as a link destination
func markdownURL(u string) string {
	return urlEscaper.Replace(strings.TrimSpace(u))
}

// html/template drops comments from template text, so the notice is data
const bookmarksNotice template.HTML = `<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->`

var bookmarksTemplate = template.Must(template.New("bookmarks").Parse(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
{{.Notice}}
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="{{.Date}}" LAST_MODIFIED="{{.Date}}" PERSONAL_TOOLBAR_FOLDER="true">Resources Hub Export</H3>
    <DL><p>
{{- range .Items}}
        <DT><A HREF="{{.URL}}" ADD_DATE="{{.Added}}">{{.Text}}</A>
{{- end}}
    </DL><p>
</DL><p>
`))

type bookmark struct {
	URL   string
	Added int64
	Text  string
}

// WriteBookmarks writes a Netscape bookmark file with one folder holding
// every resource, importable by common browsers.
func WriteBookmarks(w io.Writer, resources []models.Resource, now time.Time) error {
	items := make([]bookmark, len(resources))
	for i, r := range resources {
		added := now.Unix()
		if t, ok := browse.AddedAt(r); ok {
			added = t.Unix()
		}
		text := r.Title
		if r.ShortDescription != "" {
			text += " - " + r.ShortDescription
		}
		items[i] = bookmark{URL: r.PrimaryURL(), Added: added, Text: text}
	}
	return bookmarksTemplate.Execute(w, struct {
		Notice template.HTML
		Date   string
		Items  []bookmark
	}{bookmarksNotice, strconv.FormatInt(now.Unix(), 10), items})
}

// WriteJSON writes the resources as an indented JSON array
func WriteJSON(w io.Writer, resources []models.Resource) error {
	if resources == nil {
		resources = []models.Resource{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resources)
}

// PinboardBookmark represents a bookmark in Pinboard JSON format
type PinboardBookmark struct {
	Href        string `json:"href"`
	Description string `json:"description"`
	Extended    string `json:"extended"`
	Tags        string `json:"tags"`
	Time        string `json:"time"`
	Shared      string `json:"shared"`
	ToRead      string `json:"toread"`
}

// ToPinboard converts a resource to a Pinboard bookmark
func ToPinboard(r models.Resource) PinboardBookmark {
	b := PinboardBookmark{
		Href:        r.PrimaryURL(),
		Description: r.Title,
		Extended:    r.ShortDescription,
		Tags:        strings.Join(r.Tags, " "),
		Shared:      "yes",
		ToRead:      "no",
	}
	if t, ok := browse.AddedAt(r); ok {
		b.Time = t.UTC().Format(time.RFC3339)
	}
	return b
}

// WritePinboard writes the resources as a Pinboard JSON array
func WritePinboard(w io.Writer, resources []models.Resource) error {
	bookmarks := make([]PinboardBookmark, len(resources))
	for i, r := range resources {
		bookmarks[i] = ToPinboard(r)
	}
	return json.NewEncoder(w).Encode(bookmarks)
}
