// Package search implements the weighted, typo-tolerant resource search.
package search

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/resourceshub/hub/pkg/hub/models"
	"github.com/xrash/smetrics"
)

// Threshold is the largest accepted edit ratio (edits / query length)
const Threshold = 0.3

// Field is one searchable attribute and its weight
type Field struct {
	Name   string
	Weight float64
	values func(models.Resource) []string
}

// Fields are searched in this order; title dominates, categories count least.
var Fields = []Field{
	{Name: "title", Weight: 2, values: func(r models.Resource) []string { return []string{r.Title} }},
	{Name: "shortDescription", Weight: 1.5, values: func(r models.Resource) []string { return []string{r.ShortDescription} }},
	{Name: "tags", Weight: 1.2, values: func(r models.Resource) []string { return r.Tags }},
	{Name: "longDescription", Weight: 1, values: func(r models.Resource) []string { return []string{r.LongDescription} }},
	{Name: "categories", Weight: 0.8, values: func(r models.Resource) []string { return r.Categories }},
}

var totalWeight = func() float64 {
	var sum float64
	for _, f := range Fields {
		sum += f.Weight
	}
	return sum
}()

// Hit is one search result. Score is in (0, 1]; higher is more relevant.
type Hit struct {
	ID    string
	Score float64
}

type document struct {
	id string
	// fields[i][j] holds the tokens of value j of Fields[i]
	fields [][][]string
}

// Index is an immutable search index over a resource collection.
// It is safe for concurrent use.
type Index struct {
	docs []document
}

// NewIndex tokenizes every searchable field of resources
func NewIndex(resources []models.Resource) *Index {
	idx := &Index{docs: make([]document, 0, len(resources))}
	for _, r := range resources {
		doc := document{id: r.ID, fields: make([][][]string, len(Fields))}
		for i, f := range Fields {
			for _, v := range f.values(r) {
				if toks := tokenize(v); len(toks) > 0 {
					doc.fields[i] = append(doc.fields[i], toks)
				}
			}
		}
		idx.docs = append(idx.docs, doc)
	}
	return idx
}

// Len returns the number of indexed resources
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.docs)
}

// Search returns matching resource IDs by descending relevance, ties in
// index order. An empty or whitespace-only query matches nothing.
func (idx *Index) Search(query string) []Hit {
	q := tokenize(query)
	if len(q) == 0 || idx == nil {
		return nil
	}
	phrase := strings.Join(q, " ")

	var hits []Hit
	for _, doc := range idx.docs {
		var score float64
		for i, f := range Fields {
			best := -1.0
			for _, toks := range doc.fields[i] {
				if d, ok := matchTokens(phrase, len(q), toks); ok && (best < 0 || d < best) {
					best = d
				}
			}
			if best >= 0 {
				score += f.Weight * (1 - best)
			}
		}
		if score > 0 {
			hits = append(hits, Hit{ID: doc.id, Score: score / totalWeight})
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return hits
}

// matchTokens finds the best approximate occurrence of phrase (made of n
// tokens) in toks and returns its edit ratio.
func matchTokens(phrase string, n int, toks []string) (float64, bool) {
	text := strings.Join(toks, " ")
	if strings.Contains(text, phrase) {
		return 0, true
	}

	runes := utf8.RuneCountInString(phrase)
	allowed := int(Threshold * float64(runes))
	if allowed == 0 {
		return 0, false
	}

	best := allowed + 1
	for start := 0; start < len(toks); start++ {
		end := min(start+n, len(toks))
		window := strings.Join(toks[start:end], " ")
		if d := prefixDistance(phrase, window, allowed); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	if best > allowed {
		return 0, false
	}
	return float64(best) / float64(runes), true
}

// prefixDistance is the smallest edit distance between phrase and a prefix
// of window whose length in runes is within allowed of the phrase length.
func prefixDistance(phrase, window string, allowed int) int {
	best := allowed + 1
	p, w := []rune(phrase), []rune(window)
	lo := max(len(p)-allowed, 1)
	hi := min(len(p)+allowed, len(w))
	for l := lo; l <= hi; l++ {
		if d := runeDistance(p, w[:l]); d < best {
			best = d
		}
	}
	return best
}

// runeDistance is the Levenshtein distance counted in runes. WagnerFischer
// compares bytes, so each distinct rune is first mapped to one byte.
func runeDistance(a, b []rune) int {
	alphabet := make(map[rune]byte, len(a)+len(b))
	encode := func(rs []rune) (string, bool) {
		buf := make([]byte, len(rs))
		for i, r := range rs {
			c, ok := alphabet[r]
			if !ok {
				if len(alphabet) > 255 {
					return "", false
				}
				c = byte(len(alphabet))
				alphabet[r] = c
			}
			buf[i] = c
		}
		return string(buf), true
	}
	ea, okA := encode(a)
	eb, okB := encode(b)
	if !okA || !okB {
		return smetrics.WagnerFischer(string(a), string(b), 1, 1, 1)
	}
	return smetrics.WagnerFischer(ea, eb, 1, 1, 1)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
