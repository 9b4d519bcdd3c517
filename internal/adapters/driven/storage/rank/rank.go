// Package rank holds the relevance scoring shared by the in-process index stores.
package rank

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Vectors of different length or zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Terms splits text into lower-cased letter and digit runs.
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Keyword scores content by how often the query terms occur in it,
// normalised by content length so short focused chunks rank first.
func Keyword(queryTerms []string, content string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	words := Terms(content)
	if len(words) == 0 {
		return 0
	}

	want := make(map[string]struct{}, len(queryTerms))
	for _, t := range queryTerms {
		want[t] = struct{}{}
	}

	hits := 0
	for _, w := range words {
		if _, ok := want[w]; ok {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return float64(hits) / math.Sqrt(float64(len(words)))
}

// Top sorts records by descending score and keeps at most k.
// Equal scores keep their input order.
func Top(records []domain.RetrievedRecord, k int) []domain.RetrievedRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	if k > 0 && len(records) > k {
		records = records[:k]
	}
	return records
}
