// Package search filters and ranks gallery items by title.
package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/shutter/internal/domain"
)

// Result is a filter match with positions for highlighting
type Result struct {
	Item           domain.GalleryItem
	Index          int   // Position in the indexed slice
	MatchedIndexes []int // Byte offsets into the display title
	Score          int   // Higher is better
}

// Index implements fuzzy.Source over gallery titles.
// Lowercase titles are computed once so filtering while typing does not allocate per item.
type Index struct {
	items       []domain.GalleryItem
	lowerTitles []string
}

// NewIndex builds an index over items in their current order
func NewIndex(items []domain.GalleryItem) *Index {
	idx := &Index{
		items:       items,
		lowerTitles: make([]string, len(items)),
	}
	for i, item := range items {
		idx.lowerTitles[i] = strings.ToLower(item.DisplayTitle())
	}
	return idx
}

func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

func (idx *Index) Len() int { return len(idx.items) }

// Filter returns the items whose titles fuzzy-match query, best first.
// An empty query matches nothing.
func (idx *Index) Filter(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || idx.Len() == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Item:           idx.items[m.Index],
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// Rank orders remote search results by how closely their titles match query.
// Ties keep the server order.
func Rank(items []domain.GalleryItem, query string) []domain.GalleryItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(items) < 2 {
		return items
	}

	type ranked struct {
		item  domain.GalleryItem
		score int
	}
	scored := make([]ranked, len(items))
	for i, item := range items {
		scored[i] = ranked{item: item, score: matchScore(strings.ToLower(item.DisplayTitle()), query)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score < scored[j].score
	})

	out := make([]domain.GalleryItem, len(scored))
	for i, r := range scored {
		out[i] = r.item
	}
	return out
}

// matchScore is lower for better matches
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	case lfuzzy.MatchFold(query, title):
		return 75
	default:
		return 100 + lfuzzy.LevenshteinDistance(query, title)
	}
}
