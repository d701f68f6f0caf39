package core

import "slices"

// SortRows orders rows by descending relevance, then by descending
// publication date. Rows with an unknown date sort after dated rows of the
// same score. Key breaks any remaining tie so the order is stable across calls.
func SortRows(rows []SearchResultRow) {
	slices.SortStableFunc(rows, compareRows)
}

func compareRows(a, b SearchResultRow) int {
	if a.RelevanceScore != b.RelevanceScore {
		if a.RelevanceScore > b.RelevanceScore {
			return -1
		}
		return 1
	}
	switch {
	case a.PublishedAt == nil && b.PublishedAt != nil:
		return 1
	case a.PublishedAt != nil && b.PublishedAt == nil:
		return -1
	case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
		if a.PublishedAt.After(*b.PublishedAt) {
			return -1
		}
		return 1
	}
	if a.Key < b.Key {
		return -1
	}
	if a.Key > b.Key {
		return 1
	}
	return 0
}
