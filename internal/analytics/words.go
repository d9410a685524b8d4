package analytics

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// minWordLen filters out short filler words ("и", "на", "за"). Notes are
// mostly Russian so the length is counted in runes, not bytes.
const minWordLen = 3

// WordCount is one entry of a note word-frequency ranking.
type WordCount struct {
	Word  string
	Count int
}

// TopWords tokenizes the given notes on whitespace, lowercases every token,
// drops words shorter than three runes and returns the `limit` most frequent
// words. Ties keep first-encountered order: the sort is stable and compares
// counts only.
func TopWords(notes []string, limit int) []WordCount {
	counts := make(map[string]int)
	var order []string

	for _, note := range notes {
		for _, word := range strings.Fields(strings.ToLower(note)) {
			if utf8.RuneCountInString(word) < minWordLen {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	top := make([]WordCount, 0, limit)
	for _, w := range order[:limit] {
		top = append(top, WordCount{Word: w, Count: counts[w]})
	}
	return top
}
