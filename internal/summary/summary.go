// Package summary renders the outcome of a merge run for humans.
package summary

import (
	"fmt"
	"strings"
)

// Format phrases the merge outcome as a single line. Counts of zero are
// omitted and the nouns are pluralized, so two errors and one bad file come
// out as "found 2 errors, 1 unparsable file".
func Format(errors, unparsable int) string {
	if errors == 0 && unparsable == 0 {
		return "no memcheck errors or parsing issues encountered"
	}
	var parts []string
	if errors > 0 {
		parts = append(parts, countNoun(errors, "error"))
	}
	if unparsable > 0 {
		parts = append(parts, countNoun(unparsable, "unparsable file"))
	}
	return "found " + strings.Join(parts, ", ")
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
