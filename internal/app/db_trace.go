package app

import (
	"fmt"
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	valuesTupleRegex     = regexp.MustCompile(`\(\$\d+(?:, \$\d+)*\)`)
)

// formatDBQueryForTrace flattens whitespace, folds multi-row VALUES lists
// down to their first tuple and truncates what is left.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := collapseValuesTuples(queryWhitespaceRegex.ReplaceAllString(query, " "))
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

func collapseValuesTuples(query string) string {
	matches := valuesTupleRegex.FindAllStringIndex(query, -1)
	if len(matches) < 2 {
		return query
	}

	last := 0
	for i := 1; i < len(matches); i++ {
		if query[matches[i-1][1]:matches[i][0]] != ", " {
			break
		}
		last = i
	}
	if last == 0 {
		return query
	}

	first, end := matches[0], matches[last]
	return query[:first[1]] + fmt.Sprintf(" /* +%d rows */", last) + query[end[1]:]
}
