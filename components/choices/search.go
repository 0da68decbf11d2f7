package choices

import (
	"sort"
	"strings"
)

// Option is one entry of a served list.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Search filters values case-insensitively. Prefix matches come first and the
// list order is otherwise preserved, so numeric lists stay ascending.
func Search(values []string, query string, limit int, opts Options) []string {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(values) <= limit {
				return append([]string{}, values...)
			}
			return append([]string{}, values[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedValue, 0, 16)
	for _, value := range values {
		lower := strings.ToLower(value)
		if !strings.Contains(lower, q) {
			continue
		}
		matches = append(matches, matchedValue{
			value:    value,
			isPrefix: strings.HasPrefix(lower, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.value)
	}
	return out
}

func SearchOptions(values []string, query string, limit int, opts Options) []Option {
	results := Search(values, query, limit, opts)
	if len(results) == 0 {
		return nil
	}

	out := make([]Option, 0, len(results))
	for _, value := range results {
		out = append(out, Option{Value: value, Label: value})
	}
	return out
}

type matchedValue struct {
	value    string
	isPrefix bool
}
