package lookups

import (
	"sort"
	"strings"
)

// Search filters options whose label or value contains query, case
// insensitively. Prefix matches rank first, then labels sort ascending.
func Search(options []Option, query string, limit int, opts Options) []Option {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		if len(options) <= limit {
			return append([]Option(nil), options...)
		}
		return append([]Option(nil), options[:limit]...)
	}

	q := strings.ToLower(query)
	matches := make([]matched, 0, 16)
	for _, option := range options {
		label := strings.ToLower(option.Label)
		value := strings.ToLower(option.Value)
		if !strings.Contains(label, q) && !strings.Contains(value, q) {
			continue
		}
		matches = append(matches, matched{
			option:   option,
			isPrefix: strings.HasPrefix(label, q) || strings.HasPrefix(value, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].option.Label < matches[j].option.Label
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Option, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.option)
	}
	return out
}

type matched struct {
	option   Option
	isPrefix bool
}
