package usecase

import "strings"

// ParseTags splits a comma separated tag field and trims every entry.
// Empty entries are kept; NormalizeTags drops them.
func ParseTags(input string) []string {
	parts := strings.Split(input, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}

// NormalizeTags trims names, drops empty ones and removes duplicates while keeping order.
// Names are case-sensitive.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
