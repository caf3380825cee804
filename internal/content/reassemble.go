package content

import "sort"

// Apply writes translated values back onto a deep copy of original, keyed by
// structural path. Paths that no longer resolve are collected and returned
// rather than raised: the corresponding leaves keep their source-language
// value. The returned document always has the same shape as the input.
func Apply(original Document, translations map[string]string) (Document, []string) {
	out := Clone(original)
	var missed []string
	for path, text := range translations {
		if text == "" {
			continue
		}
		if err := SetValue(out, path, text); err != nil {
			missed = append(missed, path)
		}
	}
	sort.Strings(missed)
	return out, missed
}
