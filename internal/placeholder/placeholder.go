// Package placeholder shields non-translatable markup inside website copy
// (inline HTML tags, HTML entities, {interpolation} slots) from the
// translation capability by swapping it for numbered [PHn] markers, and
// restores the originals afterwards. UI strings frequently embed markup
// the model would otherwise translate or mangle.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// HTML/XML tags, opening, closing or self-closing.
	reTag = regexp.MustCompile(`<[^<>]+>`)

	// named or numeric HTML entities: &amp; &nbsp; &#8211;
	reEntity = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)

	// template interpolation slots: {{count}} or {name}
	reSlot = regexp.MustCompile(`\{\{[^{}]+\}\}|\{[^{}]+\}`)

	reMarker = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Protect replaces markup in text with [PH0], [PH1], … markers in order of
// appearance and returns the rewritten text plus the captured originals for
// Restore.
func Protect(text string) (string, []string) {
	var captured []string
	swap := func(match string) string {
		marker := fmt.Sprintf("[PH%d]", len(captured))
		captured = append(captured, match)
		return marker
	}
	// Tags go first so entities inside attributes stay attached to their
	// tag; double-brace slots are matched before single-brace ones by the
	// alternation order in reSlot.
	text = reTag.ReplaceAllStringFunc(text, swap)
	text = reSlot.ReplaceAllStringFunc(text, swap)
	text = reEntity.ReplaceAllStringFunc(text, swap)
	return text, captured
}

// Restore substitutes markers back with the originals captured by Protect.
// Unknown indices are left untouched.
func Restore(text string, captured []string) string {
	return reMarker.ReplaceAllStringFunc(text, func(match string) string {
		sub := reMarker.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(captured) {
			return match
		}
		return captured[idx]
	})
}

// Missing returns the indices of markers that no longer appear in text,
// typically markers the model dropped or rewrote. Callers feed these back
// as corrective instructions.
func Missing(text string, captured []string) []int {
	var missing []int
	for i := range captured {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// InstructionHint is appended to translation prompts whenever markers are
// present.
func InstructionHint() string {
	return "Keep every [PHn] marker exactly where it belongs in the translated text; never translate, reorder, or drop a marker."
}
