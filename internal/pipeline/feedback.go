package pipeline

import (
	"fmt"
	"strings"

	"github.com/hpitta26/locflow/internal/review"
	"github.com/hpitta26/locflow/internal/segment"
)

// instructionFor maps a review finding to the corrective instruction
// appended to the retranslation request. Instructions stay imperative and
// concrete; vague feedback produces vague revisions.
func instructionFor(f review.Finding, item *segment.Item) string {
	switch f.Kind {
	case review.KindLengthExceeded:
		budget := 0
		if item != nil {
			budget = item.Budget
		}
		return fmt.Sprintf("Item at %s is too long (%s). Produce a shorter equivalent under %d characters; prefer concise synonyms and rephrasing over truncation.",
			f.ItemPath, f.Detail, budget)
	case review.KindBrandTermLost:
		return fmt.Sprintf("Item at %s lost required brand terms (%s). Reproduce every brand term with its exact source spelling and casing.",
			f.ItemPath, f.Detail)
	case review.KindMarkupLost:
		return fmt.Sprintf("Item at %s dropped markup (%s). Keep every HTML tag, entity, and placeholder exactly as it appears in the source.",
			f.ItemPath, f.Detail)
	case review.KindEmptyOutput:
		return fmt.Sprintf("Item at %s came back empty. Every item must receive a non-empty translation.", f.ItemPath)
	case review.KindItemCountMismatch:
		return fmt.Sprintf("The previous response had the wrong number of items (%s). Respond with a JSON object {\"items\": [...]} containing one value per input item, in input order.", f.Detail)
	case review.KindQualityIssue:
		return fmt.Sprintf("Item at %s appears to be in the wrong language (%s). Write the translation entirely in the target language.", f.ItemPath, f.Detail)
	case review.KindCapabilityFailure:
		return "The previous attempt failed. Respond only with the requested JSON object, nothing else."
	default:
		return strings.TrimSpace(fmt.Sprintf("Fix the following and retranslate: %s", f.Detail))
	}
}
