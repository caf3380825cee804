// Package review validates translated batches against the job's
// constraints and classifies every item as approved or in need of another
// pass. Checks run in a fixed order and at most one finding is produced
// per item per pass, so revision feedback stays focused on the most
// fundamental problem first.
package review

import (
	"fmt"
	"strings"

	"github.com/hpitta26/locflow/internal/constraint"
	"github.com/hpitta26/locflow/internal/placeholder"
	"github.com/hpitta26/locflow/internal/segment"
)

// Kind identifies what a finding is about.
type Kind string

const (
	KindItemCountMismatch Kind = "item_count_mismatch"
	KindEmptyOutput       Kind = "empty_output"
	KindBrandTermLost     Kind = "brand_term_lost"
	KindMarkupLost        Kind = "markup_lost"
	KindLengthExceeded    Kind = "length_exceeded"
	KindQualityIssue      Kind = "quality_issue"
	// KindCapabilityFailure is synthesized by the pipeline when the
	// capability call itself fails, so the retry shares the revision path.
	KindCapabilityFailure Kind = "capability_failure"
)

// Finding is one review result. Findings are ephemeral: produced by a
// review pass, consumed by the next revision, then discarded.
type Finding struct {
	BatchID  string
	ItemPath string
	Kind     Kind
	Detail   string
}

// Reviewer checks translated batches. The language check is optional; when
// nil the quality heuristic is skipped.
type Reviewer struct {
	brand constraint.BrandTerms
	lang  *LanguageCheck
}

func New(brand constraint.BrandTerms, lang *LanguageCheck) *Reviewer {
	return &Reviewer{brand: brand, lang: lang}
}

// CountMismatch builds the short-circuit finding for a batch whose output
// cardinality does not match its input. A mismatched batch is reviewed no
// further: positional alignment is gone and every per-item check would lie.
func CountMismatch(batchID string, want, got int) Finding {
	return Finding{
		BatchID: batchID,
		Kind:    KindItemCountMismatch,
		Detail:  fmt.Sprintf("expected %d items, got %d", want, got),
	}
}

// Review checks every not-yet-approved item of b in the fixed order:
// empty output, lost brand terms, length budget, target-language quality.
// Items that pass every check are marked approved and are never
// retranslated afterwards. The first failing check wins; one finding per
// item per pass.
func (r *Reviewer) Review(b *segment.Batch, targetLang string) []Finding {
	var findings []Finding
	for _, item := range b.Items {
		if item.Approved {
			continue
		}
		if f := r.reviewItem(b.ID, item, targetLang); f != nil {
			findings = append(findings, *f)
			continue
		}
		item.Approved = true
	}
	return findings
}

func (r *Reviewer) reviewItem(batchID string, item *segment.Item, targetLang string) *Finding {
	if item.Translated == "" {
		return &Finding{
			BatchID:  batchID,
			ItemPath: item.Path,
			Kind:     KindEmptyOutput,
			Detail:   "translation is empty",
		}
	}

	if missing := r.brand.Missing(item.Original, item.Translated); len(missing) > 0 {
		return &Finding{
			BatchID:  batchID,
			ItemPath: item.Path,
			Kind:     KindBrandTermLost,
			Detail:   fmt.Sprintf("brand terms missing from translation: %v", missing),
		}
	}

	if lost := lostMarkup(item.Original, item.Translated); len(lost) > 0 {
		return &Finding{
			BatchID:  batchID,
			ItemPath: item.Path,
			Kind:     KindMarkupLost,
			Detail:   fmt.Sprintf("markup missing from translation: %v", lost),
		}
	}

	if item.Budget > 0 {
		if n := len([]rune(item.Translated)); n > item.Budget {
			return &Finding{
				BatchID:  batchID,
				ItemPath: item.Path,
				Kind:     KindLengthExceeded,
				Detail:   fmt.Sprintf("%d characters exceeds budget of %d by %d", n, item.Budget, n-item.Budget),
			}
		}
	}

	if r.lang != nil {
		if ok, detected := r.lang.Matches(item.Translated, targetLang); !ok {
			return &Finding{
				BatchID:  batchID,
				ItemPath: item.Path,
				Kind:     KindQualityIssue,
				Detail:   fmt.Sprintf("expected %s but detected %s", targetLang, detected),
			}
		}
	}

	return nil
}

// lostMarkup returns the protected markup fragments of original that no
// longer appear verbatim in translated. A correct translation carries every
// tag, entity, and interpolation slot through unchanged; losing one breaks
// rendering even when the prose is fine.
func lostMarkup(original, translated string) []string {
	_, captured := placeholder.Protect(original)
	var lost []string
	for _, frag := range captured {
		if !strings.Contains(translated, frag) {
			lost = append(lost, frag)
		}
	}
	return lost
}
