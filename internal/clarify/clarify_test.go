package clarify

import (
	"strings"
	"testing"

	"github.com/hpitta26/locflow/internal/segment"
)

func TestDetect(t *testing.T) {
	terms := []string{"play", "table"}

	if got := Detect("Join a table now", terms); got != "table" {
		t.Errorf("Detect = %q, want table", got)
	}
	if got := Detect("PLAY NOW", terms); got != "play" {
		t.Errorf("Detect = %q, want play (case-insensitive)", got)
	}
	// substrings must not match
	if got := Detect("displayed on portable devices", terms); got != "" {
		t.Errorf("Detect = %q, want no match", got)
	}
	if got := Detect("nothing ambiguous here", terms); got != "" {
		t.Errorf("Detect = %q, want empty", got)
	}
}

func TestLedger_Ask_OncePerItem(t *testing.T) {
	l := NewLedger()
	item := &segment.Item{Path: "pages.home.cta", Original: "Play now", Category: segment.CategoryButton}

	q := l.Ask("batch_1", item, "play")
	if q == nil {
		t.Fatal("first Ask returned nil")
	}
	if q.Status != StatusPending || q.Term != "play" || q.ItemPath != "pages.home.cta" {
		t.Errorf("question = %+v", q)
	}

	if again := l.Ask("batch_1", item, "play"); again != nil {
		t.Error("second Ask for same item returned a question")
	}
	if len(l.All()) != 1 {
		t.Errorf("ledger holds %d questions, want 1", len(l.All()))
	}
}

func TestLedger_Pending(t *testing.T) {
	l := NewLedger()
	a := &segment.Item{Path: "p.a", Original: "play"}
	b := &segment.Item{Path: "p.b", Original: "table"}

	qa := l.Ask("batch_1", a, "play")
	l.Ask("batch_2", b, "table")

	NewResolver(nil).Resolve(qa)

	if got := l.Pending("batch_1"); len(got) != 0 {
		t.Errorf("batch_1 pending = %d, want 0", len(got))
	}
	if got := l.Pending("batch_2"); len(got) != 1 {
		t.Errorf("batch_2 pending = %d, want 1", len(got))
	}
}

func TestResolver_CategoryRuleBeforeGeneric(t *testing.T) {
	r := NewResolver(DefaultRules())

	buttonQ := &Question{Term: "check", Category: segment.CategoryButton}
	bodyQ := &Question{Term: "check", Category: segment.CategoryBody}

	buttonAnswer := r.Resolve(buttonQ)
	bodyAnswer := r.Resolve(bodyQ)

	if buttonAnswer == bodyAnswer {
		t.Error("category-specific and generic rules gave the same answer")
	}
	if !strings.Contains(buttonAnswer, "passing") {
		t.Errorf("button answer = %q", buttonAnswer)
	}
}

func TestResolver_Fallback(t *testing.T) {
	r := NewResolver(DefaultRules())
	q := &Question{Term: "unmapped", Category: segment.CategoryBody}

	answer := r.Resolve(q)
	if answer != fallbackAnswer {
		t.Errorf("answer = %q, want fallback", answer)
	}
	if q.Status != StatusAnswered {
		t.Error("question not marked answered")
	}
}

func TestResolver_Idempotent(t *testing.T) {
	r := NewResolver(DefaultRules())
	q := &Question{Term: "fold", Category: segment.CategoryBody}

	first := r.Resolve(q)

	// a second resolution, even with a different rule table, keeps the answer
	second := NewResolver(nil).Resolve(q)
	if first != second {
		t.Errorf("answers differ: %q vs %q", first, second)
	}
}

func TestDefaultRules_CoverDefaultTerms(t *testing.T) {
	r := NewResolver(DefaultRules())
	for _, term := range DefaultAmbiguousTerms() {
		q := &Question{Term: term, Category: segment.CategoryBody}
		if answer := r.Resolve(q); answer == fallbackAnswer {
			t.Errorf("default term %q has no rule", term)
		}
	}
}
