// Package clarify tracks clarifying questions raised during translation
// and answers them deterministically, so the convergence loop never blocks
// waiting for a human. A question is asked at most once per item; its
// answer is injected into the next translation request as additional
// instruction context.
package clarify

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/hpitta26/locflow/internal/segment"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAnswered Status = "answered"
)

type Question struct {
	BatchID  string
	ItemPath string
	Term     string
	Text     string
	Category segment.Category
	Status   Status
	Answer   string
}

// Detect returns the first configured ambiguous term appearing whole-word,
// case-insensitively in text, or "" when none matches.
func Detect(text string, terms []string) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if re.MatchString(text) {
			return term
		}
	}
	return ""
}

// Ledger is the per-job clarifying-question record. Safe for concurrent
// use by batch workers.
type Ledger struct {
	mu        sync.Mutex
	questions []*Question
	asked     map[string]bool
}

func NewLedger() *Ledger {
	return &Ledger{asked: map[string]bool{}}
}

// Ask records a question about term in item, unless one was already asked
// for that item. Returns the new question or nil.
func (l *Ledger) Ask(batchID string, item *segment.Item, term string) *Question {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.asked[item.Path] {
		return nil
	}
	l.asked[item.Path] = true
	q := &Question{
		BatchID:  batchID,
		ItemPath: item.Path,
		Term:     term,
		Text:     fmt.Sprintf("The term %q in %q is ambiguous; which sense should the translation use?", term, item.Original),
		Category: item.Category,
		Status:   StatusPending,
	}
	l.questions = append(l.questions, q)
	return q
}

// Pending returns the unanswered questions of one batch.
func (l *Ledger) Pending(batchID string) []*Question {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Question
	for _, q := range l.questions {
		if q.BatchID == batchID && q.Status == StatusPending {
			out = append(out, q)
		}
	}
	return out
}

// All returns every question asked during the job, answered or not.
func (l *Ledger) All() []*Question {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Question, len(l.questions))
	copy(out, l.questions)
	return out
}

// Rule answers questions whose term matches Keyword; a non-empty Category
// restricts the rule to items of that category. More specific rules must
// come before generic ones.
type Rule struct {
	Keyword  string           `mapstructure:"keyword"`
	Category segment.Category `mapstructure:"category"`
	Answer   string           `mapstructure:"answer"`
}

// fallbackAnswer keeps the pipeline moving when no rule matches.
const fallbackAnswer = "Translate literally and keep brand terminology consistent."

// Resolver answers questions from its rule table. Resolution is
// deterministic and total: every question receives exactly one answer.
type Resolver struct {
	rules []Rule
}

func NewResolver(rules []Rule) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve answers q in place and returns the answer. Already-answered
// questions keep their original answer.
func (r *Resolver) Resolve(q *Question) string {
	if q.Status == StatusAnswered {
		return q.Answer
	}
	answer := fallbackAnswer
	for _, rule := range r.rules {
		if !strings.EqualFold(rule.Keyword, q.Term) {
			continue
		}
		if rule.Category != "" && rule.Category != q.Category {
			continue
		}
		answer = rule.Answer
		break
	}
	q.Answer = answer
	q.Status = StatusAnswered
	return answer
}

// DefaultAmbiguousTerms lists polysemous words whose sense depends on the
// surrounding content category. Deployments override this through
// configuration.
func DefaultAmbiguousTerms() []string {
	return []string{"play", "table", "fold", "bank", "check"}
}

// DefaultRules is the rule table of the reference poker-site deployment.
func DefaultRules() []Rule {
	return []Rule{
		{Keyword: "play", Category: segment.CategoryButton, Answer: "Interpret \"play\" as the action of starting a game session."},
		{Keyword: "play", Answer: "Interpret \"play\" in its gaming sense, not theatrical or musical."},
		{Keyword: "table", Answer: "\"Table\" refers to a poker table, not furniture or a data grid."},
		{Keyword: "fold", Answer: "\"Fold\" is the poker action of discarding a hand, not bending something."},
		{Keyword: "bank", Answer: "\"Bank\" means the player's bankroll or funds, not a financial institution."},
		{Keyword: "check", Category: segment.CategoryButton, Answer: "\"Check\" is the poker action of passing, not a verification step."},
		{Keyword: "check", Answer: "Interpret \"check\" in its poker sense unless the surrounding text is clearly about verification."},
	}
}
