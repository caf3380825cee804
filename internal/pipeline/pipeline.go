// Package pipeline drives a localization job through the bounded
// translate → review → clarify/revise convergence loop.
//
// Batches are independent units of work processed concurrently under a
// small worker cap; within a batch the stages run strictly in sequence,
// and item order is preserved end-to-end because translated values align
// positionally with the request. Every batch reaches a terminal state:
// approved when review passes, exhausted when the iteration budget runs
// out. In the latter case the best translation produced so far is kept and
// untranslated leaves fall back to their source values at reassembly.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hpitta26/locflow/internal/clarify"
	"github.com/hpitta26/locflow/internal/constraint"
	"github.com/hpitta26/locflow/internal/content"
	"github.com/hpitta26/locflow/internal/placeholder"
	"github.com/hpitta26/locflow/internal/prompt"
	"github.com/hpitta26/locflow/internal/review"
	"github.com/hpitta26/locflow/internal/segment"
	"github.com/hpitta26/locflow/internal/translator"
)

// Memory is an optional per-item translation cache consulted before the
// first capability call and updated with approved results.
type Memory interface {
	Lookup(ctx context.Context, sourceText, targetLang string) (string, bool)
	Save(ctx context.Context, sourceText, targetLang, translated, category string) error
}

// Persister receives the finished job. The default implementation does
// nothing; real persistence is a deployment concern.
type Persister interface {
	SaveJob(ctx context.Context, result *Result) error
}

// NopPersister discards the job result.
type NopPersister struct{}

func (NopPersister) SaveJob(context.Context, *Result) error { return nil }

// Config assembles a Controller. Service and TargetLanguage are required;
// everything else has working defaults.
type Config struct {
	Service       translator.Service
	ServiceConfig translator.Config
	Constraints   constraint.Set
	Resolver      *clarify.Resolver
	Reviewer      *review.Reviewer
	Observer      Observer
	Memory        Memory
	Persister     Persister

	TargetLanguage string
	SourceLanguage string

	// AmbiguousTerms trigger clarifying questions when they appear in
	// source text.
	AmbiguousTerms []string

	// MaxWorkers caps concurrently in-flight batches (default 3, matching
	// external API rate expectations).
	MaxWorkers int

	// Batches of at most SmallBatchThreshold items run up to
	// SmallBatchIterations convergence cycles; larger batches get
	// LargeBatchIterations.
	SmallBatchThreshold  int
	SmallBatchIterations int
	LargeBatchIterations int

	// CallTimeout bounds each capability invocation; an expired call is a
	// recoverable failure, not a job failure.
	CallTimeout time.Duration

	// CallsPerSecond rate-limits outbound capability calls across all
	// workers; zero disables the limiter.
	CallsPerSecond float64
}

const (
	defaultMaxWorkers      = 3
	defaultSmallThreshold  = 3
	defaultSmallIterations = 3
	defaultLargeIterations = 5
	defaultCallTimeout     = 60 * time.Second
)

// BatchReport summarizes one batch's journey for the job result.
type BatchReport struct {
	BatchID    string
	Group      string
	Status     segment.Status
	Items      int
	Iterations int
}

// Result is the complete outcome of one job. Document always has the same
// shape as the input document.
type Result struct {
	JobID          string
	TargetLanguage string
	Document       content.Document
	Batches        []BatchReport
	Questions      []*clarify.Question
	MissedPaths    []string
	Warnings       []string
}

// Approved counts batches that converged.
func (r *Result) Approved() int {
	n := 0
	for _, b := range r.Batches {
		if b.Status == segment.StatusApproved {
			n++
		}
	}
	return n
}

// Controller runs localization jobs. A Controller is stateless between
// jobs; all per-job state lives on the stack of Run.
type Controller struct {
	cfg     Config
	limiter *rate.Limiter
}

func New(cfg Config) (*Controller, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("translation service is required")
	}
	if cfg.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	if cfg.SmallBatchThreshold <= 0 {
		cfg.SmallBatchThreshold = defaultSmallThreshold
	}
	if cfg.SmallBatchIterations <= 0 {
		cfg.SmallBatchIterations = defaultSmallIterations
	}
	if cfg.LargeBatchIterations <= 0 {
		cfg.LargeBatchIterations = defaultLargeIterations
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.Reviewer == nil {
		cfg.Reviewer = review.New(cfg.Constraints.Brand, nil)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = clarify.NewResolver(clarify.DefaultRules())
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Persister == nil {
		cfg.Persister = NopPersister{}
	}

	c := &Controller{cfg: cfg}
	if cfg.CallsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.CallsPerSecond), 1)
	}
	return c, nil
}

// Run localizes doc and returns the translated document together with the
// job report. The input document is never mutated. Run fails only on
// context cancellation before work started; capability failures are
// absorbed into per-batch iteration budgets.
func (c *Controller) Run(ctx context.Context, doc content.Document) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		JobID:          uuid.New().String(),
		TargetLanguage: c.cfg.TargetLanguage,
	}

	limits := c.cfg.Constraints.Limits
	batches, warnings := segment.Split(doc, func(originalLen int) int {
		return limits.Budget(originalLen, c.cfg.TargetLanguage)
	})
	result.Warnings = warnings
	for _, w := range warnings {
		c.cfg.Observer.Warning(result.JobID, w)
	}

	ledger := clarify.NewLedger()
	iterations := make([]int, len(batches))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.cfg.MaxWorkers)
	for i, b := range batches {
		wg.Add(1)
		go func(idx int, batch *segment.Batch) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			iterations[idx] = c.runBatch(ctx, result.JobID, batch, ledger)
		}(i, b)
	}
	wg.Wait()

	// Join barrier passed: batches no longer mutate, reassembly may merge.
	translations := map[string]string{}
	for i, b := range batches {
		result.Batches = append(result.Batches, BatchReport{
			BatchID:    b.ID,
			Group:      b.Group,
			Status:     b.Status,
			Items:      len(b.Items),
			Iterations: iterations[i],
		})
		for _, item := range b.Items {
			if item.Translated != "" {
				translations[item.Path] = item.Translated
			}
			if c.cfg.Memory != nil && item.Approved {
				if err := c.cfg.Memory.Save(ctx, item.Original, c.cfg.TargetLanguage, item.Translated, string(item.Category)); err != nil {
					c.cfg.Observer.Warning(result.JobID, fmt.Sprintf("memory save failed for %s: %v", item.Path, err))
				}
			}
		}
	}

	translated, missed := content.Apply(doc, translations)
	result.Document = translated
	result.MissedPaths = missed
	for _, p := range missed {
		c.cfg.Observer.Warning(result.JobID, fmt.Sprintf("path %s no longer resolves; source value kept", p))
	}
	result.Questions = ledger.All()

	if err := c.cfg.Persister.SaveJob(ctx, result); err != nil {
		c.cfg.Observer.Warning(result.JobID, fmt.Sprintf("persist failed: %v", err))
	}
	return result, nil
}

// runBatch drives one batch to a terminal state and returns the number of
// iterations consumed.
func (c *Controller) runBatch(ctx context.Context, jobID string, b *segment.Batch, ledger *clarify.Ledger) int {
	maxIter := c.cfg.LargeBatchIterations
	if b.Small(c.cfg.SmallBatchThreshold) {
		maxIter = c.cfg.SmallBatchIterations
	}

	if c.cfg.Memory != nil {
		for _, item := range b.Items {
			if hit, ok := c.cfg.Memory.Lookup(ctx, item.Original, c.cfg.TargetLanguage); ok && hit != "" {
				item.Translated = hit
				item.Approved = true
			}
		}
		if allApproved(b) {
			c.transition(jobID, b, segment.StatusApproved, 0, "all items from translation memory")
			return 0
		}
	}

	// clarifications persist across iterations; review feedback is replaced
	// every pass (findings are consumed, not accumulated).
	var clarifications []string
	var reviewFeedback []string
	requested := pendingItems(b)

	iterations := 0
	for iter := 1; iter <= maxIter; iter++ {
		if ctx.Err() != nil {
			c.transition(jobID, b, segment.StatusExhausted, iterations, "canceled; keeping best attempt")
			return iterations
		}
		iterations = iter

		// Ambiguity screen runs before committing translations, so a
		// flagged item's first committed value is already informed by the
		// clarification answer.
		newQuestions := c.screen(b, requested, ledger)

		feedback := append(append([]string{}, clarifications...), reviewFeedback...)
		values, err := c.invoke(ctx, b, requested, feedback)
		if err != nil {
			// Questions raised this pass still get answered, or they
			// would stay pending forever: the ledger never re-asks.
			clarifications = append(clarifications, c.resolve(newQuestions)...)
			f := review.Finding{BatchID: b.ID, Kind: review.KindCapabilityFailure, Detail: err.Error()}
			c.transition(jobID, b, segment.StatusRevision, iter, err.Error())
			reviewFeedback = []string{instructionFor(f, nil)}
			requested = pendingItems(b)
			continue
		}

		if len(values) != len(requested) {
			f := review.CountMismatch(b.ID, len(requested), len(values))
			c.transition(jobID, b, segment.StatusRevision, iter, f.Detail)
			reviewFeedback = []string{instructionFor(f, nil)}
			// Alignment is lost; the whole remaining batch is retranslated.
			requested = pendingItems(b)
			continue
		}

		questioned := map[string]bool{}
		for _, q := range newQuestions {
			questioned[q.ItemPath] = true
		}
		for i, item := range requested {
			// A newly questioned item does not commit this pass, and a
			// committed value is never replaced by an empty one.
			if questioned[item.Path] || values[i] == "" {
				continue
			}
			item.Translated = values[i]
		}
		c.transition(jobID, b, segment.StatusTranslated, iter, "")

		if len(newQuestions) > 0 {
			c.transition(jobID, b, segment.StatusClarification, iter, fmt.Sprintf("%d clarifying questions", len(newQuestions)))
			clarifications = append(clarifications, c.resolve(newQuestions)...)
			requested = itemsByPath(b, questioned)
			continue
		}

		findings := c.cfg.Reviewer.Review(b, c.cfg.TargetLanguage)
		if len(findings) == 0 {
			c.transition(jobID, b, segment.StatusApproved, iter, "")
			return iter
		}
		c.transition(jobID, b, segment.StatusRevision, iter, fmt.Sprintf("%d findings", len(findings)))

		reviewFeedback = reviewFeedback[:0]
		flagged := map[string]bool{}
		for _, f := range findings {
			reviewFeedback = append(reviewFeedback, instructionFor(f, itemAt(b, f.ItemPath)))
			if f.ItemPath != "" {
				flagged[f.ItemPath] = true
			}
		}
		requested = itemsByPath(b, flagged)
		if len(requested) == 0 {
			// Batch-level finding (count mismatch from review): retranslate
			// everything still unapproved.
			requested = pendingItems(b)
		}
	}

	c.transition(jobID, b, segment.StatusExhausted, maxIter, "iteration budget exhausted; keeping best attempt")
	return maxIter
}

// screen raises clarifying questions for requested items containing a
// configured ambiguous term. The ledger guarantees at most one question per
// item over the whole job.
func (c *Controller) screen(b *segment.Batch, requested []*segment.Item, ledger *clarify.Ledger) []*clarify.Question {
	var questions []*clarify.Question
	for _, item := range requested {
		term := clarify.Detect(item.Original, c.cfg.AmbiguousTerms)
		if term == "" {
			continue
		}
		if q := ledger.Ask(b.ID, item, term); q != nil {
			questions = append(questions, q)
		}
	}
	return questions
}

// resolve answers every question and returns the feedback lines that carry
// the answers into the next capability call.
func (c *Controller) resolve(questions []*clarify.Question) []string {
	var lines []string
	for _, q := range questions {
		answer := c.cfg.Resolver.Resolve(q)
		lines = append(lines, fmt.Sprintf("Regarding %q: %s", q.Term, answer))
	}
	return lines
}

// invoke performs one rate-limited, timeout-bounded capability call for the
// requested items and returns the post-processed values, positionally
// aligned with requested. Markup is masked before the call and restored,
// glossary-substituted, and brand-restored afterwards, but only when the
// value count matches, since a misaligned response is discarded anyway.
func (c *Controller) invoke(ctx context.Context, b *segment.Batch, requested []*segment.Item, feedback []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	texts := make([]string, len(requested))
	types := make([]string, len(requested))
	budgets := make([]int, len(requested))
	captures := make([][]string, len(requested))
	protected := false
	for i, item := range requested {
		text, caps := placeholder.Protect(item.Original)
		texts[i] = text
		captures[i] = caps
		types[i] = item.Type
		budgets[i] = item.Budget
		if len(caps) > 0 {
			protected = true
		}
	}

	preq := prompt.Request{
		Group:          b.Group,
		TargetLanguage: c.cfg.TargetLanguage,
		SourceLanguage: c.cfg.SourceLanguage,
		Types:          types,
		Texts:          texts,
		Budgets:        budgets,
		Glossary:       c.cfg.Constraints.Glossary.For(c.cfg.TargetLanguage),
		Brand:          c.cfg.Constraints.Brand,
		Feedback:       feedback,
		Protected:      protected,
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	res, err := c.cfg.Service.Translate(callCtx, c.cfg.ServiceConfig, translator.Request{
		Payload:      preq.Payload(),
		Instructions: preq.Instructions(),
		Segments:     texts,
		SourceLang:   c.cfg.SourceLanguage,
		TargetLang:   c.cfg.TargetLanguage,
	})
	if err != nil {
		return nil, err
	}

	values := res.Values
	if len(values) == 0 {
		values = prompt.ParseValues(res.Raw, len(requested))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("capability returned no parseable output")
	}

	if len(values) == len(requested) {
		for i := range values {
			v := placeholder.Restore(values[i], captures[i])
			v = c.cfg.Constraints.Glossary.Apply(v, c.cfg.TargetLanguage)
			v = c.cfg.Constraints.Brand.Restore(requested[i].Original, v)
			values[i] = v
		}
	}
	return values, nil
}

func (c *Controller) transition(jobID string, b *segment.Batch, to segment.Status, iter int, detail string) {
	from := b.Status
	b.Status = to
	c.cfg.Observer.BatchTransition(Transition{
		JobID:     jobID,
		BatchID:   b.ID,
		From:      from,
		To:        to,
		Iteration: iter,
		Detail:    detail,
	})
}

func allApproved(b *segment.Batch) bool {
	for _, item := range b.Items {
		if !item.Approved {
			return false
		}
	}
	return true
}

func pendingItems(b *segment.Batch) []*segment.Item {
	var out []*segment.Item
	for _, item := range b.Items {
		if !item.Approved {
			out = append(out, item)
		}
	}
	return out
}

func itemsByPath(b *segment.Batch, paths map[string]bool) []*segment.Item {
	var out []*segment.Item
	for _, item := range b.Items {
		if paths[item.Path] && !item.Approved {
			out = append(out, item)
		}
	}
	return out
}

func itemAt(b *segment.Batch, path string) *segment.Item {
	if path == "" {
		return nil
	}
	for _, item := range b.Items {
		if item.Path == path {
			return item
		}
	}
	return nil
}
