// Package segment partitions a content document into translation batches.
//
// Each translatable leaf becomes an Item tagged with its structural path and
// a content category; items are grouped into one Batch per nearest named
// structural group, so that text translated together shares surrounding
// meaning. Segmentation is a pure function of the document: the same input
// always produces the same paths, ordering, and batch membership.
package segment

import (
	"strings"

	"github.com/hpitta26/locflow/internal/content"
)

// Category classifies what kind of UI surface an item belongs to. It feeds
// length budgeting, ambiguity resolution, and prompt context.
type Category string

const (
	CategoryNavigation Category = "navigation"
	CategoryButton     Category = "button"
	CategoryHeader     Category = "header"
	CategoryFormLabel  Category = "form_label"
	CategoryMeta       Category = "meta"
	CategoryBody       Category = "body"
)

// Status is the convergence state of a batch.
type Status string

const (
	StatusPending       Status = "pending"
	StatusTranslated    Status = "translated"
	StatusClarification Status = "needs_clarification"
	StatusRevision      Status = "needs_revision"
	StatusApproved      Status = "approved"
	StatusExhausted     Status = "exhausted"
)

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusExhausted
}

// Item is one translatable leaf. Path, Type, Original, Category and Budget
// are fixed at segmentation time; Translated and Approved carry the working
// result through the convergence loop.
type Item struct {
	Path     string
	Type     string
	Original string
	Category Category
	Budget   int

	Translated string
	Approved   bool
}

// Batch is the unit of one translation-capability invocation. Item order is
// the positional-alignment contract: the k-th translated value always
// belongs to Items[k].
type Batch struct {
	ID     string
	Group  string
	Items  []*Item
	Status Status
}

// SourceTexts returns the item texts in batch order.
func (b *Batch) SourceTexts() []string {
	out := make([]string, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.Original
	}
	return out
}

// Small reports whether the batch qualifies for the reduced iteration
// budget (threshold items or fewer).
func (b *Batch) Small(threshold int) bool {
	return len(b.Items) <= threshold
}

// typeCategories maps explicit leaf type tags onto categories.
var typeCategories = map[string]Category{
	"navigation": CategoryNavigation,
	"nav":        CategoryNavigation,
	"button":     CategoryButton,
	"cta":        CategoryButton,
	"header":     CategoryHeader,
	"title":      CategoryHeader,
	"label":      CategoryFormLabel,
	"form_label": CategoryFormLabel,
	"meta":       CategoryMeta,
	"seo":        CategoryMeta,
}

// pathCategories is checked in order against the lowercased structural path
// when the type tag is not conclusive.
var pathCategories = []struct {
	keywords []string
	category Category
}{
	{[]string{"nav", "menu"}, CategoryNavigation},
	{[]string{"button", "btn", "cta"}, CategoryButton},
	{[]string{"header", "title"}, CategoryHeader},
	{[]string{"form", "label"}, CategoryFormLabel},
	{[]string{"meta", "seo"}, CategoryMeta},
}

// Classify derives an item's category from its explicit type tag first and
// its structural path second, defaulting to body copy.
func Classify(typ, path string) Category {
	if c, ok := typeCategories[strings.ToLower(typ)]; ok {
		return c
	}
	lower := strings.ToLower(path)
	for _, pc := range pathCategories {
		for _, kw := range pc.keywords {
			if strings.Contains(lower, kw) {
				return pc.category
			}
		}
	}
	return CategoryBody
}

// Split walks doc and groups its translatable leaves into batches, one per
// nearest named structural group (the mapping that directly contains the
// leaves). Empty groups produce no batch. budget computes the character
// budget from the original text length; a nil budget leaves budgets at
// zero.
//
// The second return value lists structural warnings from the walk (partial
// type/value nodes that were recursed into rather than treated as leaves).
func Split(doc content.Document, budget func(originalLen int) int) ([]*Batch, []string) {
	byGroup := map[string]*Batch{}
	var order []string

	warnings := content.Walk(doc, func(path string, leaf map[string]any) {
		typ, value, _ := content.Leaf(leaf)
		parent := content.ParentPath(path)

		b, ok := byGroup[parent]
		if !ok {
			b = &Batch{
				ID:     batchID(parent),
				Group:  groupName(doc, parent),
				Status: StatusPending,
			}
			byGroup[parent] = b
			order = append(order, parent)
		}

		item := &Item{
			Path:     path,
			Type:     typ,
			Original: value,
			Category: Classify(typ, path),
		}
		if budget != nil {
			item.Budget = budget(len([]rune(value)))
		}
		b.Items = append(b.Items, item)
	})

	batches := make([]*Batch, 0, len(order))
	for _, parent := range order {
		batches = append(batches, byGroup[parent])
	}
	return batches, warnings
}

func batchID(parentPath string) string {
	if parentPath == "" {
		return "batch_root"
	}
	sanitized := strings.NewReplacer(".", "_", "[", "_", "]", "").Replace(parentPath)
	return "batch_" + sanitized
}

// groupName prefers an explicit meta_data name on the group mapping over the
// final path segment.
func groupName(doc content.Document, parentPath string) string {
	if parentPath == "" {
		return "root"
	}
	if node := lookup(doc, parentPath); node != nil {
		if name, ok := node["meta_data"].(string); ok && name != "" {
			return name
		}
	}
	segs := strings.Split(parentPath, ".")
	return segs[len(segs)-1]
}

// lookup resolves a dot path to a mapping node, ignoring list indices (a
// group is always a mapping). Returns nil when the path does not resolve.
func lookup(doc content.Document, path string) map[string]any {
	var node any = map[string]any(doc)
	for _, seg := range strings.Split(path, ".") {
		if i := strings.IndexByte(seg, '['); i >= 0 {
			seg = seg[:i]
		}
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node, ok = m[seg]
		if !ok {
			return nil
		}
	}
	m, _ := node.(map[string]any)
	return m
}
