// Package prompt renders translation requests and parses capability output.
//
// Rendering is a pure function of its inputs (batch texts, constraints,
// review feedback), so prompt construction is testable in isolation and
// free of closure-capture surprises. Parsing is deliberately forgiving:
// models return clean JSON, markdown-fenced JSON, numbered lines, or free
// text, and all of them must positionally align or degrade without
// crashing.
package prompt

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hpitta26/locflow/internal/placeholder"
	"github.com/hpitta26/locflow/internal/postprocess"
)

// Request holds everything one capability invocation needs. Types, Texts
// and Budgets are positionally aligned with the batch's item order.
type Request struct {
	Group          string
	TargetLanguage string
	SourceLanguage string
	Types          []string
	Texts          []string
	Budgets        []int
	Glossary       map[string]string
	Brand          []string
	Feedback       []string
	Protected      bool
}

// Payload renders the user-facing content block: the group header for
// shared context followed by one numbered, type-tagged line per item.
func (r Request) Payload() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Content Group: %s\n\n", r.Group)
	for i, text := range r.Texts {
		typ := "content"
		if i < len(r.Types) && r.Types[i] != "" {
			typ = r.Types[i]
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, strings.ToUpper(typ), text)
	}
	return sb.String()
}

// Instructions renders the system prompt: output contract, terminology,
// brand rules, per-item character budgets, and any corrective feedback
// carried over from review or clarification.
func (r Request) Instructions() string {
	var sb strings.Builder

	source := r.SourceLanguage
	if source == "" || source == "auto" {
		source = "the source language"
	}
	fmt.Fprintf(&sb, "You are a professional website localizer. Translate the numbered items below from %s to %s.\n", source, r.TargetLanguage)
	fmt.Fprintf(&sb, "Respond ONLY with a JSON object of the form {\"items\": [{\"value\": \"...\"}]} containing exactly %d items, in the same order as the input. No commentary, no markdown fences.\n", len(r.Texts))
	sb.WriteString("Items are related content from one page section; translate them consistently with each other.\n")

	if len(r.Glossary) > 0 {
		sb.WriteString("\nTERMINOLOGY (use these exact translations):\n")
		terms := make([]string, 0, len(r.Glossary))
		for term := range r.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			fmt.Fprintf(&sb, "  %s → %s\n", term, r.Glossary[term])
		}
	}

	if len(r.Brand) > 0 {
		fmt.Fprintf(&sb, "\nBRAND TERMS (never translate, keep exact spelling and casing): %s\n", strings.Join(r.Brand, ", "))
	}

	if len(r.Budgets) == len(r.Texts) {
		sb.WriteString("\nCHARACTER LIMITS (hard maximum per translated item):\n")
		for i, budget := range r.Budgets {
			if budget > 0 {
				fmt.Fprintf(&sb, "  item %d: %d characters\n", i+1, budget)
			}
		}
	}

	if r.Protected {
		sb.WriteString("\n" + placeholder.InstructionHint() + "\n")
	}

	if len(r.Feedback) > 0 {
		sb.WriteString("\nREVISION NOTES (apply every one of these):\n")
		for _, f := range r.Feedback {
			fmt.Fprintf(&sb, "  - %s\n", f)
		}
	}

	return sb.String()
}

var (
	fenceRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	numberedRe = regexp.MustCompile(`^\s*\d+[.)]\s*(?:\[[A-Z_]+\]\s*)?(.*)$`)
)

// ParseValues extracts the translated values from raw capability output.
// It attempts, in order: a JSON object with an "items" list, a bare JSON
// array, the same after unfencing markdown, and a numbered-line parse that
// only counts when it yields exactly want lines. As a last resort the whole
// cleaned response becomes a single value, which Review will reject as an
// item-count mismatch for multi-item batches. Empty input yields nil.
func ParseValues(raw string, want int) []string {
	cleaned := postprocess.Clean(raw)
	if cleaned == "" {
		return nil
	}

	candidates := []string{cleaned}
	if m := fenceRe.FindStringSubmatch(cleaned); m != nil {
		candidates = append([]string{m[1]}, candidates...)
	}
	// A JSON payload buried in surrounding prose.
	if i := strings.IndexAny(cleaned, "{["); i > 0 {
		candidates = append(candidates, cleaned[i:])
	}

	for _, c := range candidates {
		if values := parseJSON(c); len(values) > 0 {
			return values
		}
	}

	if values := parseNumbered(cleaned); len(values) == want {
		return values
	}

	return []string{cleaned}
}

// jsonItem accepts both {"value": "..."} objects and bare strings.
type jsonItem struct {
	Value string
}

func (it *jsonItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		it.Value = s
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	it.Value = obj.Value
	return nil
}

func parseJSON(text string) []string {
	text = strings.TrimSpace(text)

	var wrapped struct {
		Items []jsonItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && len(wrapped.Items) > 0 {
		return itemValues(wrapped.Items)
	}

	var list []jsonItem
	if err := json.Unmarshal([]byte(text), &list); err == nil && len(list) > 0 {
		return itemValues(list)
	}

	return nil
}

func itemValues(items []jsonItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = strings.TrimSpace(it.Value)
	}
	return out
}

func parseNumbered(text string) []string {
	var values []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := numberedRe.FindStringSubmatch(line)
		if m == nil {
			return nil
		}
		values = append(values, strings.TrimSpace(m[1]))
	}
	return values
}
