// Package postprocess strips common LLM artifacts from raw capability
// output before it is parsed into batch values: reasoning blocks,
// prompt-echo preambles, and whole-response quote wrapping.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean normalizes raw LLM output and returns the trimmed result.
func Clean(text string) string {
	text = stripReasoning(text)
	text = stripPreamble(text)
	text = stripQuoteWrap(text)
	return strings.TrimSpace(text)
}

// Each tag variant is listed explicitly because RE2 has no backreferences.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// An opened reasoning tag with no closing tag means the model was cut off
// mid-thought; everything from the tag onward is noise.
var truncatedReasoningRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func stripReasoning(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = truncatedReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// preambleRes match introductory phrases models prepend even when told not
// to. Anchored to the start and requiring a colon to avoid eating real
// content.
var preambleRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is| are)(?: the)? (?:revised |corrected |translated )?(?:translations?|items|json|output|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:revised |corrected )?(?:translations?|translated (?:items|text)|json output)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is| are)(?: the)? (?:revised |corrected |translated )?(?:translations?|items|json|output)\s*:`),
}

func stripPreamble(text string) string {
	for _, re := range preambleRes {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// stripQuoteWrap removes one matching pair of outer quotes when the whole
// response is wrapped in them.
func stripQuoteWrap(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
