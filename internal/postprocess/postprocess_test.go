package postprocess

import "testing"

func TestClean_PlainText(t *testing.T) {
	if got := Clean("  Olá mundo  "); got != "Olá mundo" {
		t.Errorf("Clean = %q", got)
	}
}

func TestClean_ReasoningBlocks(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<thinking>weighing options</thinking>Olá", "Olá"},
		{"<think>hmm</think>\nOlá mundo", "Olá mundo"},
		{"Olá<reasoning>internal</reasoning> mundo", "Olá mundo"},
		{"<reflection>notes</reflection>Olá", "Olá"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClean_TruncatedReasoning(t *testing.T) {
	// an unclosed tag means the model was cut off; drop everything after it
	if got := Clean("Olá mundo <thinking>and then I"); got != "Olá mundo" {
		t.Errorf("Clean = %q", got)
	}
}

func TestClean_Preamble(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Here's the translation: Olá mundo", "Olá mundo"},
		{"Here are the translated items:\nOlá", "Olá"},
		{"The revised translation: Olá", "Olá"},
		{"Sure, here is the JSON: {\"items\": []}", "{\"items\": []}"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClean_PreambleRequiresColon(t *testing.T) {
	// without a colon the phrase may be real content; leave it alone
	in := "Here is the plan we offer for serious grinders"
	if got := Clean(in); got != in {
		t.Errorf("Clean ate real content: %q", got)
	}
}

func TestClean_QuoteWrap(t *testing.T) {
	cases := []struct{ in, want string }{
		{`"Olá mundo"`, "Olá mundo"},
		{"«Olá mundo»", "Olá mundo"},
		{"“Olá mundo”", "Olá mundo"},
		{`"unbalanced`, `"unbalanced`},
		{`internal "quotes" stay`, `internal "quotes" stay`},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClean_Combined(t *testing.T) {
	in := "<think>choosing words</think>Here's the translation: \"Olá mundo\""
	if got := Clean(in); got != "Olá mundo" {
		t.Errorf("Clean = %q", got)
	}
}
