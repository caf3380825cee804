package segment

import (
	"testing"

	"github.com/hpitta26/locflow/internal/content"
)

func testDoc() content.Document {
	return content.Document{
		"pages": map[string]any{
			"group_1": map[string]any{
				"meta_data": "Hero Banner",
				"item_1":    map[string]any{"type": "header", "value": "Train Like a Pro"},
				"item_2":    map[string]any{"type": "button", "value": "Get Started"},
			},
			"group_2": map[string]any{
				"meta_data": "Pricing",
				"item_1":    map[string]any{"type": "body", "value": "Monthly and annual plans available for all grinders."},
			},
		},
	}
}

func TestSplit_GroupsByParent(t *testing.T) {
	batches, warnings := Split(testDoc(), nil)

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}

	b := batches[0]
	if b.ID != "batch_pages_group_1" {
		t.Errorf("batch ID = %q", b.ID)
	}
	if b.Group != "Hero Banner" {
		t.Errorf("group = %q, want meta_data name", b.Group)
	}
	if b.Status != StatusPending {
		t.Errorf("status = %q, want pending", b.Status)
	}
	if len(b.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(b.Items))
	}
	if b.Items[0].Path != "pages.group_1.item_1" || b.Items[1].Path != "pages.group_1.item_2" {
		t.Errorf("item paths = %q, %q", b.Items[0].Path, b.Items[1].Path)
	}
	if b.Items[1].Original != "Get Started" {
		t.Errorf("item original = %q", b.Items[1].Original)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	doc := testDoc()
	first, _ := Split(doc, nil)
	second, _ := Split(doc, nil)

	if len(first) != len(second) {
		t.Fatalf("batch counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("batch %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
		for k := range first[i].Items {
			if first[i].Items[k].Path != second[i].Items[k].Path {
				t.Errorf("batch %d item %d paths differ", i, k)
			}
		}
	}
}

func TestSplit_Budgets(t *testing.T) {
	batches, _ := Split(testDoc(), func(n int) int { return n * 2 })

	item := batches[0].Items[1] // "Get Started", 11 runes
	if item.Budget != 22 {
		t.Errorf("budget = %d, want 22", item.Budget)
	}
}

func TestSplit_EmptyDocument(t *testing.T) {
	batches, _ := Split(content.Document{}, nil)
	if len(batches) != 0 {
		t.Errorf("empty document produced %d batches", len(batches))
	}

	// groups without leaves produce no batch
	batches, _ = Split(content.Document{
		"pages": map[string]any{"empty_group": map[string]any{"meta_data": "Empty"}},
	}, nil)
	if len(batches) != 0 {
		t.Errorf("leafless group produced %d batches", len(batches))
	}
}

func TestSplit_GroupNameFallsBackToPathSegment(t *testing.T) {
	doc := content.Document{
		"footer": map[string]any{
			"links": map[string]any{
				"privacy": map[string]any{"type": "navigation", "value": "Privacy"},
			},
		},
	}
	batches, _ := Split(doc, nil)
	if len(batches) != 1 {
		t.Fatalf("got %d batches", len(batches))
	}
	if batches[0].Group != "links" {
		t.Errorf("group = %q, want links", batches[0].Group)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		typ, path string
		want      Category
	}{
		{"button", "pages.home.cta", CategoryButton},
		{"header", "pages.home.hero", CategoryHeader},
		{"nav", "anything", CategoryNavigation},
		{"", "pages.nav.item_1", CategoryNavigation},
		{"", "pages.home.form.email_label", CategoryFormLabel},
		{"", "pages.home.seo_description", CategoryMeta},
		{"paragraph", "pages.about.intro", CategoryBody},
	}
	for _, c := range cases {
		if got := Classify(c.typ, c.path); got != c.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", c.typ, c.path, got, c.want)
		}
	}
}

func TestBatch_Small(t *testing.T) {
	b := &Batch{Items: []*Item{{}, {}, {}}}
	if !b.Small(3) {
		t.Error("3 items at threshold 3 should be small")
	}
	b.Items = append(b.Items, &Item{})
	if b.Small(3) {
		t.Error("4 items at threshold 3 should not be small")
	}
}

func TestStatus_Terminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusTranslated, StatusClarification, StatusRevision} {
		if s.Terminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusApproved, StatusExhausted} {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
}
