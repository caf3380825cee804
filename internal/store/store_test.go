package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hpitta26/locflow/internal/pipeline"
	"github.com/hpitta26/locflow/internal/segment"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New(t *testing.T) {
	s := testStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_Memory_SaveAndLookup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "Get Started", "portuguese", "Começar", "button"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok := s.Lookup(ctx, "Get Started", "portuguese")
	if !ok || got != "Começar" {
		t.Errorf("Lookup = (%q, %v), want (Começar, true)", got, ok)
	}

	// different target language is a miss
	if _, ok := s.Lookup(ctx, "Get Started", "spanish"); ok {
		t.Error("lookup matched wrong language")
	}
	if _, ok := s.Lookup(ctx, "Never stored", "portuguese"); ok {
		t.Error("lookup matched unstored text")
	}
}

func TestStore_Memory_NormalizesSourceText(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "  Get Started  ", "portuguese", "Começar", ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got, ok := s.Lookup(ctx, "Get Started", "portuguese"); !ok || got != "Começar" {
		t.Errorf("Lookup after whitespace normalization = (%q, %v)", got, ok)
	}
}

func TestStore_Memory_SaveReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Save(ctx, "Play", "portuguese", "Jogar", "button")
	s.Save(ctx, "Play", "portuguese", "Jogue", "button")

	got, _ := s.Lookup(ctx, "Play", "portuguese")
	if got != "Jogue" {
		t.Errorf("Lookup = %q, want latest value", got)
	}

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1 after replace", len(entries))
	}
}

func TestStore_Memory_Invalidate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Save(ctx, "Play", "portuguese", "Jogar", "")
	entries, _ := s.ListMemory(ctx)
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}

	if err := s.InvalidateMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("InvalidateMemory failed: %v", err)
	}
	if _, ok := s.Lookup(ctx, "Play", "portuguese"); ok {
		t.Error("invalidated entry still matches")
	}

	stats, err := s.MemoryUsage(ctx)
	if err != nil {
		t.Fatalf("MemoryUsage failed: %v", err)
	}
	if stats.TotalEntries != 1 || stats.InvalidEntries != 1 || stats.ActiveEntries != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStore_Memory_DeleteAndClear(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Save(ctx, "One", "portuguese", "Um", "")
	s.Save(ctx, "Two", "portuguese", "Dois", "")

	entries, _ := s.ListMemory(ctx)
	if err := s.DeleteMemory(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteMemory failed: %v", err)
	}
	if remaining, _ := s.ListMemory(ctx); len(remaining) != 1 {
		t.Errorf("got %d entries after delete", len(remaining))
	}

	n, err := s.ClearMemory(ctx)
	if err != nil {
		t.Fatalf("ClearMemory failed: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d entries, want 1", n)
	}
}

func TestStore_Memory_UsageCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Save(ctx, "Play", "portuguese", "Jogar", "")
	s.Lookup(ctx, "Play", "portuguese")
	s.Lookup(ctx, "Play", "portuguese")

	stats, _ := s.MemoryUsage(ctx)
	if stats.TotalUsage != 3 {
		t.Errorf("total usage = %d, want 3", stats.TotalUsage)
	}
}

func TestStore_RowIDsUnique(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	// Back-to-back inserts must never collide, however fast they land.
	if err := s.Save(ctx, "Hello", "portuguese", "Olá", "body"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(ctx, "Goodbye", "portuguese", "Adeus", "body"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := s.ListMemory(ctx)
	if err != nil {
		t.Fatalf("ListMemory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID == "" || entries[1].ID == "" {
		t.Error("entry with empty ID")
	}
	if entries[0].ID == entries[1].ID {
		t.Errorf("row IDs collided: %q", entries[0].ID)
	}
}

func TestStore_Glossary(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.AddGlossaryTerm(ctx, "portuguese", "hand history", "histórico de mãos"); err != nil {
		t.Fatalf("AddGlossaryTerm failed: %v", err)
	}
	s.AddGlossaryTerm(ctx, "spanish", "hand history", "historial de manos")

	terms, err := s.GetGlossaryTerms(ctx, "portuguese")
	if err != nil {
		t.Fatalf("GetGlossaryTerms failed: %v", err)
	}
	if len(terms) != 1 || terms["hand history"] != "histórico de mãos" {
		t.Errorf("terms = %v", terms)
	}

	all, err := s.ListGlossaryTerms(ctx, "")
	if err != nil {
		t.Fatalf("ListGlossaryTerms failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d entries, want 2", len(all))
	}

	filtered, _ := s.ListGlossaryTerms(ctx, "spanish")
	if len(filtered) != 1 || filtered[0].TargetTerm != "historial de manos" {
		t.Errorf("filtered = %+v", filtered)
	}

	if err := s.DeleteGlossaryTerm(ctx, filtered[0].ID); err != nil {
		t.Fatalf("DeleteGlossaryTerm failed: %v", err)
	}
	if remaining, _ := s.ListGlossaryTerms(ctx, ""); len(remaining) != 1 {
		t.Errorf("got %d entries after delete", len(remaining))
	}
}

func TestStore_Glossary_ReplacesSameTerm(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.AddGlossaryTerm(ctx, "portuguese", "sims", "simulações")
	s.AddGlossaryTerm(ctx, "portuguese", "sims", "sims simulados")

	terms, _ := s.GetGlossaryTerms(ctx, "portuguese")
	if len(terms) != 1 || terms["sims"] != "sims simulados" {
		t.Errorf("terms = %v", terms)
	}
}

func TestStore_BrandTerms(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.AddBrandTerm(ctx, "Octopi"); err != nil {
		t.Fatalf("AddBrandTerm failed: %v", err)
	}
	s.AddBrandTerm(ctx, "Vault")
	// duplicates are ignored
	s.AddBrandTerm(ctx, "Octopi")

	terms, err := s.BrandTerms(ctx)
	if err != nil {
		t.Fatalf("BrandTerms failed: %v", err)
	}
	if len(terms) != 2 {
		t.Errorf("terms = %v, want 2 entries", terms)
	}

	if err := s.AddBrandTerm(ctx, "   "); err == nil {
		t.Error("expected error for blank term")
	}

	if err := s.DeleteBrandTerm(ctx, "Vault"); err != nil {
		t.Fatalf("DeleteBrandTerm failed: %v", err)
	}
	if remaining, _ := s.BrandTerms(ctx); len(remaining) != 1 || remaining[0] != "Octopi" {
		t.Errorf("remaining = %v", remaining)
	}
}

func TestStore_SaveJob(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	result := &pipeline.Result{
		JobID:          "job-1",
		TargetLanguage: "portuguese",
		Batches: []pipeline.BatchReport{
			{BatchID: "batch_a", Group: "Hero", Status: segment.StatusApproved, Items: 2, Iterations: 1},
			{BatchID: "batch_b", Group: "About", Status: segment.StatusExhausted, Items: 1, Iterations: 3},
		},
		MissedPaths: []string{"pages.gone"},
	}

	if err := s.SaveJob(ctx, result); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	// a second save of the same job ID must fail, not silently duplicate
	if err := s.SaveJob(ctx, result); err == nil {
		t.Error("expected error on duplicate job ID")
	}
}
