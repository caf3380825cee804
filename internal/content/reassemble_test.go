package content

import (
	"reflect"
	"testing"
)

func TestApply_WritesTranslations(t *testing.T) {
	doc := sampleDoc()
	out, missed := Apply(doc, map[string]string{
		"pages.home.hero": "Bem-vindo ao Octopi Trainer",
		"pages.home.cta":  "Começar Treino",
	})

	if len(missed) != 0 {
		t.Fatalf("unexpected missed paths: %v", missed)
	}

	home := out["pages"].(map[string]any)["home"].(map[string]any)
	if _, v, _ := Leaf(home["hero"].(map[string]any)); v != "Bem-vindo ao Octopi Trainer" {
		t.Errorf("hero = %q", v)
	}
	if _, v, _ := Leaf(home["cta"].(map[string]any)); v != "Começar Treino" {
		t.Errorf("cta = %q", v)
	}

	// untouched leaves keep their source value
	about := out["pages"].(map[string]any)["about"].(map[string]any)
	if _, v, _ := Leaf(about["intro"].(map[string]any)); v != "We build poker study tools." {
		t.Errorf("intro changed: %q", v)
	}
}

func TestApply_DoesNotMutateOriginal(t *testing.T) {
	doc := sampleDoc()
	Apply(doc, map[string]string{"pages.home.hero": "changed"})

	home := doc["pages"].(map[string]any)["home"].(map[string]any)
	if _, v, _ := Leaf(home["hero"].(map[string]any)); v != "Welcome to Octopi Trainer" {
		t.Errorf("original mutated: %q", v)
	}
}

func TestApply_FailOpen(t *testing.T) {
	doc := sampleDoc()
	out, missed := Apply(doc, map[string]string{
		"pages.home.hero":  "Bem-vindo",
		"pages.gone.stale": "x",
		"footer.links[7]":  "y",
	})

	want := []string{"footer.links[7]", "pages.gone.stale"}
	if !reflect.DeepEqual(missed, want) {
		t.Errorf("missed = %v, want %v", missed, want)
	}

	// the apply that succeeded still landed
	home := out["pages"].(map[string]any)["home"].(map[string]any)
	if _, v, _ := Leaf(home["hero"].(map[string]any)); v != "Bem-vindo" {
		t.Errorf("hero = %q", v)
	}
}

func TestApply_SkipsEmptyTranslations(t *testing.T) {
	doc := sampleDoc()
	out, missed := Apply(doc, map[string]string{"pages.home.hero": ""})
	if len(missed) != 0 {
		t.Errorf("empty translation reported as missed: %v", missed)
	}
	home := out["pages"].(map[string]any)["home"].(map[string]any)
	if _, v, _ := Leaf(home["hero"].(map[string]any)); v != "Welcome to Octopi Trainer" {
		t.Errorf("empty translation overwrote source: %q", v)
	}
}
