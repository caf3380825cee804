package placeholder

import (
	"reflect"
	"testing"
)

func TestProtect_Tags(t *testing.T) {
	text, captured := Protect(`Click <a href="/join">here</a> to join`)

	want := "Click [PH0]here[PH1] to join"
	if text != want {
		t.Errorf("protected = %q, want %q", text, want)
	}
	if !reflect.DeepEqual(captured, []string{`<a href="/join">`, `</a>`}) {
		t.Errorf("captured = %v", captured)
	}
}

func TestProtect_SlotsAndEntities(t *testing.T) {
	text, captured := Protect("You have {{count}} chips &amp; {n} hands")

	if text != "You have [PH0] chips [PH2] [PH1] hands" {
		t.Errorf("protected = %q", text)
	}
	if len(captured) != 3 {
		t.Fatalf("captured %d items, want 3", len(captured))
	}
	if captured[0] != "{{count}}" || captured[1] != "{n}" || captured[2] != "&amp;" {
		t.Errorf("captured = %v", captured)
	}
}

func TestProtect_NoMarkup(t *testing.T) {
	text, captured := Protect("Plain sentence.")
	if text != "Plain sentence." || len(captured) != 0 {
		t.Errorf("Protect changed plain text: %q, %v", text, captured)
	}
}

func TestRestore(t *testing.T) {
	original := `Press <b>Play</b> now`
	protected, captured := Protect(original)

	// simulate translation that moves markers
	translated := "Agora pressione [PH0]Jogar[PH1]"
	restored := Restore(translated, captured)
	if restored != "Agora pressione <b>Jogar</b>" {
		t.Errorf("restored = %q", restored)
	}

	// round trip with no translation applied
	if got := Restore(protected, captured); got != original {
		t.Errorf("round trip = %q, want %q", got, original)
	}
}

func TestRestore_UnknownMarker(t *testing.T) {
	got := Restore("text [PH5] end", []string{"<b>"})
	if got != "text [PH5] end" {
		t.Errorf("unknown marker rewritten: %q", got)
	}
}

func TestMissing(t *testing.T) {
	_, captured := Protect("<b>bold</b> and {slot}")

	missing := Missing("only [PH0] survived", captured)
	if !reflect.DeepEqual(missing, []int{1, 2}) {
		t.Errorf("missing = %v, want [1 2]", missing)
	}

	if m := Missing("[PH0] [PH1] [PH2]", captured); m != nil {
		t.Errorf("missing = %v, want nil", m)
	}
}
