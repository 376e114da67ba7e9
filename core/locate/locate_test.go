package locate

import (
	"reflect"
	"strings"
	"testing"
)

func tokens(s string) []string { return strings.Fields(s) }

func TestFindSinglePart(t *testing.T) {
	verse := tokens("In the beginning was the Word")

	tests := []struct {
		name       string
		quote      string
		occurrence int
		want       []Span
		wantOK     bool
	}{
		{"first occurrence", "the", 1, []Span{{1, 2}}, true},
		{"second occurrence", "the", 2, []Span{{4, 5}}, true},
		{"occurrence beyond count", "the", 3, nil, false},
		{"multi-word part", "the beginning", 1, []Span{{1, 3}}, true},
		{"case insensitive", "word", 1, []Span{{5, 6}}, true},
		{"absent word", "light", 1, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Find(verse, tt.quote, tt.occurrence)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantOK && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("spans = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindMultiPart(t *testing.T) {
	verse := tokens("A B C D B E")

	t.Run("both parts found", func(t *testing.T) {
		spans, ok := Find(verse, "B & E", 1)
		if !ok {
			t.Fatal("expected match")
		}
		want := []Span{{1, 2}, {5, 6}}
		if !reflect.DeepEqual(spans, want) {
			t.Errorf("spans = %v, want %v", spans, want)
		}
	})

	t.Run("later part missing fails whole lookup", func(t *testing.T) {
		if _, ok := Find(verse, "B & Z", 1); ok {
			t.Error("expected no match even though B occurs")
		}
	})

	t.Run("occurrence applies to first part only", func(t *testing.T) {
		spans, ok := Find(verse, "B & E", 2)
		if !ok {
			t.Fatal("expected match from second B")
		}
		want := []Span{{4, 5}, {5, 6}}
		if !reflect.DeepEqual(spans, want) {
			t.Errorf("spans = %v, want %v", spans, want)
		}
	})

	t.Run("gap of zero words allowed", func(t *testing.T) {
		spans, ok := Find(tokens("x y z"), "x & y", 1)
		if !ok {
			t.Fatal("expected match")
		}
		want := []Span{{0, 1}, {1, 2}}
		if !reflect.DeepEqual(spans, want) {
			t.Errorf("spans = %v, want %v", spans, want)
		}
	})

	t.Run("no backtracking to a later first part", func(t *testing.T) {
		// Occurrence 2 pins part 1 to the second "a"; no "b" follows
		// it, so the lookup fails instead of retrying elsewhere.
		verse := tokens("a b a c")
		if _, ok := Find(verse, "a & b & c", 2); ok {
			t.Error("expected failure without backtracking")
		}
	})
}

func TestFindEdgeCases(t *testing.T) {
	verse := tokens("In the beginning")

	if _, ok := Find(nil, "the", 1); ok {
		t.Error("empty verse should not match")
	}
	if _, ok := Find(verse, "", 1); ok {
		t.Error("empty quote should not match")
	}
	if _, ok := Find(verse, "the", 0); ok {
		t.Error("occurrence 0 should not match")
	}
	if _, ok := Find(verse, "the", -1); ok {
		t.Error("negative occurrence should not match")
	}
}

func TestFindHebrew(t *testing.T) {
	// Pointed verse tokens against an unpointed quote.
	verse := []string{"בְּרֵאשִׁ֖ית", "בָּרָ֣א", "אֱלֹהִ֑ים"}
	spans, ok := Find(verse, "ברא", 1)
	if !ok {
		t.Fatal("expected diacritic-insensitive match")
	}
	if spans[0].Start != 1 {
		t.Errorf("Start = %d, want 1", spans[0].Start)
	}
}

func TestFindPunctuationInsensitive(t *testing.T) {
	verse := tokens("he said, “Follow me.”")
	spans, ok := Find(verse, "follow me", 1)
	if !ok {
		t.Fatal("expected punctuation-insensitive match")
	}
	want := []Span{{2, 4}}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("spans = %v, want %v", spans, want)
	}
}

func TestStart(t *testing.T) {
	verse := tokens("In the beginning was the Word")
	if got := Start(verse, "the", 2); got != 4 {
		t.Errorf("Start = %d, want 4", got)
	}
	if got := Start(verse, "light", 1); got != -1 {
		t.Errorf("Start = %d, want -1", got)
	}
}
