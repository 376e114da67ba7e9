package ref

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected *Ref
		wantErr  bool
	}{
		{
			input:    "1:3",
			expected: &Ref{Chapter: 1, Verse: 3},
		},
		{
			input:    "12:26",
			expected: &Ref{Chapter: 12, Verse: 26},
		},
		{
			input:    "1:3-4",
			expected: &Ref{Chapter: 1, Verse: 3, VerseEnd: 4},
		},
		{
			input:    " 2:5 ",
			expected: &Ref{Chapter: 2, Verse: 5},
		},
		{input: "", wantErr: true},
		{input: "front:intro", wantErr: true},
		{input: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if *got != *tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRefString(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Ref{Chapter: 1, Verse: 3}, "1:3"},
		{Ref{Chapter: 1, Verse: 3, VerseEnd: 4}, "1:3-4"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1:2", "1:10", -1}, // numeric, not lexicographic
		{"2:1", "1:99", 1},
		{"1:3", "1:3", 0},
		{"1:3-4", "1:3", 0},  // bridge reads as its first verse
		{"10:1", "9:50", 1},
		{"front:intro", "1:1", -1}, // non-numeric reads as 0
		{"", "1:1", -1},
		{"1:intro", "1:1", -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		input   string
		chapter int
		verse   int
	}{
		{"1:3", 1, 3},
		{"1:3-4", 1, 3},
		{"12", 12, 0},
		{"front:intro", 0, 0},
		{"3:12b", 3, 12},
	}
	for _, tt := range tests {
		c, v := Split(tt.input)
		if c != tt.chapter || v != tt.verse {
			t.Errorf("Split(%q) = (%d, %d), want (%d, %d)", tt.input, c, v, tt.chapter, tt.verse)
		}
	}
}
