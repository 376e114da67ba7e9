package usfm

import (
	"reflect"
	"strings"
	"testing"
)

const sample = `\id GEN unfoldingWord Literal Text
\h Genesis
\toc1 The Book of Genesis
\c 1
\p
\v 1 In the beginning God created the heavens and the earth.
\v 2 Now the earth was formless and empty.
\q1 Darkness was over the surface of the deep.
\c 2
\p
\v 1 Thus the heavens and the earth were completed.
`

func TestExtractVerseText(t *testing.T) {
	verses, err := ExtractVerseText([]byte(sample))
	if err != nil {
		t.Fatalf("ExtractVerseText failed: %v", err)
	}

	want := map[string][]string{
		"1:1": strings.Fields("In the beginning God created the heavens and the earth."),
		"1:2": strings.Fields("Now the earth was formless and empty. Darkness was over the surface of the deep."),
		"2:1": strings.Fields("Thus the heavens and the earth were completed."),
	}
	if !reflect.DeepEqual(verses, want) {
		t.Errorf("verses = %v\nwant %v", verses, want)
	}
}

func TestExtractWordMarkup(t *testing.T) {
	doc := `\c 1
\v 1 \w In|strong="H0001"\w* \w the\w* \w beginning|x-occ="1"\w* God
`
	verses, err := ExtractVerseText([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractVerseText failed: %v", err)
	}
	want := []string{"In", "the", "beginning", "God"}
	if !reflect.DeepEqual(verses["1:1"], want) {
		t.Errorf("1:1 = %v, want %v", verses["1:1"], want)
	}
}

func TestExtractFootnotesRemoved(t *testing.T) {
	doc := `\c 1
\v 5 God called the light \f + \ft Or: named \f* Day.
\v 6 And God said \x - \xo 1:6 \xt Psalm 33 \x* let there be space.
`
	verses, err := ExtractVerseText([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractVerseText failed: %v", err)
	}
	if got := strings.Join(verses["1:5"], " "); got != "God called the light Day." {
		t.Errorf("1:5 = %q", got)
	}
	if got := strings.Join(verses["1:6"], " "); got != "And God said let there be space." {
		t.Errorf("1:6 = %q", got)
	}
}

func TestExtractVerseBridge(t *testing.T) {
	doc := `\c 3
\v 17-18 Cursed is the ground because of you.
\v 19 By the sweat of your brow.
`
	verses, err := ExtractVerseText([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractVerseText failed: %v", err)
	}
	if !reflect.DeepEqual(verses["3:17"], verses["3:18"]) {
		t.Errorf("bridge verses differ: %v vs %v", verses["3:17"], verses["3:18"])
	}
	if len(verses["3:17"]) == 0 {
		t.Error("bridge verse is empty")
	}
	if got := strings.Join(verses["3:19"], " "); got != "By the sweat of your brow." {
		t.Errorf("3:19 = %q", got)
	}
}

func TestExtractContinuationLines(t *testing.T) {
	doc := `\c 1
\v 1 In the beginning
God created the heavens.
`
	verses, err := ExtractVerseText([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractVerseText failed: %v", err)
	}
	want := strings.Fields("In the beginning God created the heavens.")
	if !reflect.DeepEqual(verses["1:1"], want) {
		t.Errorf("1:1 = %v, want %v", verses["1:1"], want)
	}
}

func TestExtractTextBeforeChapter(t *testing.T) {
	doc := `\id GEN
\v 1 stray text before any chapter
\c 1
\v 1 Real verse.
`
	verses, err := ExtractVerseText([]byte(doc))
	if err != nil {
		t.Fatalf("ExtractVerseText failed: %v", err)
	}
	if len(verses) != 1 {
		t.Errorf("verses = %v, want only 1:1", verses)
	}
	if got := strings.Join(verses["1:1"], " "); got != "Real verse." {
		t.Errorf("1:1 = %q", got)
	}
}
