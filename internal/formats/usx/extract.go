// Package usx extracts plain verse text from USX documents, the XML
// serialization of USFM used by newer unfoldingWord tooling.
//
// Chapters and verses are milestone elements in USX, so extraction is a
// document-order walk that tracks the current chapter:verse and
// accumulates text nodes. Notes and cross-references are skipped.
package usx

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/unfoldingWord/tsv-twl-creation-app-sub000/core/errors"
)

var usxQuery = xpath.MustCompile("//usx")

// Elements whose subtree is not verse text.
var skipElements = map[string]bool{
	"note": true, "ref": true, "fig": true, "sidebar": true,
}

// ExtractVerseText parses a USX document and returns the token sequence
// of every verse, keyed by "chapter:verse".
func ExtractVerseText(data []byte) (map[string][]string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing USX")
	}
	root := xmlquery.QuerySelector(doc, usxQuery)
	if root == nil {
		return nil, errors.NewParse("USX", "", "no <usx> root element")
	}

	w := &walker{verses: make(map[string][]string)}
	w.walk(root)
	w.flush()
	return w.verses, nil
}

type walker struct {
	verses  map[string][]string
	chapter int
	verse   string
	buf     strings.Builder
}

func (w *walker) walk(n *xmlquery.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode:
			switch child.Data {
			case "chapter":
				w.flush()
				w.verse = ""
				if num := child.SelectAttr("number"); num != "" {
					w.chapter, _ = strconv.Atoi(num)
				}
			case "verse":
				// USX 3 closes verses with eid-only milestones;
				// only sid/number milestones open a new verse.
				if num := child.SelectAttr("number"); num != "" {
					w.flush()
					w.verse = num
				} else if child.SelectAttr("eid") != "" {
					w.flush()
					w.verse = ""
				}
			default:
				if !skipElements[child.Data] {
					w.walk(child)
				}
			}
		case xmlquery.TextNode, xmlquery.CharDataNode:
			w.buf.WriteByte(' ')
			w.buf.WriteString(child.Data)
		}
	}
}

// flush records the accumulated text under the current chapter:verse.
// Verse bridges ("3-4") register the tokens under each bridged verse.
func (w *walker) flush() {
	text := w.buf.String()
	w.buf.Reset()
	if w.chapter == 0 || w.verse == "" {
		return
	}
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return
	}

	start, end := bridgeRange(w.verse)
	for v := start; v <= end; v++ {
		key := strconv.Itoa(w.chapter) + ":" + strconv.Itoa(v)
		w.verses[key] = append(w.verses[key], tokens...)
	}
}

// bridgeRange reads a verse number or bridge ("3" or "3-4").
func bridgeRange(s string) (start, end int) {
	first, rest, found := strings.Cut(s, "-")
	start, _ = strconv.Atoi(first)
	end = start
	if found {
		if n, err := strconv.Atoi(rest); err == nil && n >= start {
			end = n
		}
	}
	return start, end
}
