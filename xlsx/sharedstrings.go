package xlsx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// SharedStrings is the workbook-wide string interning table. Entries keep
// insertion order; Add counts every occurrence so the written count and
// uniqueCount attributes diverge exactly as the format expects.
type SharedStrings struct {
	entries []string
	index   map[string]int
	count   int
}

func NewSharedStrings() *SharedStrings {
	return &SharedStrings{index: make(map[string]int)}
}

// Add interns a string and returns its table position. Repeated additions of
// the same string return the original position while still bumping the
// cumulative occurrence count.
func (s *SharedStrings) Add(text string) int {
	s.count++
	if idx, ok := s.index[text]; ok {
		return idx
	}
	idx := len(s.entries)
	s.entries = append(s.entries, text)
	s.index[text] = idx
	return idx
}

// At returns the string at a table position.
func (s *SharedStrings) At(idx int) (string, bool) {
	if idx < 0 || idx >= len(s.entries) {
		return "", false
	}
	return s.entries[idx], true
}

// Len is the number of unique strings (the uniqueCount attribute).
func (s *SharedStrings) Len() int { return len(s.entries) }

// Count is the cumulative number of occurrences (the count attribute).
func (s *SharedStrings) Count() int { return s.count }

func (s *SharedStrings) buildDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	sst := doc.CreateElement("sst")
	sst.CreateAttr("xmlns", nsMain)
	sst.CreateAttr("count", fmt.Sprintf("%d", s.count))
	sst.CreateAttr("uniqueCount", fmt.Sprintf("%d", len(s.entries)))
	for _, text := range s.entries {
		t := sst.CreateElement("si").CreateElement("t")
		if text != strings.TrimSpace(text) {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(text)
	}
	return doc
}

// parseSharedStrings reconstructs the table from a sharedStrings part,
// preserving positions. Rich-text runs collapse to their concatenated text.
func parseSharedStrings(doc *etree.Document) *SharedStrings {
	s := NewSharedStrings()
	root := doc.Root()
	if root == nil {
		return s
	}
	for _, si := range root.SelectElements("si") {
		var sb strings.Builder
		if t := si.SelectElement("t"); t != nil {
			sb.WriteString(t.Text())
		} else {
			for _, r := range si.SelectElements("r") {
				if t := r.SelectElement("t"); t != nil {
					sb.WriteString(t.Text())
				}
			}
		}
		s.Add(sb.String())
	}
	// Reloaded occurrence counts are unknown; mirror the table size so a
	// straight re-save stays consistent.
	s.count = len(s.entries)
	return s
}
