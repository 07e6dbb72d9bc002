// Package caption holds the canonical caption model shared by every provider,
// the translator and delivery, together with the SRT codec.
package caption

import (
	"fmt"
	"strings"
)

// Cue is one timed caption entry.
type Cue struct {
	Index   int    `json:"index"`
	StartMs int64  `json:"startMs"`
	EndMs   int64  `json:"endMs"`
	Text    string `json:"text"`
}

// Document is an ordered list of cues with 1-based contiguous indices.
type Document struct {
	Cues []Cue `json:"cues"`
}

// NewDocument builds a document from cues as given.
func NewDocument(cues []Cue) *Document {
	return &Document{Cues: cues}
}

// Len returns the number of cues.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cues)
}

// Validate checks timing and numbering. It also rejects texts that could not
// survive a round trip through SRT (blank lines, surrounding newlines).
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("caption document is nil")
	}
	for i, c := range d.Cues {
		if c.Index != i+1 {
			return fmt.Errorf("cue %d: index %d breaks the 1-based sequence", i+1, c.Index)
		}
		if c.StartMs < 0 {
			return fmt.Errorf("cue %d: negative start time", c.Index)
		}
		if c.StartMs >= c.EndMs {
			return fmt.Errorf("cue %d: start %d ms is not before end %d ms", c.Index, c.StartMs, c.EndMs)
		}
		if c.Text != normalizeText(c.Text) {
			return fmt.Errorf("cue %d: text contains blank or surrounding line breaks", c.Index)
		}
	}
	return nil
}

// Normalize rewrites texts into their canonical SRT form in place.
func (d *Document) Normalize() {
	for i := range d.Cues {
		d.Cues[i].Text = normalizeText(d.Cues[i].Text)
	}
}

// Renumber assigns indices 1..n in order.
func (d *Document) Renumber() {
	for i := range d.Cues {
		d.Cues[i].Index = i + 1
	}
}

// Texts returns the cue texts in order.
func (d *Document) Texts() []string {
	texts := make([]string, len(d.Cues))
	for i, c := range d.Cues {
		texts[i] = c.Text
	}
	return texts
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Cues: append([]Cue(nil), d.Cues...)}
}

// WithTexts returns a copy of d whose texts are replaced by texts.
func (d *Document) WithTexts(texts []string) (*Document, error) {
	if len(texts) != len(d.Cues) {
		return nil, fmt.Errorf("got %d texts for %d cues", len(texts), len(d.Cues))
	}
	out := d.Clone()
	for i := range out.Cues {
		out.Cues[i].Text = normalizeText(texts[i])
	}
	return out, nil
}

// SameStructure reports the first difference in count, index or timing
// between a and b. Texts are ignored.
func SameStructure(a, b *Document) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("cue count changed from %d to %d", a.Len(), b.Len())
	}
	for i := range a.Cues {
		x, y := a.Cues[i], b.Cues[i]
		if x.Index != y.Index {
			return fmt.Errorf("cue %d: index changed to %d", x.Index, y.Index)
		}
		if x.StartMs != y.StartMs || x.EndMs != y.EndMs {
			return fmt.Errorf("cue %d: timing changed from %s --> %s to %s --> %s",
				x.Index, FormatTimestamp(x.StartMs), FormatTimestamp(x.EndMs),
				FormatTimestamp(y.StartMs), FormatTimestamp(y.EndMs))
		}
	}
	return nil
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if strings.TrimSpace(l) == "" {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}
