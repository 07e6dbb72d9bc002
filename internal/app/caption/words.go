package caption

import (
	"strings"
	"unicode/utf8"
)

// Word is a single timed token as returned by word-level ASR APIs.
type Word struct {
	Text    string
	StartMs int64
	EndMs   int64
}

// GroupOptions bounds the cues produced by FromWords.
type GroupOptions struct {
	MaxChars      int
	MaxDurationMs int64
	MaxGapMs      int64
	Separator     string
}

// DefaultGroupOptions fits two lines of broadcast subtitles.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{
		MaxChars:      84,
		MaxDurationMs: 6000,
		MaxGapMs:      1500,
		Separator:     " ",
	}
}

var sentenceEnd = []string{".", "?", "!", "。", "？", "！", "…"}

// FromWords groups timed words into cues. A cue is closed after sentence
// punctuation, or before a word that would exceed the length, duration or
// silence limits.
func FromWords(words []Word, opts GroupOptions) *Document {
	def := DefaultGroupOptions()
	if opts.MaxChars <= 0 {
		opts.MaxChars = def.MaxChars
	}
	if opts.MaxDurationMs <= 0 {
		opts.MaxDurationMs = def.MaxDurationMs
	}
	if opts.MaxGapMs <= 0 {
		opts.MaxGapMs = def.MaxGapMs
	}

	doc := &Document{}
	var parts []string
	var start, end int64

	closeCue := func() {
		if len(parts) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(parts, opts.Separator))
		if end <= start {
			end = start + 1
		}
		doc.Cues = append(doc.Cues, Cue{Index: len(doc.Cues) + 1, StartMs: start, EndMs: end, Text: text})
		parts = nil
	}

	for _, w := range words {
		token := strings.TrimSpace(w.Text)
		if token == "" {
			continue
		}
		if len(parts) > 0 {
			length := utf8.RuneCountInString(strings.Join(parts, opts.Separator)) + utf8.RuneCountInString(opts.Separator+token)
			if length > opts.MaxChars || w.EndMs-start > opts.MaxDurationMs || w.StartMs-end > opts.MaxGapMs {
				closeCue()
			}
		}
		if len(parts) == 0 {
			start = w.StartMs
		}
		parts = append(parts, token)
		end = w.EndMs
		if endsSentence(token) {
			closeCue()
		}
	}
	closeCue()
	return doc
}

func endsSentence(token string) bool {
	for _, p := range sentenceEnd {
		if strings.HasSuffix(token, p) {
			return true
		}
	}
	return false
}
