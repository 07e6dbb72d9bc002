package caption

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

var timingLine = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})(?:\s.*)?$`)

// FormatTimestamp renders ms as HH:MM:SS,mmm. Hours grow past two digits when needed.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / msPerHour
	m := (ms % msPerHour) / msPerMinute
	s := (ms % msPerMinute) / msPerSecond
	frac := ms % msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, frac)
}

// ParseTimestamp is the inverse of FormatTimestamp. A period is accepted as
// the millisecond separator.
func ParseTimestamp(ts string) (int64, error) {
	ts = strings.TrimSpace(ts)
	parts := strings.Split(strings.Replace(ts, ".", ",", 1), ",")
	if len(parts) != 2 || len(parts[1]) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	hms := strings.Split(parts[0], ":")
	if len(hms) != 3 || len(hms[0]) < 2 || len(hms[1]) != 2 || len(hms[2]) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	return toMs(hms[0], hms[1], hms[2], parts[1])
}

func toMs(h, m, s, frac string) (int64, error) {
	vals := make([]int64, 4)
	for i, p := range []string{h, m, s, frac} {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp component %q", p)
		}
		vals[i] = v
	}
	if vals[1] > 59 || vals[2] > 59 {
		return 0, fmt.Errorf("invalid timestamp %s:%s:%s,%s", h, m, s, frac)
	}
	return vals[0]*msPerHour + vals[1]*msPerMinute + vals[2]*msPerSecond + vals[3], nil
}

// FormatSRT serializes the document. Every block ends with one blank line
// and lines are separated by "\n".
func FormatSRT(doc *Document) []byte {
	var buf bytes.Buffer
	if doc == nil {
		return buf.Bytes()
	}
	for _, c := range doc.Cues {
		fmt.Fprintf(&buf, "%d\n%s --> %s\n", c.Index, FormatTimestamp(c.StartMs), FormatTimestamp(c.EndMs))
		if text := normalizeText(c.Text); text != "" {
			buf.WriteString(text)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ParseSRT reads an SRT stream. It tolerates CRLF line endings, a UTF-8 BOM
// and extra blank lines between blocks, then validates the result.
func ParseSRT(data []byte) (*Document, error) {
	doc, err := parseSRT(data)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseProviderSRT reads SRT produced by a transcription backend. Cues
// without text are dropped, zero or negative durations are stretched to
// 1 ms and the remaining cues are renumbered before validation.
func ParseProviderSRT(data []byte) (*Document, error) {
	doc, err := parseSRT(data)
	if err != nil {
		return nil, err
	}
	kept := doc.Cues[:0]
	for _, c := range doc.Cues {
		if c.Text == "" {
			continue
		}
		if c.StartMs < 0 {
			c.StartMs = 0
		}
		if c.EndMs <= c.StartMs {
			c.EndMs = c.StartMs + 1
		}
		kept = append(kept, c)
	}
	doc.Cues = kept
	doc.Renumber()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseSRT(data []byte) (*Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	doc := &Document{}
	const (
		wantIndex = iota
		wantTiming
		inText
	)
	state := wantIndex
	lineNo := 0
	var cur Cue
	var text []string

	flush := func() {
		cur.Text = normalizeText(strings.Join(text, "\n"))
		doc.Cues = append(doc.Cues, cur)
		cur, text = Cue{}, nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch state {
		case wantIndex:
			if trimmed == "" {
				continue
			}
			idx, err := strconv.Atoi(trimmed)
			if err != nil {
				return nil, fmt.Errorf("line %d: expected cue index, got %q", lineNo, trimmed)
			}
			cur.Index = idx
			state = wantTiming
		case wantTiming:
			m := timingLine.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, fmt.Errorf("line %d: expected timing line, got %q", lineNo, trimmed)
			}
			start, err := toMs(m[1], m[2], m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			end, err := toMs(m[5], m[6], m[7], m[8])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur.StartMs, cur.EndMs = start, end
			state = inText
		case inText:
			if trimmed == "" {
				flush()
				state = wantIndex
				continue
			}
			text = append(text, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}

	switch state {
	case wantTiming:
		return nil, fmt.Errorf("line %d: cue %d has no timing line", lineNo, cur.Index)
	case inText:
		flush()
	}
	return doc, nil
}
