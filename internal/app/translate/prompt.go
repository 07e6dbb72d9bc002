package translate

import (
	"fmt"
	"strings"

	"captionflow/internal/app/caption"
)

// subtitlesMarker precedes the SRT block in every prompt.
const subtitlesMarker = "SUBTITLES:\n"

const systemInstruction = `You are a professional subtitle translator.
You receive subtitles in SRT format and return the same subtitles translated.
Rules:
- Keep every block. Never merge, split, add or drop blocks.
- Copy every index line and every timing line exactly as given.
- Translate only the text lines.
- Answer with the SRT document only, without commentary or code fences.`

func buildPrompt(batch *caption.Document, target, style string, withContext bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the text of the following %d subtitle blocks into %s.\n", batch.Len(), target)
	if style = strings.TrimSpace(style); style != "" {
		fmt.Fprintf(&b, "Style: %s\n", style)
	}
	if withContext {
		b.WriteString("The attached media is the source of these subtitles. Use it to resolve names, terms and who is speaking.\n")
	}
	b.WriteString("Return exactly the same number of blocks with unchanged indices and timestamps.\n\n")
	b.WriteString(subtitlesMarker)
	b.Write(caption.FormatSRT(batch))
	return b.String()
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s) + "\n"
}
