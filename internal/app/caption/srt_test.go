package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = "1\n00:00:00,000 --> 00:00:02,000\nHello world\n\n" +
	"2\n00:00:02,500 --> 00:01:05,042\nSecond line\nspans two rows\n\n" +
	"3\n01:02:03,004 --> 01:02:04,999\nThird\n\n"

func sampleDoc() *Document {
	return NewDocument([]Cue{
		{Index: 1, StartMs: 0, EndMs: 2000, Text: "Hello world"},
		{Index: 2, StartMs: 2500, EndMs: 65042, Text: "Second line\nspans two rows"},
		{Index: 3, StartMs: 3723004, EndMs: 3724999, Text: "Third"},
	})
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00,000"},
		{2000, "00:00:02,000"},
		{65042, "00:01:05,042"},
		{3723004, "01:02:03,004"},
		{100 * msPerHour, "100:00:00,000"},
		{-5, "00:00:00,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.ms))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	ms, err := ParseTimestamp("01:02:03,004")
	require.NoError(t, err)
	assert.Equal(t, int64(3723004), ms)

	ms, err = ParseTimestamp("00:00:01.500")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), ms)

	for _, bad := range []string{"1:02:03,004", "00:61:00,000", "00:00:00,0000", "garbage"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatSRT(t *testing.T) {
	assert.Equal(t, sampleSRT, string(FormatSRT(sampleDoc())))
	assert.Empty(t, FormatSRT(&Document{}))
	assert.Empty(t, FormatSRT(nil))
}

func TestParseSRT(t *testing.T) {
	doc, err := ParseSRT([]byte(sampleSRT))
	require.NoError(t, err)
	assert.Equal(t, sampleDoc(), doc)
}

func TestParseSRT_Tolerance(t *testing.T) {
	input := "\xef\xbb\xbf1\r\n00:00:00,000 --> 00:00:02,000\r\nHello world\r\n\r\n\r\n" +
		"2\r\n00:00:02.500 --> 00:01:05.042 X1:0 X2:10\r\nSecond line\r\nspans two rows"
	doc, err := ParseSRT([]byte(input))
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())
	assert.Equal(t, "Hello world", doc.Cues[0].Text)
	assert.Equal(t, int64(65042), doc.Cues[1].EndMs)
	assert.Equal(t, "Second line\nspans two rows", doc.Cues[1].Text)
}

func TestParseSRT_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"index not a number", "one\n00:00:00,000 --> 00:00:01,000\nx\n\n"},
		{"missing timing", "1\nHello\n\n"},
		{"truncated after index", "1\n"},
		{"gap in indices", "1\n00:00:00,000 --> 00:00:01,000\na\n\n3\n00:00:01,000 --> 00:00:02,000\nb\n\n"},
		{"end before start", "1\n00:00:02,000 --> 00:00:01,000\na\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSRT([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	docs := []*Document{
		sampleDoc(),
		{},
		NewDocument([]Cue{{Index: 1, StartMs: 10, EndMs: 11, Text: ""}}),
		NewDocument([]Cue{
			{Index: 1, StartMs: 0, EndMs: 999, Text: "Árvíztűrő tükörfúrógép"},
			{Index: 2, StartMs: 999, EndMs: 1000, Text: "上海\n天气"},
		}),
	}
	for _, doc := range docs {
		require.NoError(t, doc.Validate())
		parsed, err := ParseSRT(FormatSRT(doc))
		require.NoError(t, err)
		assert.Equal(t, doc.Len(), parsed.Len())
		assert.NoError(t, SameStructure(doc, parsed))
		assert.Equal(t, doc.Texts(), parsed.Texts())
	}
}

func TestParseProviderSRT(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:02,000\nHello\n\n" +
		"2\n00:00:02,000 --> 00:00:02,000\nworld\n\n" +
		"3\n00:00:03,000 --> 00:00:04,000\n\n" +
		"7\n00:00:05,000 --> 00:00:04,500\nagain\n\n"

	_, err := ParseSRT([]byte(input))
	require.Error(t, err, "client input stays strict")

	doc, err := ParseProviderSRT([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []Cue{
		{Index: 1, StartMs: 0, EndMs: 2000, Text: "Hello"},
		{Index: 2, StartMs: 2000, EndMs: 2001, Text: "world"},
		{Index: 3, StartMs: 5000, EndMs: 5001, Text: "again"},
	}, doc.Cues)
}

func TestParseProviderSRT_Malformed(t *testing.T) {
	_, err := ParseProviderSRT([]byte("1\nnot a timing line\nHello\n\n"))
	assert.ErrorContains(t, err, "expected timing line")
}
