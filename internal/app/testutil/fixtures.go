package testutil

import "captionflow/internal/app/caption"

// HelloWorld is the single-cue document used across pipeline tests.
func HelloWorld() *caption.Document {
	return caption.NewDocument([]caption.Cue{{Index: 1, StartMs: 0, EndMs: 2000, Text: "Hello world"}})
}

// ThreeCues is a small multi-line document.
func ThreeCues() *caption.Document {
	return caption.NewDocument([]caption.Cue{
		{Index: 1, StartMs: 0, EndMs: 1500, Text: "Good morning."},
		{Index: 2, StartMs: 1500, EndMs: 4200, Text: "Today we talk about\ncaptions."},
		{Index: 3, StartMs: 4300, EndMs: 6000, Text: "Let's begin."},
	})
}

// ThreeCuesSRT is ThreeCues serialized.
const ThreeCuesSRT = "1\n00:00:00,000 --> 00:00:01,500\nGood morning.\n\n" +
	"2\n00:00:01,500 --> 00:00:04,200\nToday we talk about\ncaptions.\n\n" +
	"3\n00:00:04,300 --> 00:00:06,000\nLet's begin.\n\n"
