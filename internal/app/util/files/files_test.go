package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "My Talk 2024", "My Talk 2024"},
		{"path separators removed", "a/b\\c", "abc"},
		{"punctuation removed", "Hello: World?!*", "Hello World"},
		{"keeps dash underscore dot", "clip_01-final.v2", "clip_01-final.v2"},
		{"unicode letters", "Árvíztűrő tükörfúrógép", "Árvíztűrő tükörfúrógép"},
		{"empty falls back", "", DefaultTitle},
		{"only symbols falls back", "???", DefaultTitle},
		{"leading dots trimmed", "..hidden", "hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "interview", TitleFromFilename("/tmp/upload/interview.mp3"))
	assert.Equal(t, "my clip.final", TitleFromFilename("my clip.final.wav"))
	assert.Equal(t, DefaultTitle, TitleFromFilename(".mp4"))
	assert.Equal(t, DefaultTitle, TitleFromFilename(""))
}

func TestHasMediaExtension(t *testing.T) {
	assert.True(t, HasMediaExtension("/x/y.MP3"))
	assert.True(t, HasMediaExtension("episode.m4a"))
	assert.False(t, HasMediaExtension("watch"))
	assert.False(t, HasMediaExtension("index.html"))
}
