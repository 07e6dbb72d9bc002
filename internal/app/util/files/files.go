package files

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultTitle is used whenever a title sanitizes to nothing.
const DefaultTitle = "subtitle"

var mediaExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".wav": true, ".ogg": true, ".oga": true, ".opus": true,
	".flac": true, ".aac": true, ".ape": true, ".amr": true, ".wma": true,
	".mp4": true, ".m4v": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true,
	".mpeg": true, ".mpg": true, ".3gp": true,
}

// SanitizeFilename keeps letters, digits, dash, underscore, dot and space.
// The result never starts or ends with a space or dot.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("-_. ", r) {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), " .")
	if cleaned == "" {
		return DefaultTitle
	}
	return cleaned
}

// TitleFromFilename strips directory and extension, then sanitizes.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return DefaultTitle
	}
	return SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
}

// IsMediaExtension reports whether ext (with leading dot) is a known audio or video extension.
func IsMediaExtension(ext string) bool {
	return mediaExtensions[strings.ToLower(ext)]
}

// HasMediaExtension checks the extension of a path or URL path component.
func HasMediaExtension(path string) bool {
	return IsMediaExtension(filepath.Ext(path))
}

// ReadOutputFile reads the specified output file and returns its content.
func ReadOutputFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}
