package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"captionflow/internal/app/util/command"
	"captionflow/internal/app/util/files"
)

const DefaultYtDlpBinary = "yt-dlp"

// YtDlpExtractor asks yt-dlp for the best audio stream of a page. Streams
// that need a client-side protocol (HLS, DASH) are downloaded instead.
type YtDlpExtractor struct {
	binary string
	runner command.CmdRunner
}

// NewYtDlpExtractor uses binary (yt-dlp when empty) through runner.
func NewYtDlpExtractor(binary string, runner command.CmdRunner) *YtDlpExtractor {
	if binary == "" {
		binary = DefaultYtDlpBinary
	}
	if runner == nil {
		runner = command.NewCmdRunner()
	}
	return &YtDlpExtractor{binary: binary, runner: runner}
}

func (e *YtDlpExtractor) Name() string { return "yt-dlp" }

func (e *YtDlpExtractor) Supports(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

type ytDlpInfo struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Protocol string `json:"protocol"`
	Ext      string `json:"ext"`
}

func (e *YtDlpExtractor) Extract(ctx context.Context, pageURL string, scratch *Workspace) (*Extraction, error) {
	out, err := e.runner.Run(ctx, e.binary, "-J", "--no-playlist", "--no-warnings", "-f", "bestaudio/best", pageURL)
	if err != nil {
		if isUnsupportedURL(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedHost, err)
		}
		return nil, fmt.Errorf("yt-dlp metadata: %w", err)
	}

	var info ytDlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	if info.URL != "" && (info.Protocol == "" || info.Protocol == "http" || info.Protocol == "https") {
		return &Extraction{StreamURL: info.URL, Title: info.Title}, nil
	}

	path, err := e.downloadAudio(ctx, pageURL, scratch.Dir())
	if err != nil {
		return nil, err
	}
	return &Extraction{LocalPath: path, Title: info.Title}, nil
}

func (e *YtDlpExtractor) downloadAudio(ctx context.Context, pageURL, outputDir string) (string, error) {
	args := []string{
		"-x",
		"--audio-format", "best",
		"--audio-quality", "0",
		"--no-playlist",
		"--output", filepath.Join(outputDir, "%(title)s.%(ext)s"),
		pageURL,
	}
	if _, err := e.runner.Run(ctx, e.binary, args...); err != nil {
		return "", fmt.Errorf("yt-dlp audio download failed: %w", err)
	}
	return findDownloadedAudio(outputDir)
}

// findDownloadedAudio returns the first media file in outputDir.
func findDownloadedAudio(outputDir string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if files.HasMediaExtension(entry.Name()) {
			return filepath.Join(outputDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no audio files found in output directory")
}

func isUnsupportedURL(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Unsupported URL") || strings.Contains(msg, "is not a valid URL")
}
