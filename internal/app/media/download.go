package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/util/files"
)

// isMediaContentType accepts audio and video types, plus octet-stream when
// the URL carries a media extension.
func isMediaContentType(contentType, rawURL string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case strings.HasPrefix(mediaType, "audio/"), strings.HasPrefix(mediaType, "video/"):
		return true
	case mediaType == "application/ogg":
		return true
	case mediaType == "application/octet-stream", mediaType == "binary/octet-stream", mediaType == "":
		return hasMediaPath(rawURL)
	}
	return false
}

func hasMediaPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return files.HasMediaExtension(u.Path)
}

// probe asks the server what rawURL serves. Servers that reject HEAD are
// retried with a one-byte ranged GET.
func probe(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Range", "bytes=0-0")
		resp, err = client.Do(req)
		if err != nil {
			return "", err
		}
		resp.Body.Close()
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("probe %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return resp.Header.Get("Content-Type"), nil
}

// download fetches rawURL into scratch and returns the local path.
func download(ctx context.Context, client *http.Client, rawURL, title string, scratch *Workspace, limit int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %d", rawURL, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !isMediaContentType(contentType, rawURL) {
		return "", &apperrors.UnsupportedMediaError{MediaType: contentType}
	}
	if limit > 0 && resp.ContentLength > limit {
		return "", apperrors.ErrFileTooLarge
	}

	return scratch.Save(resp.Body, title+extensionFor(rawURL, contentType), limit)
}

func extensionFor(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := path.Ext(u.Path); files.IsMediaExtension(ext) {
			return strings.ToLower(ext)
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "audio/mpeg":
			return ".mp3"
		case "audio/mp4", "audio/x-m4a":
			return ".m4a"
		case "audio/wav", "audio/x-wav", "audio/wave":
			return ".wav"
		case "audio/ogg", "application/ogg":
			return ".ogg"
		case "video/mp4":
			return ".mp4"
		case "video/webm", "audio/webm":
			return ".webm"
		}
	}
	return ".bin"
}

// drain discards the rest of a body so the connection can be reused.
func drain(r io.Reader) {
	io.Copy(io.Discard, io.LimitReader(r, 64*1024))
}
