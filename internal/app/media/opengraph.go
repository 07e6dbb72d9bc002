package media

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OpenGraphExtractor reads media links embedded in page metadata.
type OpenGraphExtractor struct {
	client *http.Client
}

func NewOpenGraphExtractor(client *http.Client) *OpenGraphExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenGraphExtractor{client: client}
}

func (e *OpenGraphExtractor) Name() string { return "opengraph" }

func (e *OpenGraphExtractor) Supports(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// Meta properties in preference order.
var mediaMetaProperties = []string{
	"og:video:secure_url",
	"og:video:url",
	"og:video",
	"og:audio:secure_url",
	"og:audio:url",
	"og:audio",
	"twitter:player:stream",
}

func (e *OpenGraphExtractor) Extract(ctx context.Context, pageURL string, _ *Workspace) (*Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, fmt.Errorf("fetch page: unexpected status %d", resp.StatusCode)
	}
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		drain(resp.Body)
		return nil, fmt.Errorf("%w: page content type %q", ErrUnsupportedHost, mediaType)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base := resp.Request.URL
	stream := findMediaLink(doc)
	if stream == "" {
		return nil, fmt.Errorf("%w: no media metadata on page", ErrUnsupportedHost)
	}
	abs, err := base.Parse(stream)
	if err != nil || (abs.Scheme != "http" && abs.Scheme != "https") {
		return nil, fmt.Errorf("invalid media link %q", stream)
	}
	return &Extraction{StreamURL: abs.String(), Title: pageTitle(doc)}, nil
}

func findMediaLink(doc *goquery.Document) string {
	for _, prop := range mediaMetaProperties {
		sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, prop, prop)).First()
		if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}
	var link string
	doc.Find("video[src], audio[src], video source[src], audio source[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
			link = strings.TrimSpace(src)
			return false
		}
		return true
	})
	return link
}

func pageTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
