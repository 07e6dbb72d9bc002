package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"captionflow/internal/app/media"
	"captionflow/internal/downloader/model"
)

var episodeURLRegexp = regexp.MustCompile(`^https?://(?:www\.)?xiaoyuzhoufm\.com/episode/([0-9a-f]{24})`)

// XiaoyuzhouExtractor resolves xiaoyuzhoufm.com episode pages, whose audio
// is only referenced from the embedded Next.js state or og:audio.
type XiaoyuzhouExtractor struct {
	client *http.Client
	// baseURL replaces https://www.xiaoyuzhoufm.com when set.
	baseURL string
}

func NewXiaoyuzhouExtractor(client *http.Client) *XiaoyuzhouExtractor {
	if client == nil {
		client = http.DefaultClient
	}
	return &XiaoyuzhouExtractor{client: client, baseURL: "https://www.xiaoyuzhoufm.com"}
}

func (e *XiaoyuzhouExtractor) Name() string { return "xiaoyuzhou" }

func (e *XiaoyuzhouExtractor) Supports(u *url.URL) bool {
	return isValidXiaoyuzhouEpisodeUrl(u.String())
}

func (e *XiaoyuzhouExtractor) Extract(ctx context.Context, pageURL string, _ *media.Workspace) (*media.Extraction, error) {
	m := episodeURLRegexp.FindStringSubmatch(pageURL)
	if m == nil {
		return nil, fmt.Errorf("%w: not an episode url", media.ErrUnsupportedHost)
	}

	doc, err := e.fetch(ctx, buildEpisodeUrl(e.baseURL, m[1]))
	if err != nil {
		return nil, err
	}

	audioURL, title, err := getEpisodeInfo(doc)
	if err != nil {
		return nil, fmt.Errorf("episode %s: %w", m[1], err)
	}
	return &media.Extraction{StreamURL: audioURL, Title: title}, nil
}

func (e *XiaoyuzhouExtractor) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get episode page: unexpected status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// getEpisodeInfo reads the audio URL and title, first from __NEXT_DATA__,
// then from the og tags.
func getEpisodeInfo(doc *goquery.Document) (audioURL, title string, err error) {
	if raw := strings.TrimSpace(doc.Find("#__NEXT_DATA__").Text()); raw != "" {
		var page model.EpisodePage
		if err := json.Unmarshal([]byte(raw), &page); err == nil {
			ep := page.Props.PageProps.Episode
			if ep.AudioURL() != "" {
				return ep.AudioURL(), ep.Title, nil
			}
		}
	}

	audioURL, _ = doc.Find(`meta[property="og:audio"]`).First().Attr("content")
	title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
	if audioURL == "" {
		return "", "", fmt.Errorf("cannot get audio url")
	}
	return audioURL, title, nil
}

// isValidXiaoyuzhouEpisodeUrl checks if the given URL is a valid xiaoyuzhou episode URL.
func isValidXiaoyuzhouEpisodeUrl(url string) bool {
	return episodeURLRegexp.MatchString(url)
}

func buildEpisodeUrl(base, eid string) string {
	return fmt.Sprintf("%s/episode/%s", strings.TrimSuffix(base, "/"), eid)
}
