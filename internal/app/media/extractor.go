package media

import (
	"context"
	"errors"
	"net/url"
)

// ErrUnsupportedHost is returned by an extractor that does not understand
// the page. The resolver then probes the URL as raw media.
var ErrUnsupportedHost = errors.New("host is not supported by this extractor")

// Extraction is what an extractor found on a page. Exactly one of StreamURL
// and LocalPath is set; LocalPath always lies inside the scratch workspace
// handed to Extract.
type Extraction struct {
	StreamURL string
	LocalPath string
	Title     string
}

// Extractor turns a page URL into media.
type Extractor interface {
	Name() string
	Supports(u *url.URL) bool
	Extract(ctx context.Context, pageURL string, scratch *Workspace) (*Extraction, error)
}
