package media

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"captionflow/internal/app/util/files"
)

// Kind tells the resolver how to treat a Source.
type Kind int

const (
	KindUpload Kind = iota + 1
	KindDirectURL
	KindPageURL
)

func (k Kind) String() string {
	switch k {
	case KindUpload:
		return "upload"
	case KindDirectURL:
		return "directUrl"
	case KindPageURL:
		return "pageUrl"
	default:
		return "unknown"
	}
}

// Source is an input reference. It is built once per request and consumed once.
type Source struct {
	kind     Kind
	url      string
	filename string
	body     io.Reader
}

// FromUpload wraps uploaded bytes.
func FromUpload(body io.Reader, filename string) Source {
	return Source{kind: KindUpload, body: body, filename: filename}
}

// FromDirectURL wraps a URL that already points at media.
func FromDirectURL(u string) Source {
	return Source{kind: KindDirectURL, url: u}
}

// FromPageURL wraps a URL to a web page embedding media.
func FromPageURL(u string) Source {
	return Source{kind: KindPageURL, url: u}
}

// SourceFromURL validates raw and classifies it: a path with a known media
// extension is direct, anything else is a page.
func SourceFromURL(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Source{}, fmt.Errorf("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Source{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if files.HasMediaExtension(u.Path) {
		return FromDirectURL(raw), nil
	}
	return FromPageURL(raw), nil
}

func (s Source) Kind() Kind       { return s.kind }
func (s Source) URL() string      { return s.url }
func (s Source) Filename() string { return s.filename }

// String identifies the source in logs and errors.
func (s Source) String() string {
	if s.kind == KindUpload {
		return "upload:" + s.filename
	}
	return s.url
}
