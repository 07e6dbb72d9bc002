package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/logging"
	"captionflow/internal/app/util/files"
)

// DefaultMaxDownloadBytes caps uploads and downloads at 500 MB.
const DefaultMaxDownloadBytes int64 = 500 << 20

// ResolveOptions describe what the downstream provider can consume.
type ResolveOptions struct {
	// RequireLocal forces remote media to be downloaded into the workspace.
	RequireLocal bool
}

// Resolver maps a Source to Resolved media. Page URLs go through the
// extractors in order, then the host-specific fallbacks; the first success wins.
type Resolver struct {
	extractors []Extractor
	fallbacks  []Extractor
	client     *http.Client
	logger     *zap.Logger
	maxBytes   int64
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithExtractors(ex ...Extractor) Option {
	return func(r *Resolver) { r.extractors = append(r.extractors, ex...) }
}

func WithFallbacks(ex ...Extractor) Option {
	return func(r *Resolver) { r.fallbacks = append(r.fallbacks, ex...) }
}

func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func WithMaxBytes(n int64) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxBytes = n
		}
	}
}

// NewResolver builds a resolver. Without extractors, page URLs can only be
// resolved when they serve raw media.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client:   &http.Client{Timeout: 30 * time.Minute},
		maxBytes: DefaultMaxDownloadBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger).Named("resolver")
	return r
}

// Resolve turns src into media inside ws. On error nothing created for this
// call is left on disk.
func (r *Resolver) Resolve(ctx context.Context, ws *Workspace, src Source, opts ResolveOptions) (*Resolved, error) {
	switch src.Kind() {
	case KindUpload:
		return r.resolveUpload(ws, src)
	case KindDirectURL:
		return r.resolveDirect(ctx, ws, src, opts)
	case KindPageURL:
		return r.resolvePage(ctx, ws, src, opts)
	default:
		return nil, &apperrors.ResolutionError{Source: src.String(), Causes: []error{errors.New("empty media source")}}
	}
}

func (r *Resolver) resolveUpload(ws *Workspace, src Source) (*Resolved, error) {
	if src.body == nil {
		return nil, &apperrors.ResolutionError{Source: src.String(), Causes: []error{errors.New("upload has no content")}}
	}
	scratch, err := ws.Scratch()
	if err != nil {
		return nil, err
	}

	buffered := bufio.NewReaderSize(src.body, 512)
	head, _ := buffered.Peek(512)
	if len(head) == 0 {
		scratch.Close()
		return nil, &apperrors.ResolutionError{Source: src.String(), Causes: []error{errors.New("upload is empty")}}
	}
	if contentType := http.DetectContentType(head); !uploadAllowed(contentType, src.Filename()) {
		scratch.Close()
		return nil, &apperrors.UnsupportedMediaError{MediaType: contentType}
	}

	title := files.TitleFromFilename(src.Filename())
	p, err := scratch.Save(buffered, path.Base(src.Filename()), r.maxBytes)
	if err != nil {
		scratch.Close()
		return nil, err
	}
	r.logger.Debug("stored upload", zap.String("path", p), zap.String("title", title))
	return newLocal(p, title, scratch), nil
}

func (r *Resolver) resolveDirect(ctx context.Context, ws *Workspace, src Source, opts ResolveOptions) (*Resolved, error) {
	title := titleFromURL(src.URL())
	if !opts.RequireLocal {
		return newRemote(src.URL(), title), nil
	}
	res, err := r.fetchLocal(ctx, ws, src.URL(), title)
	if err != nil {
		return nil, &apperrors.ResolutionError{Source: src.String(), Causes: []error{err}}
	}
	return res, nil
}

func (r *Resolver) resolvePage(ctx context.Context, ws *Workspace, src Source, opts ResolveOptions) (*Resolved, error) {
	u, err := url.Parse(src.URL())
	if err != nil {
		return nil, &apperrors.ResolutionError{Source: src.String(), Causes: []error{err}}
	}

	var causes []error
	unsupported := len(r.extractors) == 0

	for _, ex := range r.extractors {
		if !ex.Supports(u) {
			continue
		}
		res, err := r.tryExtractor(ctx, ws, ex, src.URL(), opts)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, ErrUnsupportedHost) {
			unsupported = true
		}
		r.logger.Info("extractor failed", zap.String("extractor", ex.Name()), zap.String("url", src.URL()), zap.Error(err))
		causes = append(causes, fmt.Errorf("%s: %w", ex.Name(), err))
	}

	if unsupported {
		res, err := r.tryRawMedia(ctx, ws, src.URL())
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		causes = append(causes, fmt.Errorf("raw media probe: %w", err))
	}

	for _, fb := range r.fallbacks {
		if !fb.Supports(u) {
			continue
		}
		res, err := r.tryExtractor(ctx, ws, fb, src.URL(), opts)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Info("fallback extractor failed", zap.String("extractor", fb.Name()), zap.String("url", src.URL()), zap.Error(err))
		causes = append(causes, fmt.Errorf("%s: %w", fb.Name(), err))
	}

	if len(causes) == 0 {
		causes = append(causes, errors.New("no extractor recognizes this page"))
	}
	return nil, &apperrors.ResolutionError{Source: src.String(), Causes: causes}
}

// tryExtractor runs one extractor in its own scratch directory, which is
// dropped unless the result lives in it.
func (r *Resolver) tryExtractor(ctx context.Context, ws *Workspace, ex Extractor, pageURL string, opts ResolveOptions) (*Resolved, error) {
	scratch, err := ws.Scratch()
	if err != nil {
		return nil, err
	}

	ext, err := ex.Extract(ctx, pageURL, scratch)
	if err != nil {
		scratch.Close()
		return nil, err
	}

	title := files.SanitizeFilename(ext.Title)
	switch {
	case ext.LocalPath != "":
		if !scratch.Contains(ext.LocalPath) {
			scratch.Close()
			return nil, fmt.Errorf("extractor wrote outside its workspace: %s", ext.LocalPath)
		}
		return newLocal(ext.LocalPath, title, scratch), nil
	case ext.StreamURL != "":
		if !opts.RequireLocal {
			scratch.Close()
			return newRemote(ext.StreamURL, title), nil
		}
		p, err := download(ctx, r.client, ext.StreamURL, title, scratch, r.maxBytes)
		if err != nil {
			scratch.Close()
			return nil, err
		}
		return newLocal(p, title, scratch), nil
	default:
		scratch.Close()
		return nil, errors.New("extractor returned no media")
	}
}

// tryRawMedia handles page URLs that actually serve media bytes.
func (r *Resolver) tryRawMedia(ctx context.Context, ws *Workspace, rawURL string) (*Resolved, error) {
	contentType, err := probe(ctx, r.client, rawURL)
	if err != nil {
		return nil, err
	}
	if !isMediaContentType(contentType, rawURL) {
		return nil, &apperrors.UnsupportedMediaError{MediaType: contentType}
	}
	return r.fetchLocal(ctx, ws, rawURL, titleFromURL(rawURL))
}

func (r *Resolver) fetchLocal(ctx context.Context, ws *Workspace, rawURL, title string) (*Resolved, error) {
	scratch, err := ws.Scratch()
	if err != nil {
		return nil, err
	}
	p, err := download(ctx, r.client, rawURL, title, scratch, r.maxBytes)
	if err != nil {
		scratch.Close()
		return nil, err
	}
	return newLocal(p, title, scratch), nil
}

func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !files.HasMediaExtension(u.Path) {
		return files.DefaultTitle
	}
	return files.TitleFromFilename(u.Path)
}

func uploadAllowed(contentType, filename string) bool {
	if isMediaContentType(contentType, "file:///"+path.Base(filename)) {
		return true
	}
	// DetectContentType misses several containers (m4a, aac, flac variants).
	if files.HasMediaExtension(filename) {
		switch {
		case contentType == "application/pdf", contentType == "application/zip":
			return false
		case len(contentType) >= 5 && (contentType[:5] == "text/" || contentType[:5] == "image"):
			return false
		}
		return true
	}
	return false
}
