// Package translate rewrites caption texts into another language through a
// generative model while keeping every cue's index and timing intact.
package translate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/logging"
)

const (
	DefaultBatchSize    = 200
	DefaultPollInterval = 2 * time.Second
)

// Generator produces text from a prompt. Implementations return
// *apperrors.ProviderError for remote failures.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type GenerateRequest struct {
	Credential string
	System     string
	Prompt     string
	Attachment *RemoteFile
}

// ContextFile is a local file offered to the model alongside the captions.
// The translator owns it once passed in and removes it on every exit path.
type ContextFile struct {
	Path     string
	MIMEType string
}

type Request struct {
	Document       *caption.Document
	TargetLanguage string
	// Style is free-form guidance on tone and register.
	Style      string
	Credential string
	Context    *ContextFile
}

type Translator struct {
	generator    Generator
	store        ContextStore
	batchSize    int
	pollInterval time.Duration
	logger       *zap.Logger
	metrics      *provider.Metrics
	progress     func(done, total int)
}

type Option func(*Translator)

// WithContextStore enables context attachments.
func WithContextStore(store ContextStore) Option {
	return func(t *Translator) { t.store = store }
}

func WithBatchSize(n int) Option {
	return func(t *Translator) { t.batchSize = n }
}

func WithPollInterval(d time.Duration) Option {
	return func(t *Translator) { t.pollInterval = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Translator) { t.logger = logger }
}

func WithMetrics(m *provider.Metrics) Option {
	return func(t *Translator) { t.metrics = m }
}

// WithProgress is called after every translated batch.
func WithProgress(fn func(done, total int)) Option {
	return func(t *Translator) { t.progress = fn }
}

func NewTranslator(generator Generator, opts ...Option) *Translator {
	t := &Translator{generator: generator}
	for _, opt := range opts {
		opt(t)
	}
	if t.batchSize <= 0 {
		t.batchSize = DefaultBatchSize
	}
	if t.pollInterval <= 0 {
		t.pollInterval = DefaultPollInterval
	}
	t.logger = logging.OrNop(t.logger).Named("translator")
	return t
}

func (t *Translator) GeneratorName() string {
	return t.generator.Name()
}

// Translate returns a new document whose cues differ from req.Document only
// in their text. Any structural change in the model output is reported as
// *apperrors.TranslationFormatError.
func (t *Translator) Translate(ctx context.Context, req Request) (*caption.Document, error) {
	if req.Context != nil {
		defer os.Remove(req.Context.Path)
	}

	if req.Document == nil {
		return nil, apperrors.RequiredField("captions")
	}
	if err := req.Document.Validate(); err != nil {
		return nil, apperrors.InvalidField("captions", err.Error())
	}
	target := strings.TrimSpace(req.TargetLanguage)
	if target == "" {
		return nil, apperrors.RequiredField("targetLanguage")
	}

	var attachment *RemoteFile
	if req.Context != nil {
		remote, err := t.attach(ctx, req.Credential, req.Context)
		if err != nil {
			return nil, err
		}
		defer t.detach(ctx, req.Credential, remote)
		attachment = remote
	}

	if req.Document.Len() == 0 {
		return req.Document.Clone(), nil
	}

	batches := lo.Chunk(req.Document.Cues, t.batchSize)
	texts := make([]string, 0, req.Document.Len())
	for i, cues := range batches {
		translated, err := t.translateBatch(ctx, cues, target, req, attachment)
		if err != nil {
			return nil, err
		}
		texts = append(texts, translated...)
		if t.progress != nil {
			t.progress(i+1, len(batches))
		}
		t.logger.Debug("batch translated",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("cues", len(cues)))
	}

	out, err := req.Document.WithTexts(texts)
	if err != nil {
		return nil, &apperrors.TranslationFormatError{Reason: err.Error()}
	}
	if err := caption.SameStructure(req.Document, out); err != nil {
		return nil, &apperrors.TranslationFormatError{Reason: err.Error()}
	}
	return out, nil
}

// translateBatch sends cues renumbered from 1 and returns their new texts in
// order.
func (t *Translator) translateBatch(ctx context.Context, cues []caption.Cue, target string, req Request, attachment *RemoteFile) ([]string, error) {
	batch := caption.NewDocument(append([]caption.Cue(nil), cues...))
	batch.Renumber()

	started := time.Now()
	reply, err := t.generator.Generate(ctx, GenerateRequest{
		Credential: req.Credential,
		System:     systemInstruction,
		Prompt:     buildPrompt(batch, target, req.Style, attachment != nil),
		Attachment: attachment,
	})
	t.metrics.Observe(t.generator.Name(), "translate", started, err)
	if err != nil {
		return nil, err
	}

	parsed, err := caption.ParseSRT([]byte(stripFences(reply)))
	if err != nil {
		return nil, &apperrors.TranslationFormatError{Reason: fmt.Sprintf("response is not valid SRT: %v", err)}
	}
	if err := caption.SameStructure(batch, parsed); err != nil {
		return nil, &apperrors.TranslationFormatError{Reason: err.Error()}
	}
	return parsed.Texts(), nil
}
