package services

import (
	"context"
	"mime"
	"path/filepath"

	"captionflow/internal/api/v1/dto"
	"captionflow/internal/app/pipeline"
	"captionflow/internal/app/translate"
)

// TranslationServiceImpl implements TranslationService
type TranslationServiceImpl struct {
	translator *translate.Translator
	credential string
	workDir    string
	maxBytes   int64
}

// NewTranslationService wires the translator. credential is used when the
// request carries none.
func NewTranslationService(translator *translate.Translator, credential, workDir string, maxBytes int64) TranslationService {
	return &TranslationServiceImpl{
		translator: translator,
		credential: credential,
		workDir:    workDir,
		maxBytes:   maxBytes,
	}
}

func (s *TranslationServiceImpl) Translate(ctx context.Context, requestID string, req *dto.TranslateRequest, contextFile *UploadedFile) (*dto.TranslateResponse, error) {
	doc, err := req.Document()
	if err != nil {
		return nil, err
	}

	credential := req.GeminiAPIKey
	if credential == "" {
		credential = s.credential
	}
	treq := translate.Request{
		Document:       doc,
		TargetLanguage: req.TargetLanguage,
		Style:          req.Style,
		Credential:     credential,
	}

	if contextFile != nil {
		session, err := pipeline.NewSession(s.workDir, requestID, credential)
		if err != nil {
			return nil, err
		}
		defer session.Close()

		path, err := session.Workspace.Save(contextFile.Reader, contextFile.Filename, s.maxBytes)
		if err != nil {
			return nil, err
		}
		treq.Context = &translate.ContextFile{Path: path, MIMEType: contextMIMEType(contextFile)}
	}

	translated, err := s.translator.Translate(ctx, treq)
	if err != nil {
		return nil, err
	}
	return &dto.TranslateResponse{
		TranslatedCaptions: translated.Cues,
		Provider:           s.translator.GeneratorName(),
	}, nil
}

func contextMIMEType(f *UploadedFile) string {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		return f.ContentType
	}
	if t := mime.TypeByExtension(filepath.Ext(f.Filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}
