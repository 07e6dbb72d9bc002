package dto

import (
	"encoding/json"

	"captionflow/internal/api/errors"
	"captionflow/internal/app/caption"
)

// CaptionsInput accepts captions either as cue objects or as an SRT string.
type CaptionsInput struct {
	Captions []caption.Cue `json:"captions,omitempty" form:"-"`
	SRT      string        `json:"srt,omitempty" form:"srt"`
}

// Document returns the validated caption document.
func (in *CaptionsInput) Document() (*caption.Document, error) {
	var doc *caption.Document
	switch {
	case in.SRT != "":
		parsed, err := caption.ParseSRT([]byte(in.SRT))
		if err != nil {
			return nil, errors.NewValidationError("Invalid captions", map[string]string{"srt": err.Error()})
		}
		doc = parsed
	case len(in.Captions) > 0:
		doc = caption.NewDocument(in.Captions)
		doc.Normalize()
	default:
		return nil, errors.NewValidationError("Validation failed", map[string]string{"captions": "is required"})
	}

	if err := doc.Validate(); err != nil {
		return nil, errors.NewValidationError("Invalid captions", map[string]string{"captions": err.Error()})
	}
	return doc, nil
}

// DecodeCaptionsField reads the JSON-encoded captions field of a multipart form.
func (in *CaptionsInput) DecodeCaptionsField(raw string) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &in.Captions); err != nil {
		return errors.NewValidationError("Invalid captions", map[string]string{"captions": "must be a JSON array of cues"})
	}
	return nil
}
