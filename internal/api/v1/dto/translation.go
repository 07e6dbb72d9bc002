package dto

import "captionflow/internal/app/caption"

// TranslateRequest is the JSON body of POST /translate. The multipart form
// carries the same fields plus an optional contextFile part, with captions
// encoded as a JSON string.
type TranslateRequest struct {
	CaptionsInput
	TargetLanguage string `json:"targetLanguage" form:"targetLanguage" binding:"required"`
	GeminiAPIKey   string `json:"geminiApiKey" form:"geminiApiKey"`
	Style          string `json:"style" form:"style"`
}

type TranslateResponse struct {
	TranslatedCaptions []caption.Cue `json:"translated_captions"`
	Provider           string        `json:"provider"`
}
