package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"captionflow/internal/api/errors"
	"captionflow/internal/app/api/provider"
	"captionflow/internal/app/caption"
	"captionflow/internal/app/testutil"
)

func TestCaptionsInputDocument(t *testing.T) {
	tests := []struct {
		name      string
		in        CaptionsInput
		wantLen   int
		wantField string
	}{
		{"cues", CaptionsInput{Captions: testutil.ThreeCues().Cues}, 3, ""},
		{"srt", CaptionsInput{SRT: testutil.ThreeCuesSRT}, 3, ""},
		{"missing", CaptionsInput{}, 0, "captions"},
		{"bad srt", CaptionsInput{SRT: "not a subtitle"}, 0, "srt"},
		{"cue text with trailing line break", CaptionsInput{Captions: []caption.Cue{{Index: 1, StartMs: 0, EndMs: 10, Text: "Hello\r\n"}}}, 1, ""},
		{"bad numbering", CaptionsInput{Captions: []caption.Cue{{Index: 2, StartMs: 0, EndMs: 10, Text: "x"}}}, 0, "captions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := tt.in.Document()
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantLen, doc.Len())
				return
			}
			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, errors.KindValidation, apiErr.Kind)
			assert.Contains(t, apiErr.Details, tt.wantField)
		})
	}
}

func TestDecodeCaptionsField(t *testing.T) {
	var in CaptionsInput
	require.NoError(t, in.DecodeCaptionsField(`[{"index":1,"startMs":0,"endMs":2000,"text":"Hello world"}]`))
	assert.Equal(t, testutil.HelloWorld().Cues, in.Captions)

	assert.Error(t, in.DecodeCaptionsField(`{"index":1}`))
	assert.NoError(t, (&CaptionsInput{}).DecodeCaptionsField(""))
}

func TestToJobResponse(t *testing.T) {
	done := provider.Job{ID: "j1", Provider: "openai", State: provider.StateDone, Document: testutil.HelloWorld()}
	resp := ToJobResponse(done)
	assert.Equal(t, StatusDone, resp.Status)
	assert.Len(t, resp.Captions, 1)

	assert.Equal(t, StatusRunning, ToJobResponse(provider.Job{State: provider.StateSubmitted}).Status)
	assert.Equal(t, StatusRunning, ToJobResponse(provider.Job{State: provider.StateRunning}).Status)

	failed := ToJobResponse(provider.Job{State: provider.StateFailed, Error: "audio too short"})
	assert.Equal(t, StatusError, failed.Status)
	assert.Equal(t, "audio too short", failed.Error)

	rejected := ToJobResponse(provider.Job{State: provider.StateRejected})
	assert.Equal(t, "transcription rejected", rejected.Error)
}

func TestToJobResponseHidesLocalID(t *testing.T) {
	resp := ToJobResponse(*provider.NewDoneJob("whisper_cpp", testutil.HelloWorld()))
	assert.Empty(t, resp.JobID)
	assert.Equal(t, StatusDone, resp.Status)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "job_id")
}
