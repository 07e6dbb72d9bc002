package provider

import (
	"context"

	"captionflow/internal/app/caption"
)

// Transcriber is the single contract every ASR adapter implements.
//
// Synchronous adapters do all the work in Submit and return a job already in
// StateDone (or an error); FetchResult then just hands back the attached
// document. Asynchronous adapters return a StateSubmitted job carrying the
// provider's id and must also implement StatusChecker.
type Transcriber interface {
	Info() ProviderInfo
	Submit(ctx context.Context, req *TranscriptionRequest) (*Job, error)
	FetchResult(ctx context.Context, job *Job, credential string) (*caption.Document, error)
}

// StatusChecker probes an asynchronous job. Implementations map every
// provider-specific status onto JobState; unknown statuses become StateFailed.
type StatusChecker interface {
	Status(ctx context.Context, jobID, credential string) (StatusReport, error)
}

// HealthChecker is implemented by adapters that can verify their backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
