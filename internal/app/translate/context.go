package translate

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	apperrors "captionflow/internal/app/errors"
)

// FileState is the provider-side readiness of an uploaded context file.
type FileState string

const (
	FileProcessing FileState = "processing"
	FileReady      FileState = "ready"
	FileFailed     FileState = "failed"
)

// RemoteFile is a context attachment held by the generative provider.
type RemoteFile struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
	Error    string
}

// ContextStore uploads files to the generative provider and reports their
// readiness.
type ContextStore interface {
	Upload(ctx context.Context, credential, path, mimeType string) (*RemoteFile, error)
	Get(ctx context.Context, credential, name string) (*RemoteFile, error)
	Delete(ctx context.Context, credential, name string) error
}

// attach uploads file and polls until the provider has processed it.
func (t *Translator) attach(ctx context.Context, credential string, file *ContextFile) (*RemoteFile, error) {
	display := filepath.Base(file.Path)
	if t.store == nil {
		return nil, &apperrors.ContextUploadError{
			Name:   display,
			Reason: t.generator.Name() + " does not accept context attachments",
		}
	}

	started := time.Now()
	remote, err := t.store.Upload(ctx, credential, file.Path, file.MIMEType)
	t.metrics.Observe(t.generator.Name(), "context_upload", started, err)
	if err != nil {
		return nil, &apperrors.ContextUploadError{Name: display, Cause: err}
	}
	t.logger.Debug("context uploaded", zap.String("name", remote.Name), zap.String("state", string(remote.State)))

	ready, err := t.waitReady(ctx, credential, remote)
	if err != nil {
		t.detach(ctx, credential, remote)
		return nil, err
	}
	return ready, nil
}

func (t *Translator) waitReady(ctx context.Context, credential string, remote *RemoteFile) (*RemoteFile, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		switch remote.State {
		case FileReady:
			return remote, nil
		case FileFailed:
			reason := remote.Error
			if reason == "" {
				reason = "provider could not process the file"
			}
			return nil, &apperrors.ContextUploadError{Name: remote.Name, Reason: reason}
		}

		select {
		case <-ctx.Done():
			return nil, &apperrors.ContextUploadError{Name: remote.Name, Cause: ctx.Err()}
		case <-ticker.C:
		}

		next, err := t.store.Get(ctx, credential, remote.Name)
		if err != nil {
			return nil, &apperrors.ContextUploadError{Name: remote.Name, Cause: err}
		}
		remote = next
	}
}

// detach deletes the remote copy. Failures are only logged; the provider
// expires uploads on its own.
func (t *Translator) detach(ctx context.Context, credential string, remote *RemoteFile) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := t.store.Delete(ctx, credential, remote.Name); err != nil {
		t.logger.Warn("failed to delete context file", zap.String("name", remote.Name), zap.Error(err))
	}
}
