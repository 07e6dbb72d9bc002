// Package pipeline runs one transcription request from media source to job:
// resolve, submit, optionally wait, remember.
package pipeline

import (
	"sync"

	"github.com/google/uuid"

	"captionflow/internal/app/media"
)

// Session carries the per-request state: who is asking, with which
// credential, and where temporary files live. Close it on every exit path.
type Session struct {
	RequestID  string
	Credential string
	Workspace  *media.Workspace

	closeOnce sync.Once
	closeErr  error
}

// NewSession creates a workspace under workDir. An empty requestID gets a
// fresh uuid.
func NewSession(workDir, requestID, credential string) (*Session, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ws, err := media.NewWorkspace(workDir)
	if err != nil {
		return nil, err
	}
	return &Session{RequestID: requestID, Credential: credential, Workspace: ws}, nil
}

// Close removes the workspace. Later calls return the first result.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if s.Workspace != nil {
			s.closeErr = s.Workspace.Close()
		}
	})
	return s.closeErr
}
