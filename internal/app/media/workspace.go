package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	apperrors "captionflow/internal/app/errors"
	"captionflow/internal/app/util/files"
)

// Workspace is a request-scoped temporary directory. Everything created in it
// is removed by Close, which is safe to call more than once.
type Workspace struct {
	dir       string
	closeOnce sync.Once
	closeErr  error
}

// NewWorkspace creates a fresh directory under parent (os.TempDir when empty).
func NewWorkspace(parent string) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace parent: %w", err)
	}
	dir, err := os.MkdirTemp(parent, "captionflow-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Scratch creates a nested workspace. Closing it removes only its own files.
func (w *Workspace) Scratch() (*Workspace, error) {
	return NewWorkspace(w.dir)
}

// Path returns a path for name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, safeName(name))
}

// Save copies r into a new file named after name. When limit > 0 and r
// holds more than limit bytes the file is removed and ErrFileTooLarge is returned.
func (w *Workspace) Save(r io.Reader, name string, limit int64) (string, error) {
	path := w.Path(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", apperrors.Wrap(err, "create workspace file")
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		os.Remove(path)
		return "", apperrors.Wrap(copyErr, "write workspace file")
	case closeErr != nil:
		os.Remove(path)
		return "", apperrors.Wrap(closeErr, "close workspace file")
	case limit > 0 && n > limit:
		os.Remove(path)
		return "", apperrors.ErrFileTooLarge
	}
	return path, nil
}

// Contains reports whether path lies inside the workspace.
func (w *Workspace) Contains(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// Close removes the directory and everything in it.
func (w *Workspace) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = os.RemoveAll(w.dir)
	})
	return w.closeErr
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

func safeName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := files.SanitizeFilename(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return base + ext
}
