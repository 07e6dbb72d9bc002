package media

import "sync"

// Resolved is a fetchable URL or a local file ready for a provider.
// Location is never empty. A local file belongs to the Resolved value and is
// deleted by Release.
type Resolved struct {
	Location string
	Title    string
	IsLocal  bool

	release     func() error
	releaseOnce sync.Once
	releaseErr  error
}

func newRemote(location, title string) *Resolved {
	return &Resolved{Location: location, Title: title}
}

func newLocal(path, title string, scratch *Workspace) *Resolved {
	return &Resolved{Location: path, Title: title, IsLocal: true, release: scratch.Close}
}

// Release deletes owned local files. Subsequent calls return the first result.
func (r *Resolved) Release() error {
	if r == nil {
		return nil
	}
	r.releaseOnce.Do(func() {
		if r.release != nil {
			r.releaseErr = r.release()
		}
	})
	return r.releaseErr
}
