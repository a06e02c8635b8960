package transloader

import (
	"context"
	"sync"
)

// Status values reported in an assembly document's "ok" field.
const (
	StatusCompleted = "ASSEMBLY_COMPLETED"
	StatusCanceled  = "ASSEMBLY_CANCELED"
)

// Info is an assembly status document as returned by the API. The schema
// is server-defined and open-ended; fields are read permissively.
type Info map[string]any

// Get returns the named field, or nil when absent.
func (i Info) Get(name string) any {
	return i[name]
}

// Assembly is a handle to one remote assembly, identified by its status
// URL. The status document is fetched lazily on first access and cached
// until invalidated by Refresh or Cancel.
type Assembly struct {
	client *Client
	url    string

	mu   sync.Mutex
	info Info
}

func newAssembly(c *Client, url string, info Info) *Assembly {
	return &Assembly{client: c, url: url, info: info}
}

// Assembly returns a handle for a known status URL. No request is made
// until the first read.
func (c *Client) Assembly(url string) *Assembly {
	return newAssembly(c, url, nil)
}

// URL returns the assembly's status URL.
func (a *Assembly) URL() string { return a.url }

// Info returns the assembly's status document, fetching it on first
// access. Subsequent calls return the cached document until Refresh or
// Cancel invalidates it.
func (a *Assembly) Info(ctx context.Context) (Info, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureLoaded(ctx)
}

// ensureLoaded fetches the status document if the cache is empty.
// Callers must hold a.mu.
func (a *Assembly) ensureLoaded(ctx context.Context) (Info, error) {
	if a.info != nil {
		return a.info, nil
	}
	info, err := a.client.fetch(ctx, a.url)
	if err != nil {
		return nil, err
	}
	a.info = info
	return a.info, nil
}

// Refresh discards the cached status document and fetches a fresh one.
func (a *Assembly) Refresh(ctx context.Context) (Info, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.info = nil
	return a.ensureLoaded(ctx)
}

// Completed reports whether the assembly finished successfully.
func (a *Assembly) Completed(ctx context.Context) (bool, error) {
	return a.hasStatus(ctx, StatusCompleted)
}

// Canceled reports whether the assembly was canceled.
func (a *Assembly) Canceled(ctx context.Context) (bool, error) {
	return a.hasStatus(ctx, StatusCanceled)
}

func (a *Assembly) hasStatus(ctx context.Context, want string) (bool, error) {
	info, err := a.Info(ctx)
	if err != nil {
		return false, err
	}
	return info.Get("ok") == want, nil
}

// Field returns the named field of the status document, fetching the
// document first if needed. Unknown names resolve to nil rather than an
// error; the remote schema is not enumerated by this client.
func (a *Assembly) Field(ctx context.Context, name string) (any, error) {
	info, err := a.Info(ctx)
	if err != nil {
		return nil, err
	}
	return info.Get(name), nil
}

// Cancel cancels an assembly that is still in progress, and invalidates
// the cached status document so the next read observes the new state.
func (a *Assembly) Cancel(ctx context.Context) error {
	if err := a.client.delete(ctx, a.url); err != nil {
		return err
	}
	a.mu.Lock()
	a.info = nil
	a.mu.Unlock()
	return nil
}
