package transloader

import (
	"context"
	"io"
)

// createRequest collects the optional fields of a create call.
type createRequest struct {
	steps       map[string]any
	fields      map[string]any
	notifyURL   string
	redirectURL string
	fileName    string
	file        io.Reader
}

// CreateOption configures a CreateAssembly call.
type CreateOption func(*createRequest)

// WithSteps merges steps into the template at submission time.
func WithSteps(steps map[string]any) CreateOption {
	return func(r *createRequest) { r.steps = steps }
}

// WithFields supplies variables available as ${fields.<key>} in templates.
func WithFields(fields map[string]any) CreateOption {
	return func(r *createRequest) { r.fields = fields }
}

// WithNotifyURL sets the URL the API pings when the assembly finishes.
func WithNotifyURL(u string) CreateOption {
	return func(r *createRequest) { r.notifyURL = u }
}

// WithRedirectURL sets the URL browsers are redirected to after upload.
func WithRedirectURL(u string) CreateOption {
	return func(r *createRequest) { r.redirectURL = u }
}

// WithFile attaches source media to upload with the assembly.
func WithFile(name string, file io.Reader) CreateOption {
	return func(r *createRequest) {
		r.fileName = name
		r.file = file
	}
}

// CreateAssembly submits a new assembly built from a stored template.
// The returned handle has no cached status; the first read fetches it.
func (c *Client) CreateAssembly(ctx context.Context, templateID string, opts ...CreateOption) (*Assembly, error) {
	var req createRequest
	for _, opt := range opts {
		opt(&req)
	}

	p := c.newParams()
	p.set("template_id", templateID)
	p.set("steps", req.steps)
	p.set("fields", req.fields)
	p.set("notify_url", req.notifyURL)
	p.set("redirect_url", req.redirectURL)

	var (
		doc Info
		err error
	)
	if req.file != nil {
		doc, err = c.postMultipart(ctx, "/assemblies", p, req.fileName, req.file)
	} else {
		doc, err = c.postForm(ctx, "/assemblies", p)
	}
	if err != nil {
		return nil, err
	}
	return c.assemblyFromResponse(doc)
}
