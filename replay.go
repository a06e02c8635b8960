package transloader

import (
	"context"
	"fmt"
)

// replayRequest collects the optional fields of a replay call.
type replayRequest struct {
	notifyURL       string
	reparseTemplate bool
}

// ReplayOption configures a ReplayAssembly call.
type ReplayOption func(*replayRequest)

// WithReplayNotifyURL overrides the notify URL of the replayed assembly.
func WithReplayNotifyURL(u string) ReplayOption {
	return func(r *replayRequest) { r.notifyURL = u }
}

// WithReparseTemplate makes the replay re-read the template instead of
// reusing the steps captured at original submission time.
func WithReparseTemplate() ReplayOption {
	return func(r *replayRequest) { r.reparseTemplate = true }
}

// ReplayAssembly re-runs a finished or failed assembly.
func (c *Client) ReplayAssembly(ctx context.Context, assemblyID string, opts ...ReplayOption) (*Assembly, error) {
	var req replayRequest
	for _, opt := range opts {
		opt(&req)
	}

	p := c.newParams()
	p.set("notify_url", req.notifyURL)
	// The API wants an integer flag here, present even when false.
	reparse := 0
	if req.reparseTemplate {
		reparse = 1
	}
	p["reparse_template"] = reparse

	doc, err := c.postForm(ctx, fmt.Sprintf("/assemblies/%s/replay", assemblyID), p)
	if err != nil {
		return nil, err
	}
	return c.assemblyFromResponse(doc)
}

// ReplayAssemblyNotification re-sends the completion notification for an
// assembly without re-running it.
func (c *Client) ReplayAssemblyNotification(ctx context.Context, assemblyID string) (*Assembly, error) {
	doc, err := c.postForm(ctx, fmt.Sprintf("/assemblies/%s/replay_notification", assemblyID), c.newParams())
	if err != nil {
		return nil, err
	}
	return c.assemblyFromResponse(doc)
}
