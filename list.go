package transloader

import (
	"context"
	"fmt"
	"time"
)

// statusURLTemplate is where per-assembly status documents live for items
// returned by the list endpoint.
const statusURLTemplate = "http://jsondb.transloadit.com.s3.amazonaws.com/assemblies/%s.json"

// listRequest collects the fields of a list call.
type listRequest struct {
	page     int
	pageSize int
	typ      string
	fromDate time.Time
	toDate   time.Time
	keywords string
}

// ListOption configures an Assemblies call.
type ListOption func(*listRequest)

// WithPage sets the starting page. Default 1.
func WithPage(page int) ListOption {
	return func(r *listRequest) { r.page = page }
}

// WithPageSize sets how many assemblies each remote call fetches.
// Default 100; the API caps it at 850.
func WithPageSize(n int) ListOption {
	return func(r *listRequest) { r.pageSize = n }
}

// WithType filters by assembly state: "uploading", "executing",
// "canceled", "completed" or "request_aborted". Default "all".
func WithType(t string) ListOption {
	return func(r *listRequest) { r.typ = t }
}

// WithFromDate keeps only assemblies created after the given time.
func WithFromDate(t time.Time) ListOption {
	return func(r *listRequest) { r.fromDate = t }
}

// WithToDate keeps only assemblies created before the given time.
func WithToDate(t time.Time) ListOption {
	return func(r *listRequest) { r.toDate = t }
}

// WithKeywords searches for a string in the assembly documents: ids,
// redirect and notify URLs, error messages, and used files.
func WithKeywords(kw string) ListOption {
	return func(r *listRequest) { r.keywords = kw }
}

// Assemblies returns an iterator over the account's assemblies. Each
// advance past the buffered page issues one remote call; no requests
// happen until the first Next.
func (c *Client) Assemblies(opts ...ListOption) *AssemblyIter {
	req := listRequest{
		page:     1,
		pageSize: 100,
		typ:      "all",
	}
	for _, opt := range opts {
		opt(&req)
	}
	return &AssemblyIter{client: c, req: req}
}

// AssemblyIter walks the list endpoint one page at a time.
//
//	it := c.Assemblies()
//	for it.Next(ctx) {
//	    handle(it.Assembly())
//	}
//	if err := it.Err(); err != nil { ... }
//
// Iteration stops when a page comes back empty, or when as many items
// have been yielded as the server-reported total. The empty-page check is
// authoritative; the total is advisory since servers may report counts
// inconsistent with page contents.
type AssemblyIter struct {
	client *Client
	req    listRequest

	buf     []*Assembly
	cur     *Assembly
	yielded int
	total   int
	done    bool
	err     error
}

// Next advances the iterator, fetching the next page when the current one
// is exhausted. It returns false when iteration ends or a fetch fails;
// check Err afterwards.
func (it *AssemblyIter) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if len(it.buf) == 0 {
		if it.done {
			return false
		}
		if !it.fetchPage(ctx) {
			return false
		}
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	it.yielded++
	if it.total >= 0 && it.yielded >= it.total {
		it.done = true
	}
	return true
}

// Assembly returns the item produced by the last successful Next.
func (it *AssemblyIter) Assembly() *Assembly { return it.cur }

// Err returns the first error the iterator hit, if any.
func (it *AssemblyIter) Err() error { return it.err }

// fetchPage loads one page into the buffer and reports whether any items
// arrived.
func (it *AssemblyIter) fetchPage(ctx context.Context) bool {
	c := it.client
	p := c.newParams()
	p["page"] = it.req.page
	p["pagesize"] = it.req.pageSize
	p.set("type", it.req.typ)
	p.set("fromdate", it.req.fromDate)
	p.set("todate", it.req.toDate)
	p.set("keywords", it.req.keywords)

	doc, err := c.getForm(ctx, "/assemblies", p)
	if err != nil {
		it.err = err
		return false
	}

	// A missing count leaves the total unknown; the empty-page check then
	// becomes the only stop condition.
	if count, ok := doc["count"].(float64); ok {
		it.total = int(count)
	} else {
		it.total = -1
	}

	items, _ := doc["items"].([]any)
	if len(items) == 0 {
		it.done = true
		return false
	}

	it.buf = it.buf[:0]
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := item["id"].(string)
		it.buf = append(it.buf, newAssembly(c,
			fmt.Sprintf(statusURLTemplate, id), Info(item)))
	}
	it.req.page++
	return len(it.buf) > 0
}
