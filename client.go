package transloader

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Transloadit API endpoint used unless WithBaseURL
// overrides it.
const DefaultBaseURL = "http://api2.transloadit.com"

// DefaultTimeout bounds each HTTP request when the caller does not supply
// an *http.Client of their own.
const DefaultTimeout = 30 * time.Second

// Client issues authenticated requests against the Transloadit API.
//
// A Client is safe for concurrent use. It holds no mutable state beyond
// the embedded *http.Client.
type Client struct {
	key     string
	secret  string
	baseURL string

	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
	middleware []Middleware
}

// New creates a Client for the given API credentials.
func New(key, secret string, opts ...Option) (*Client, error) {
	if key == "" || secret == "" {
		return nil, ErrNoCredentials
	}
	c := &Client{
		key:     key,
		secret:  secret,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if len(c.middleware) > 0 {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		// Clone so a caller-supplied client is not mutated.
		hc := *c.httpClient
		hc.Transport = Chain(base, c.middleware...)
		c.httpClient = &hc
	}
	return c, nil
}

// Sign computes the request signature: lowercase-hex HMAC-SHA1 over the
// serialized params bytes, keyed by the API secret.
func (c *Client) Sign(serialized []byte) string {
	mac := hmac.New(sha1.New, []byte(c.secret))
	mac.Write(serialized)
	return hex.EncodeToString(mac.Sum(nil))
}

// signedValues serializes the params document and pairs it with its
// signature, ready to send as form or query fields.
func (c *Client) signedValues(p params) (url.Values, error) {
	serialized, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return url.Values{
		"params":    {string(serialized)},
		"signature": {c.Sign(serialized)},
	}, nil
}

// postForm sends a signed POST with urlencoded params to an API path.
func (c *Client) postForm(ctx context.Context, path string, p params) (Info, error) {
	form, err := c.signedValues(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// postMultipart sends a signed POST with a file part alongside the params
// and signature fields.
func (c *Client) postMultipart(ctx context.Context, path string, p params, fileName string, file io.Reader) (Info, error) {
	form, err := c.signedValues(p)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field := range form {
		if err := w.WriteField(field, form.Get(field)); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

// getForm sends a signed GET with the params and signature as query fields.
func (c *Client) getForm(ctx context.Context, path string, p params) (Info, error) {
	form, err := c.signedValues(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+path+"?"+form.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

// fetch issues an unsigned GET against an absolute URL. Assembly status
// documents live on a separate host and need no auth fields.
func (c *Client) fetch(ctx context.Context, rawURL string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

// delete issues a DELETE against an absolute URL. The response body is
// not required to be a JSON document; cancel endpoints may answer empty.
func (c *Client) delete(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	_, err = c.doParse(req, false)
	return err
}

// do executes the request and triages the response, requiring a JSON
// document body on success.
func (c *Client) do(req *http.Request) (Info, error) {
	return c.doParse(req, true)
}

func (c *Client) doParse(req *http.Request, wantJSON bool) (Info, error) {
	c.logger.Debug("transloadit request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transloader: %s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	info, err := parseResponse(resp, wantJSON)
	if err != nil {
		c.logger.Warn("transloadit request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return info, nil
}

// parseResponse applies the API's error contract to a response.
//
// A JSON body with a truthy "error" field wins over the status code; then
// any status outside [200, 400) is an error carrying the raw body; then,
// when wantJSON is set, a success status whose body is not a JSON object
// is rejected rather than handed to callers as an empty document.
func parseResponse(resp *http.Response, wantJSON bool) (Info, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var doc Info
	decoded := json.Unmarshal(body, &doc) == nil && doc != nil

	if decoded {
		if v, ok := doc["error"]; ok && truthy(v) {
			msg, _ := doc["message"].(string)
			return nil, &RemoteError{
				Message: msg,
				Code:    fmt.Sprint(v),
				Status:  resp.StatusCode,
			}
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &RemoteError{
			Message: string(body),
			Status:  resp.StatusCode,
		}
	}
	if !decoded {
		if !wantJSON {
			return nil, nil
		}
		return nil, &RemoteError{
			Message: string(body),
			Status:  resp.StatusCode,
		}
	}
	return doc, nil
}

// assemblyFromResponse builds a handle from a response's assembly_url.
func (c *Client) assemblyFromResponse(doc Info) (*Assembly, error) {
	u, _ := doc["assembly_url"].(string)
	if u == "" {
		return nil, ErrNoAssemblyURL
	}
	return newAssembly(c, u, nil), nil
}
