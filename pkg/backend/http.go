package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-blockform/internal/loader"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

// DefaultCallback is the JSONP callback name requested for prefill.
const DefaultCallback = "handlePrefill"

// HTTPOption configures an HTTP client.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the underlying client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.timeout = timeout
	}
}

// WithLogger sets the logger for transport diagnostics.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(h *HTTP) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCallback overrides DefaultCallback.
func WithCallback(name string) HTTPOption {
	return func(h *HTTP) {
		if strings.TrimSpace(name) != "" {
			h.callback = name
		}
	}
}

// WithSubmitURL posts submissions to a different endpoint than the base.
func WithSubmitURL(raw string) HTTPOption {
	return func(h *HTTP) {
		if strings.TrimSpace(raw) != "" {
			h.submitURL = raw
		}
	}
}

// HTTP talks to a script-style backend where one base URL serves every
// resource through query flags: ?blocks=true, ?translations=true,
// ?industries=true and ?uid=<id>.
type HTTP struct {
	base      string
	submitURL string
	callback  string
	client    *http.Client
	timeout   time.Duration
	logger    *zap.Logger
	loader    *loader.Loader
}

var _ Client = (*HTTP)(nil)

// NewHTTP constructs a client for base.
func NewHTTP(base string, options ...HTTPOption) (*HTTP, error) {
	if _, err := loader.FromURL(base); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	h := &HTTP{
		base:     base,
		callback: DefaultCallback,
		client:   &http.Client{},
		timeout:  30 * time.Second,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.submitURL == "" {
		h.submitURL = h.base
	}
	h.loader = loader.New(loader.Options{HTTPClient: h.client, RequestTimeout: h.timeout})
	return h, nil
}

// Base returns the base URL.
func (h *HTTP) Base() string {
	return h.base
}

func (h *HTTP) endpoint(params url.Values) string {
	u, err := url.Parse(h.base)
	if err != nil {
		return h.base
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (h *HTTP) getJSON(ctx context.Context, params url.Values, into any) error {
	target := h.endpoint(params)
	resp, err := h.loader.Get(ctx, target, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	if err := json.Unmarshal(resp.Body, into); err != nil {
		return fmt.Errorf("backend: decode %s: %w", target, err)
	}
	return nil
}

// Blocks fetches the field declarations.
func (h *HTTP) Blocks(ctx context.Context) ([]model.FieldDeclaration, error) {
	var raw json.RawMessage
	if err := h.getJSON(ctx, url.Values{"blocks": {"true"}}, &raw); err != nil {
		return nil, err
	}
	blocks, err := model.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("backend: decode blocks: %w", err)
	}
	return blocks, nil
}

// Translations fetches the catalog for every language.
func (h *HTTP) Translations(ctx context.Context) (i18n.Catalog, error) {
	var catalog i18n.Catalog
	if err := h.getJSON(ctx, url.Values{"translations": {"true"}}, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Industries fetches the taxonomy tree.
func (h *HTTP) Industries(ctx context.Context) (taxonomy.Tree, error) {
	var tree taxonomy.Tree
	if err := h.getJSON(ctx, url.Values{"industries": {"true"}}, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Prefill fetches a prior submission. When the plain request does not yield
// JSON (script backends often answer cross-origin reads with an HTML
// redirect page) the request is repeated with a JSONP callback and the
// envelope is unwrapped.
func (h *HTTP) Prefill(ctx context.Context, uid string) (Prefill, error) {
	if strings.TrimSpace(uid) == "" {
		return Prefill{}, fmt.Errorf("backend: prefill: %w", ErrNoPrefill)
	}

	target := h.endpoint(url.Values{"uid": {uid}})
	resp, err := h.loader.Get(ctx, target, http.Header{"Accept": {"application/json"}})
	if err == nil {
		var out Prefill
		if jsonErr := json.Unmarshal(resp.Body, &out); jsonErr == nil {
			return checkPrefill(out)
		}
		h.logger.Debug("prefill response is not JSON, retrying with callback",
			zap.String("content_type", resp.ContentType))
	} else {
		h.logger.Debug("prefill request failed, retrying with callback", zap.Error(err))
	}

	target = h.endpoint(url.Values{"uid": {uid}, "callback": {h.callback}})
	resp, err = h.loader.Get(ctx, target, nil)
	if err != nil {
		return Prefill{}, fmt.Errorf("backend: prefill: %w", err)
	}
	body, err := UnwrapJSONP(resp.Body, h.callback)
	if err != nil {
		return Prefill{}, fmt.Errorf("backend: prefill: %w", err)
	}
	var out Prefill
	if err := json.Unmarshal(body, &out); err != nil {
		return Prefill{}, fmt.Errorf("backend: decode prefill: %w", err)
	}
	return checkPrefill(out)
}

func checkPrefill(p Prefill) (Prefill, error) {
	if p.Answers == nil {
		return Prefill{}, ErrNoPrefill
	}
	return p, nil
}

var jsonpEnvelope = regexp.MustCompile(`(?s)^\s*(?:/\*\*/\s*)?([A-Za-z_$][\w$.]*)\s*\((.*)\)\s*;?\s*$`)

// UnwrapJSONP extracts the JSON argument of a `callback(...)` body. When
// callback is non-empty the envelope must use that name.
func UnwrapJSONP(body []byte, callback string) ([]byte, error) {
	m := jsonpEnvelope.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("not a JSONP response")
	}
	if callback != "" && string(m[1]) != callback {
		return nil, fmt.Errorf("unexpected JSONP callback %q", m[1])
	}
	return bytes.TrimSpace(m[2]), nil
}

// Submit posts the submission as JSON. The response is drained and
// discarded without looking at the status: the backend may answer with an
// opaque redirect, so only transport errors are reported.
func (h *HTTP) Submit(ctx context.Context, submission Submission) error {
	payload, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("backend: encode submission: %w", err)
	}

	reqCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, h.submitURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("backend: build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: submit: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	h.logger.Debug("submission dispatched", zap.String("uuid", submission.UUID))
	return nil
}
