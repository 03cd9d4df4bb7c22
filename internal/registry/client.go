// Package registry is the HTTP client for the artifact registry
// service: catalog listing, regex search, per-artifact enrichment
// (rating and cost), registration, and record management.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmallory/curio/internal/log"
)

// ClientConfig configures a registry client.
type ClientConfig struct {
	// BaseURL is the registry root, e.g. "https://registry.example.com".
	// A trailing slash is stripped.
	BaseURL string

	// HTTPClient is the underlying HTTP client. Defaults to
	// http.DefaultClient; the client sets no timeout of its own, so
	// cancellation is the caller's context's job.
	HTTPClient *http.Client
}

// Client talks to the artifact registry over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a registry client for the given base URL.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("registry base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing registry base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tracer:     otel.Tracer("curio.registry"),
	}, nil
}

// BaseURL returns the configured registry root.
func (c *Client) BaseURL() string { return c.baseURL }

// artifactQuery is one clause of the catalog listing request body.
type artifactQuery struct {
	Name  string         `json:"name"`
	Types []ArtifactType `json:"types"`
}

// List enumerates all artifacts in the registry (wildcard name,
// empty type filter). The registry pages this endpoint via an offset
// header: a response carrying one means more pages remain, and the
// value is echoed back as a request header to fetch the next page.
// List follows the chain and returns the concatenated catalog.
func (c *Client) List(ctx context.Context) ([]ArtifactSummary, error) {
	query := []artifactQuery{{Name: "*", Types: []ArtifactType{}}}

	var summaries []ArtifactSummary
	offset := ""
	for {
		body, next, err := c.doPagedRequest(ctx, http.MethodPost, "/artifacts", query, offset)
		if err != nil {
			return nil, err
		}

		var page []ArtifactSummary
		if err := decodeJSON(body, &page); err != nil {
			return nil, err
		}
		summaries = append(summaries, page...)

		if next == "" || next == offset {
			return summaries, nil
		}
		offset = next
	}
}

// Search finds artifacts whose name matches the given regular
// expression. A registry 404 (no matches) is returned as a *Error;
// callers distinguish it with IsNotFound.
func (c *Client) Search(ctx context.Context, pattern string) ([]ArtifactSummary, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/artifact/byRegEx", map[string]string{"regex": pattern})
	if err != nil {
		return nil, err
	}

	var summaries []ArtifactSummary
	if err := decodeJSON(body, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Rate fetches the rating payload for a model artifact. Every numeric
// field of the payload lands in Scores; NetScore is set only when the
// payload carries a numeric net_score.
func (c *Client) Rate(ctx context.Context, id string) (RateResult, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/artifact/model/"+url.PathEscape(id)+"/rate", nil)
	if err != nil {
		return RateResult{}, err
	}

	var raw map[string]any
	if err := decodeJSON(body, &raw); err != nil {
		return RateResult{}, err
	}

	result := RateResult{Scores: make(map[string]float64)}
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			result.Scores[k] = f
		}
	}
	if net, ok := raw["net_score"].(float64); ok {
		result.NetScore = &net
	}
	return result, nil
}

// Cost fetches the storage cost payload for an artifact: a map keyed
// by artifact id.
func (c *Client) Cost(ctx context.Context, artifactType ArtifactType, id string) (map[string]CostEntry, error) {
	path := fmt.Sprintf("/artifact/%s/%s/cost", artifactType, url.PathEscape(id))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var costs map[string]CostEntry
	if err := decodeJSON(body, &costs); err != nil {
		return nil, err
	}
	return costs, nil
}

// Submit registers a new artifact by URL and returns the created
// record. Submit performs exactly one attempt; retry behavior lives
// in the Submitter.
func (c *Client) Submit(ctx context.Context, req SubmissionRequest) (Artifact, error) {
	if !req.Type.Valid() {
		return Artifact{}, fmt.Errorf("invalid artifact type %q", req.Type)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/artifact/"+string(req.Type), map[string]string{"url": req.URL})
	if err != nil {
		return Artifact{}, err
	}

	var created Artifact
	if err := decodeJSON(body, &created); err != nil {
		return Artifact{}, err
	}
	return created, nil
}

// Get fetches the full record for one artifact.
func (c *Client) Get(ctx context.Context, artifactType ArtifactType, id string) (Artifact, error) {
	path := fmt.Sprintf("/artifacts/%s/%s", artifactType, url.PathEscape(id))
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Artifact{}, err
	}

	var artifact Artifact
	if err := decodeJSON(body, &artifact); err != nil {
		return Artifact{}, err
	}
	return artifact, nil
}

// Update replaces an artifact's record, triggering re-ingestion and
// re-rating on the registry side.
func (c *Client) Update(ctx context.Context, artifact Artifact) error {
	path := fmt.Sprintf("/artifacts/%s/%s", artifact.Metadata.Type, url.PathEscape(artifact.Metadata.ID))
	_, err := c.doRequest(ctx, http.MethodPut, path, artifact)
	return err
}

// Delete removes an artifact from the registry. Irreversible.
func (c *Client) Delete(ctx context.Context, artifactType ArtifactType, id string) error {
	path := fmt.Sprintf("/artifacts/%s/%s", artifactType, url.PathEscape(id))
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	return err
}

// Reset wipes the registry. Administrative operation, exposed only on
// the CLI behind an explicit confirmation flag.
func (c *Client) Reset(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/reset", nil)
	return err
}

// doRequest performs one HTTP request and returns the response body
// on any 2xx status. A non-2xx status becomes a *Error carrying the
// status code and a body-derived message; failure to obtain a
// response at all is a plain wrapped error.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	body, _, err := c.doPagedRequest(ctx, method, path, payload, "")
	return body, err
}

// doPagedRequest is doRequest with the offset-header pagination
// plumbing: a non-empty offset rides the request as an offset header,
// and the response's offset header (empty on the last page) is
// returned alongside the body.
func (c *Client) doPagedRequest(ctx context.Context, method, path string, payload any, offset string) ([]byte, string, error) {
	ctx, span := c.tracer.Start(ctx, "registry."+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if offset != "" {
		req.Header.Set("offset", offset)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log.Debug(log.CatRegistry, "request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.ErrorErr(log.CatRegistry, "request failed", err, "method", method, "path", path)
		return nil, "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		regErr := &Error{StatusCode: resp.StatusCode, Message: messageFromBody(body)}
		span.SetStatus(codes.Error, regErr.Message)
		log.Warn(log.CatRegistry, "error status", "method", method, "path", path, "status", resp.StatusCode)
		return nil, "", regErr
	}

	return body, resp.Header.Get("offset"), nil
}

// messageFromBody extracts a human-readable message from an error
// response. JSON bodies with a message or error field yield that
// field; anything else yields the raw body text.
func messageFromBody(body []byte) string {
	var decoded struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.Message != "" {
			return decoded.Message
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// decodeJSON unmarshals a response body, wrapping parse failures so a
// malformed body surfaces as an ordinary (transport-equivalent) error
// rather than a crash or a typed registry error.
func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
