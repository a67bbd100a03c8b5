// Package knora provides a client for the Knora/DSP API v2.
package knora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/auth"
	"github.com/dasch-swiss/mls-app-ng/pkg/logging"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
	"github.com/dasch-swiss/mls-app-ng/pkg/retry"
	"github.com/dasch-swiss/mls-app-ng/pkg/vocab"
)

// DefaultTimeout is the maximum time to wait for a Knora response.
const DefaultTimeout = 30 * time.Second

const (
	contentTypeJSON   = "application/json"
	contentTypeSPARQL = "application/sparql-query"
	maxErrorBody      = 1024
)

// API is the set of backend operations the lexicon services consume.
type API interface {
	GetResource(ctx context.Context, iri string) (*models.RawResource, error)
	GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error)
	Search(ctx context.Context, gravsearch string) ([]*models.RawResource, error)
	SearchCount(ctx context.Context, gravsearch string) (int, error)
	Login(ctx context.Context, identityKind, identity, secret string) (string, error)
	Logout(ctx context.Context) (string, error)
	GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error)
	GetList(ctx context.Context, listIRI string) (*models.List, error)
}

// Client provides access to the Knora API. The session token is taken from
// the request context (see auth.ContextWithToken).
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *retry.Config
	logger     *zap.Logger
}

var _ API = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. to share a transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetry sets the backoff used for idempotent reads.
func WithRetry(cfg *retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient creates a Knora client for the API rooted at baseURL,
// e.g. http://0.0.0.0:3333.
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		retry:  retry.DefaultConfig(),
		logger: logger.Named("knora"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetResource fetches a single resource in the complex schema.
func (c *Client) GetResource(ctx context.Context, iri string) (*models.RawResource, error) {
	const op = "getResource"
	body, err := c.read(ctx, op, http.MethodGet, c.endpoint("v2", "resources", iri), "", nil)
	if err != nil {
		return nil, err
	}

	nodes, err := expand(body)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	resources := decodeResources(nodes)
	if len(resources) == 0 {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusNotFound, Payload: "resource " + iri + " not found"}
	}
	return resources[0], nil
}

// GetOntology fetches all entities of an ontology.
func (c *Client) GetOntology(ctx context.Context, ontologyIRI string) (*models.Ontology, error) {
	const op = "getOntology"
	body, err := c.read(ctx, op, http.MethodGet, c.endpoint("v2", "ontologies", "allentities", ontologyIRI), "", nil)
	if err != nil {
		return nil, err
	}

	nodes, err := expand(body)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	ont, err := decodeOntology(ontologyIRI, nodes)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}

	c.logger.Debug("Decoded ontology",
		zap.String("ontology", ontologyIRI),
		zap.Int("classes", len(ont.Classes)),
		zap.Int("properties", len(ont.Properties)))
	return ont, nil
}

// Search runs a Gravsearch query and returns the matching resources.
// An empty result is an empty slice, not an error.
func (c *Client) Search(ctx context.Context, gravsearch string) ([]*models.RawResource, error) {
	const op = "search"
	c.logger.Debug("Running Gravsearch query", zap.String("query", logging.SanitizeQuery(gravsearch)))

	body, err := c.read(ctx, op, http.MethodPost, c.endpoint("v2", "searchextended"), contentTypeSPARQL, []byte(gravsearch))
	if err != nil {
		return nil, err
	}

	nodes, err := expand(body)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	return decodeResources(nodes), nil
}

// SearchCount returns the number of resources a Gravsearch query matches.
func (c *Client) SearchCount(ctx context.Context, gravsearch string) (int, error) {
	const op = "searchCount"
	body, err := c.read(ctx, op, http.MethodPost, c.endpoint("v2", "searchextended", "count"), contentTypeSPARQL, []byte(gravsearch))
	if err != nil {
		return 0, err
	}

	nodes, err := expand(body)
	if err != nil {
		return 0, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	for _, n := range nodes {
		if count, ok := n.integer(vocab.NumberOfItems); ok {
			return count, nil
		}
	}
	return 0, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: fmt.Errorf("response has no %s", vocab.Short(vocab.NumberOfItems))}
}

// Login exchanges credentials for a session token. identityKind is one of
// "email", "username" or "iri". Never retried.
func (c *Client) Login(ctx context.Context, identityKind, identity, secret string) (string, error) {
	const op = "login"
	payload, err := json.Marshal(map[string]string{
		identityKind: identity,
		"password":   secret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	body, err := c.do(ctx, op, http.MethodPost, c.endpoint("v2", "authentication"), contentTypeJSON, payload)
	if err != nil {
		return "", err
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &response); err != nil || response.Token == "" {
		return "", &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Payload: "response carries no token"}
	}

	c.logger.Info("Logged in to Knora",
		zap.String("identity", identity),
		zap.String("token", logging.RedactToken(response.Token)))
	return response.Token, nil
}

// Logout invalidates the session token carried by ctx. Never retried.
func (c *Client) Logout(ctx context.Context) (string, error) {
	const op = "logout"
	body, err := c.do(ctx, op, http.MethodDelete, c.endpoint("v2", "authentication"), "", nil)
	if err != nil {
		return "", err
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	return response.Message, nil
}

// GetListNode fetches a single list node with its sub nodes.
func (c *Client) GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error) {
	const op = "getListNode"
	body, err := c.read(ctx, op, http.MethodGet, c.endpoint("v2", "node", nodeIRI), "", nil)
	if err != nil {
		return nil, err
	}

	nodes, err := expand(body)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	for _, n := range nodes {
		if n.id() == nodeIRI || len(nodes) == 1 {
			return decodeListNode(n), nil
		}
	}
	return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusNotFound, Payload: "list node " + nodeIRI + " not found"}
}

// GetList fetches a complete list from the admin API.
func (c *Client) GetList(ctx context.Context, listIRI string) (*models.List, error) {
	const op = "getList"
	body, err := c.read(ctx, op, http.MethodGet, c.endpoint("admin", "lists", listIRI), "", nil)
	if err != nil {
		return nil, err
	}

	// Response format: { "list": { "listinfo": { ... }, "children": [ ... ] } }
	var response struct {
		List models.List `json:"list"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: http.StatusOK, Err: err}
	}
	return &response.List, nil
}

// Health reports whether the API answers its health route. Never retried so
// readiness checks see failures as they happen.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, "health", http.MethodGet, c.endpoint("health"), "", nil)
	return err
}

// read is do with retries on transient failures.
func (c *Client) read(ctx context.Context, op, method, endpoint, contentType string, payload []byte) ([]byte, error) {
	return retry.Do(ctx, c.retry, func() ([]byte, error) {
		return c.do(ctx, op, method, endpoint, contentType, payload)
	})
}

// do executes one request and returns the body of a 2xx response. Every
// failure is an *apperrors.UpstreamError.
func (c *Client) do(ctx context.Context, op, method, endpoint, contentType string, payload []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		mRequestSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/ld+json, application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := auth.GetToken(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mRequests.WithLabelValues(op, statusLabel(0)).Inc()
		c.logger.Warn("Knora request failed",
			zap.String("op", op),
			zap.String("error", logging.SanitizeError(err)))
		return nil, &apperrors.UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	mRequests.WithLabelValues(op, statusLabel(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload := errorPayload(body)
		c.logger.Error("Knora returned error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.SanitizeBody(payload)))
		return nil, &apperrors.UpstreamError{Op: op, StatusCode: resp.StatusCode, Payload: payload}
	}

	return body, nil
}

// errorPayload extracts the knora-api:error message of an error envelope,
// falling back to the (truncated) raw body.
func errorPayload(body []byte) string {
	var envelope map[string]interface{}
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, key := range []string{"knora-api:error", vocab.Error, "error", "message"} {
			if msg, ok := envelope[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return logging.TruncateString(strings.TrimSpace(string(body)), maxErrorBody)
}

// endpoint joins path segments onto the base URL. The last segment is an IRI
// and is escaped as a single path segment.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}
