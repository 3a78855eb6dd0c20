// Package gateway is the HTTP client for the upstream CRM backend. The
// backend is consumed as a black box returning variably-shaped JSON; this
// package owns the transport, the bearer credential attachment and the
// defensive envelope unwrapping, nothing else.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leadhawk/prospect-sync/internal/models"
)

// ListScope selects which list endpoint serves a full refetch. Admins and
// employees read the general companies endpoint; developers have a dedicated
// one with server-side ownership enforcement.
type ListScope int

const (
	ScopeGeneral ListScope = iota
	ScopeDeveloper
)

// TokenSource supplies the bearer credential. Attachment of credentials is
// the auth collaborator's business; the gateway only forwards what it gets.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource holding a fixed credential.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// HTTPError is a non-2xx backend reply. Message carries the best-effort
// human-readable explanation extracted from the payload: the backend's
// message field, else its error field, else a generic fallback.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend: %s (http %d)", e.Message, e.StatusCode)
}

// Attachment is a binary document sent alongside a company create.
type Attachment struct {
	Filename string
	Data     []byte
}

// EmailPayload covers both single and group sends; the backend distinguishes
// them by the number of targets.
type EmailPayload struct {
	CompanyIDs []string `json:"companyIds"`
	To         []string `json:"to"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        *slog.Logger
}

func New(baseURL string, tokens TokenSource, httpClient *http.Client, log *slog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: httpClient,
		log:        log.With("cmp", "gateway"),
	}
}

// ListCompanies reads the full authoritative collection for the scope.
// A response envelope that matches no known shape is not fatal: it is logged
// and treated as an empty collection.
func (c *Client) ListCompanies(ctx context.Context, scope ListScope) ([]map[string]any, error) {
	path := "/api/v1/companies"
	if scope == ScopeDeveloper {
		path = "/api/v1/developer/companies"
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	list, ok := UnwrapList(body)
	if !ok {
		c.log.Warn("list_shape_mismatch", "path", path, "bytes", len(body))
	}
	return list, nil
}

func (c *Client) GetCompany(ctx context.Context, id string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/companies/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	record, ok := UnwrapRecord(body)
	if !ok {
		c.log.Warn("record_shape_mismatch", "id", id)
	}
	return record, nil
}

// CreateCompany posts a new record. With attachments present every scalar
// field is sent as a form value alongside binary uploadDocument parts;
// otherwise the payload goes as plain JSON.
func (c *Client) CreateCompany(ctx context.Context, fields map[string]any, attachments []Attachment) (map[string]any, error) {
	var body []byte
	var err error
	if len(attachments) == 0 {
		body, err = c.do(ctx, http.MethodPost, "/api/v1/companies", fields)
	} else {
		body, err = c.doMultipart(ctx, "/api/v1/companies", fields, attachments)
	}
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

func (c *Client) UpdateCompany(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/v1/companies/"+url.PathEscape(id), fields)
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/companies/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) AddResponse(ctx context.Context, companyID string, resp models.Response) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/companies/"+url.PathEscape(companyID)+"/responses", resp)
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

func (c *Client) AddRequirements(ctx context.Context, companyID string, req models.Requirements) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/companies/"+url.PathEscape(companyID)+"/requirements", req)
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

func (c *Client) SetShortlist(ctx context.Context, companyID string, shortlisted bool) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/v1/companies/"+url.PathEscape(companyID)+"/shortlist",
		map[string]any{"isShortlisted": shortlisted})
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

func (c *Client) SendEmail(ctx context.Context, payload EmailPayload) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/emails", payload)
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

func (c *Client) ListSentEmails(ctx context.Context, page, limit int) ([]map[string]any, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	path := "/api/v1/emails"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	list, ok := UnwrapList(body)
	if !ok {
		c.log.Warn("list_shape_mismatch", "path", path)
	}
	return list, nil
}

func (c *Client) GetSentEmail(ctx context.Context, id string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/emails/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	record, _ := UnwrapRecord(body)
	return record, nil
}

// do performs one JSON round trip. No automatic retries: a failed operation
// is re-invoked by the caller or not at all.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]any, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := mw.WriteField(key, fmt.Sprint(value)); err != nil {
			return nil, err
		}
	}
	for _, att := range attachments {
		part, err := mw.CreateFormFile("uploadDocument", att.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	token, err := c.tokens.Token(req.Context())
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return body, nil
	}
	return nil, &HTTPError{StatusCode: resp.StatusCode, Message: extractMessage(body)}
}

// extractMessage digs the human-readable explanation out of an error payload:
// message field first, error field second, generic text last.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if strings.TrimSpace(payload.Message) != "" {
			return payload.Message
		}
		if strings.TrimSpace(payload.Err) != "" {
			return payload.Err
		}
	}
	return "request failed"
}

// UnwrapList digs a record list out of whatever envelope the backend chose:
// a bare array, {data: [...]}, or {data: {data: [...]}}. Anything else is
// reported as a shape mismatch and yields an empty, non-nil list.
func UnwrapList(body []byte) ([]map[string]any, bool) {
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return []map[string]any{}, false
	}
	if list, ok := asRecordList(top); ok {
		return list, true
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return []map[string]any{}, false
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		if list, ok := asRecordList(inner["data"]); ok {
			return list, true
		}
	}
	if list, ok := asRecordList(obj["data"]); ok {
		return list, true
	}
	return []map[string]any{}, false
}

// UnwrapRecord applies the list rule minus one nesting level for
// single-record reads: {data: {...}} or a bare object.
func UnwrapRecord(body []byte) (map[string]any, bool) {
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return map[string]any{}, false
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return map[string]any{}, false
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner, true
	}
	return obj, true
}

func asRecordList(v any) ([]map[string]any, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true
}
