// ABOUTME: HTTP client for the hosted record-management service
// ABOUTME: Sends project credentials and a correlation ID with every request
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header names carrying the project credentials and request correlation ID.
const (
	HeaderProjectID = "X-Project-Id"
	HeaderPublicKey = "X-Public-Key"
	HeaderRequestID = "X-Request-Id"
)

const defaultTimeout = 30 * time.Second

type ClientOptions struct {
	BaseURL    string
	ProjectID  string
	PublicKey  string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client implements Backend over HTTP.
type Client struct {
	baseURL    string
	projectID  string
	publicKey  string
	httpClient *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("record service base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid record service URL: %w", err)
	}
	if opts.ProjectID == "" || opts.PublicKey == "" {
		return nil, fmt.Errorf("project ID and public key are required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		projectID:  opts.ProjectID,
		publicKey:  opts.PublicKey,
		httpClient: httpClient,
	}, nil
}

func (c *Client) FetchRecords(ctx context.Context, table string, params FetchParams) (*FetchResponse, error) {
	var out FetchResponse
	if err := c.do(ctx, http.MethodPost, tablePath(table, "fetch"), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetRecordByID(ctx context.Context, table string, id int64, fields []string) (*GetResponse, error) {
	path := tablePath(table, "records", strconv.FormatInt(id, 10))
	if len(fields) > 0 {
		path += "?fields=" + url.QueryEscape(strings.Join(fields, ","))
	}
	var out GetResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRecord(ctx context.Context, table string, recs []Record) (*BatchResponse, error) {
	return c.batch(ctx, http.MethodPost, table, BatchRequest{Records: recs})
}

func (c *Client) UpdateRecord(ctx context.Context, table string, recs []Record) (*BatchResponse, error) {
	return c.batch(ctx, http.MethodPatch, table, BatchRequest{Records: recs})
}

func (c *Client) DeleteRecord(ctx context.Context, table string, ids []int64) (*BatchResponse, error) {
	return c.batch(ctx, http.MethodDelete, table, DeleteRequest{RecordIds: ids})
}

func (c *Client) batch(ctx context.Context, method, table string, body any) (*BatchResponse, error) {
	var out BatchResponse
	if err := c.do(ctx, method, tablePath(table, "records"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request. Error statuses whose body decodes are returned as
// backend-reported failures in out; everything else is a transport error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderProjectID, c.projectID)
	req.Header.Set(HeaderPublicKey, c.publicKey)
	req.Header.Set(HeaderRequestID, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func tablePath(table string, parts ...string) string {
	segs := append([]string{"/v1/tables", url.PathEscape(table)}, parts...)
	return strings.Join(segs, "/")
}
