package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"draftboard/pkg/errors"
	"draftboard/pkg/httputil"
)

// defaultServerURL matches the serve command's default listen address.
const defaultServerURL = "http://127.0.0.1:8437"

// apiClient talks to a running draftboard server. Transient failures
// (network errors, 5xx responses) are retried with exponential backoff;
// API-level errors come back as coded errors matching the server's codes.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	if base == "" {
		base = defaultServerURL
	}
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// do sends one request and decodes the JSON response into out (if non-nil).
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return err
			}
			reader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}

		if resp.StatusCode >= 500 {
			return &httputil.RetryableError{Err: apiError(resp.StatusCode, data)}
		}
		if resp.StatusCode >= 400 {
			return apiError(resp.StatusCode, data)
		}
		if out != nil {
			return json.Unmarshal(data, out)
		}
		return nil
	})
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *apiClient) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *apiClient) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// apiError reconstructs a coded error from the server's failure envelope.
func apiError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		code := errors.Code(envelope.Code)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return errors.New(code, "%s", envelope.Error)
	}
	return fmt.Errorf("server returned %d", status)
}
