// Package transport performs the single streaming POST of a call. The
// response body is surfaced as an io.ReadCloser so the caller can read it
// in bounded chunks and observe a cancellation flag between reads instead
// of waiting for the full body. Failures are terminal; retry policy, if
// any, belongs to the caller.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout matches the generous ceiling the desktop front-end used
// for long streaming generations.
const DefaultTimeout = 120 * time.Second

// chunkSize bounds each read so a cancellation flag is observed promptly
// even on fast streams.
const chunkSize = 8 * 1024

// errorSnippetLimit caps how much of a failed response body is carried in
// the error message.
const errorSnippetLimit = 4096

// ErrAborted reports a read loop stopped by the caller's abort flag.
var ErrAborted = errors.New("stream read aborted")

// StatusError is a non-2xx response, carrying the status code and a body
// snippet for diagnostics.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api call failed with status %d: %s", e.StatusCode, e.Snippet)
}

type Client struct {
	hc *http.Client
}

// New wraps an http.Client; a nil client gets the default timeout.
func New(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{hc: hc}
}

// Stream POSTs the body and returns the response stream. A non-200 status
// drains a bounded snippet and returns a *StatusError; the caller owns
// closing the returned reader otherwise.
func (c *Client) Stream(ctx context.Context, url string, headers map[string]string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetLimit))
		return nil, &StatusError{StatusCode: resp.StatusCode, Snippet: strings.TrimSpace(string(snippet))}
	}
	return resp.Body, nil
}

// Collect reads the stream to completion in bounded chunks, consulting
// aborted between reads. On abort it stops reading immediately and returns
// ErrAborted; whatever was read so far is returned alongside so callers
// can decide what to discard.
func Collect(ctx context.Context, r io.Reader, aborted func() bool) (string, error) {
	var sb strings.Builder
	buf := make([]byte, chunkSize)
	for {
		if aborted() {
			return sb.String(), ErrAborted
		}
		if err := ctx.Err(); err != nil {
			return sb.String(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
