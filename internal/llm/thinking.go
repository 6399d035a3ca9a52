package llm

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

var (
	thinkPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
	// Inside a JSON body the tags may be HTML escaped (\u003c) and the
	// slash may be escaped too.
	thinkJSONPattern = regexp.MustCompile(`(?s)(?:<|\\u003[cC])think(?:>|\\u003[eE]).*?(?:<|\\u003[cC])\\?/think(?:>|\\u003[eE])`)
)

// StripThinking removes every <think>...</think> segment from s.
func StripThinking(s string) string {
	return thinkPattern.ReplaceAllString(s, "")
}

func stripThinkingJSON(body []byte) []byte {
	return thinkJSONPattern.ReplaceAll(body, nil)
}

// thinkingTransport removes reasoning markup from every response body before
// the client decodes it.
type thinkingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *thinkingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.logger.Debug("Chat model request", "method", req.Method, "url", req.URL.String())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	t.logger.Debug("Response before think stripping", "body", string(body))
	cleaned := stripThinkingJSON(body)
	t.logger.Debug("Response after think stripping", "body", string(cleaned))

	resp.Body = io.NopCloser(bytes.NewReader(cleaned))
	resp.ContentLength = int64(len(cleaned))
	resp.Header.Set("Content-Length", strconv.Itoa(len(cleaned)))
	return resp, nil
}

// NewHTTPClient builds the HTTP client used for chat model calls: bounded
// connect and response-header waits, with reasoning markup stripped.
func NewHTTPClient(cfg Config, logger *slog.Logger) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Transport: &thinkingTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: cfg.ReadTimeout,
			},
			logger: logger,
		},
	}
}
