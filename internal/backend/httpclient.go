package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "chainledger/cli/internal/errors"
)

// HTTP implements API over the issuer's REST endpoints.
type HTTP struct {
	// baseURL is the issuer origin, without a trailing slash
	baseURL string
	// endpoints contains the URL paths for the issuer endpoints
	endpoints Endpoints
	// client is the underlying HTTP client with configured timeout
	client    *http.Client
	userAgent string
}

func newHTTP(baseURL string, endpoints Endpoints, client *http.Client, userAgent string) *HTTP {
	if userAgent == "" {
		userAgent = "chainledger-cli"
	}
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    client,
		userAgent: userAgent,
	}
}

// newHTTPClient builds a client with bounded dial, TLS and overall timeouts.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json")
}

// doJSON sends body as JSON and returns the response; the caller closes the body.
func (h *HTTP) doJSON(ctx context.Context, method, path string, body any, bearer string) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return h.client.Do(req)
}

// statusError reads a bounded slice of the body into a service error carrying the status.
func statusError(kind apperrors.Kind, op string, resp *http.Response) *apperrors.E {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	e := apperrors.WithStatus(kind, op, resp.StatusCode)
	if detail := strings.TrimSpace(string(b)); detail != "" {
		e.Err = fmt.Errorf("%s", detail)
	}
	return e
}
