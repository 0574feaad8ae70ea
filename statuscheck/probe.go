package statuscheck

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// drained from each response so the connection can go back to the pool
const maxDrainBytes = 64 << 10

const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Prober issues a single bounded GET against a URL. A received response of
// any status is reported through the code; err is set only when no response
// arrived.
type Prober interface {
	Probe(ctx context.Context, url string, timeout time.Duration) (int, error)
}

// ErrorKind classifies why a probe got no response.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindDNS        ErrorKind = "host not found"
	KindRefused    ErrorKind = "connection refused"
	KindInvalidURL ErrorKind = "invalid url"
	KindTransport  ErrorKind = "transport"
)

// ProbeError is returned by HTTPProber for every transport-level failure.
type ProbeError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProbeError) Error() string { return e.Err.Error() }

func (e *ProbeError) Unwrap() error { return e.Err }

// HTTPProber probes with a shared http.Client. The client carries no global
// timeout; every attempt is bounded through its own context.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(client *http.Client) *HTTPProber {
	if client == nil {
		client = newHTTPClient()
	}
	return &HTTPProber{client: client}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        defaultMaxIdleConns,
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
			IdleConnTimeout:     defaultIdleConnTimeout,
		},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, url string, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &ProbeError{Kind: KindInvalidURL, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, &ProbeError{Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	return resp.StatusCode, nil
}

// Close releases idle pooled connections.
func (p *HTTPProber) Close() {
	if t, ok := p.client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

func classify(err error) ErrorKind {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &dnsErr):
		return KindDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		return KindRefused
	case errors.As(err, &netErr) && netErr.Timeout():
		return KindTimeout
	case isSchemeError(err):
		return KindInvalidURL
	}
	return KindTransport
}

// net/http does not export its scheme error, only the message.
func isSchemeError(err error) bool {
	return strings.Contains(err.Error(), "unsupported protocol scheme")
}
