package gateway

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// forwardedHeaders are copied verbatim to the backend.
var forwardedHeaders = []string{"Content-Type", "Accept", "X-Request-Id"}

// ServiceProxy forwards requests to one backend, keeping path and query.
type ServiceProxy struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewServiceProxy(name, baseURL string, client *http.Client) *ServiceProxy {
	return &ServiceProxy{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (p *ServiceProxy) Name() string {
	return p.name
}

// ForwardRequest replays r against the backend and returns its response
// unread. The client address is appended to X-Forwarded-For.
func (p *ServiceProxy) ForwardRequest(ctx context.Context, r *http.Request) (*http.Response, error) {
	target := p.baseURL + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = r.ContentLength

	for _, header := range forwardedHeaders {
		if v := r.Header.Get(header); v != "" {
			req.Header.Set(header, v)
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if prior := r.Header.Get("X-Forwarded-For"); prior != "" {
			host = prior + ", " + host
		}
		req.Header.Set("X-Forwarded-For", host)
	}
	if r.Host != "" {
		req.Header.Set("X-Forwarded-Host", r.Host)
	}

	return p.client.Do(req)
}
