package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/ogtriage/internal/config"
)

// one transport shared by every outbound API client so connections are reused
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns a client on the shared transport. A zero timeout
// leaves deadlines to the request context.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
