package customHttpClient

import (
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/DocRAG/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// Shared returns the pooled client the embedding and completion providers reuse so that
// calls to the same host keep their connections warm.
func Shared() *http.Client {
	once.Do(func() {
		client = &http.Client{Transport: customTransport}
	})
	return client
}

// WithTimeout returns a client on the shared transport with an overall request timeout.
func WithTimeout(timeout time.Duration) *http.Client {
	return &http.Client{Transport: customTransport, Timeout: timeout}
}
