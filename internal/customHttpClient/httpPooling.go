package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/examassist/waecrag/internal/config"
)

var once sync.Once
var pooledClient *http.Client

// GetPooledClient returns the shared client used for the Ollama embedding
// and generation calls. No client-level timeout: streamed generations are
// bounded by the request context instead.
func GetPooledClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooledClient
}
