package config

import (
	"strings"
	"time"
)

const (
	apiURLVar       = "HISABI_API_URL"
	apiPathVar      = "HISABI_API_PATH"
	httpTimeoutVar  = "HTTP_TIMEOUT"
	queryRetriesVar = "QUERY_RETRIES"
	staleTimeVar    = "QUERY_STALE_TIME"
)

type ClientConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
	GetQueryRetries() int
	GetStaleTime() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIURL returns the backend base URL including the /api prefix,
// e.g. "http://localhost:4000/api".
func (Client) GetAPIURL() string {
	base := strings.TrimRight(GetEnv(apiURLVar, "http://localhost:4000"), "/")
	return base + GetEnv(apiPathVar, "/api")
}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration(httpTimeoutVar, 15*time.Second)
}

// GetQueryRetries is the automatic retry budget for reads. Mutations are never retried.
func (Client) GetQueryRetries() int {
	return GetEnvInt(queryRetriesVar, 1)
}

func (Client) GetStaleTime() time.Duration {
	return GetEnvDuration(staleTimeVar, 30*time.Second)
}
