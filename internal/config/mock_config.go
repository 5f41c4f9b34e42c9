package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	mockPortVar          = "MOCK_PORT"
	mockAdminUserVar     = "MOCK_ADMIN_USERNAME"
	mockAdminPasswordVar = "MOCK_ADMIN_PASSWORD"
	mockJWTSecretVar     = "MOCK_JWT_SECRET"
	mockTokenExpiryVar   = "MOCK_TOKEN_EXPIRY"
	mockOriginsVar       = "MOCK_ALLOWED_ORIGINS"
)

type MockConfig interface {
	GetPort() string
	GetAdminUsername() string
	GetAdminPassword() string
	GetJWTSecret() string
	GetTokenExpiry() time.Duration
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type Mock struct{}

var _ MockConfig = Mock{}

type AllowedOrigins map[string]struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (Mock) GetPort() string {
	port := GetEnv(mockPortVar, "4000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (Mock) GetAdminUsername() string {
	return GetEnv(mockAdminUserVar, "admin")
}

func (Mock) GetAdminPassword() string {
	return GetEnv(mockAdminPasswordVar, "admin123")
}

func (Mock) GetJWTSecret() string {
	return GetEnv(mockJWTSecretVar, "hisabi-mock-secret")
}

func (Mock) GetTokenExpiry() time.Duration {
	return GetEnvDuration(mockTokenExpiryVar, 12*time.Hour)
}

func (Mock) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range strings.Split(GetEnv(mockOriginsVar, "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return origins
}

func (Mock) GetAllowedMethods() string {
	return "GET, POST, PUT, PATCH, DELETE"
}

func (Mock) GetAllowedHeaders() string {
	return "Content-Type, Authorization, X-Request-ID"
}
