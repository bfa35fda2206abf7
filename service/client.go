// Package service 对接外部协作方：打分服务与影片元数据服务（OMDb 风格）。
//
// 协作方的失败不会向上传播：Breaker* 包装在出错或熔断时返回默认记录，
// 并记录 fallback 指标。
//
//	scorer := service.NewBreakerScorer(service.NewHTTPScorer("http://scorer:8080/analyze"), service.DefaultBreakerConfig())
//	meta := service.NewBreakerMetadata(service.NewHTTPMetadata("https://www.omdbapi.com/", service.WithAPIKey(key)), service.DefaultBreakerConfig())
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/filmtaste/core"
)

// DefaultTimeout 是协作方请求的默认超时。
const DefaultTimeout = 30 * time.Second

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string // "basic", "bearer", "api_key"
	Username string
	Password string
	Token    string
	APIKey   string
}

// client 是 HTTP 协作方的公共部分。
type client struct {
	Endpoint   string
	Timeout    time.Duration
	Auth       *AuthConfig
	APIKey     string // 作为 apikey 查询参数发送（OMDb）
	httpClient *http.Client
}

// Option 协作方客户端配置选项
type Option func(*client)

// WithTimeout 设置超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.Timeout = timeout
	}
}

// WithAuth 设置认证信息
func WithAuth(auth *AuthConfig) Option {
	return func(c *client) {
		c.Auth = auth
	}
}

// WithAPIKey 设置查询参数形式的 API key
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.APIKey = key
	}
}

// WithHTTPClient 设置自定义 HTTP 客户端
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

func newClient(endpoint string, opts []Option) client {
	c := client{Endpoint: endpoint, Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c
}

// doJSON 发送请求并把 200 响应体解码到 out；非 200 返回 UNAVAILABLE 领域错误。
func (c *client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.addAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.WrapDomainError(core.ModuleCollaborator, core.ErrorCodeUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.NewDomainError(core.ModuleCollaborator, core.ErrorCodeUnavailable,
			fmt.Sprintf("status=%d, body=%s", resp.StatusCode, truncate(string(data), 200)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *client) addAuth(req *http.Request) {
	if c.Auth == nil {
		return
	}

	switch c.Auth.Type {
	case "basic":
		req.SetBasicAuth(c.Auth.Username, c.Auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", c.Auth.APIKey)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
