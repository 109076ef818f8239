// Package health aggregates the health checks of the running components
package health

import (
	"time"

	"github.com/KOMKZ/go-yogan-intercept/component"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded" // 可选组件不健康
	StatusUnhealthy Status = "unhealthy"
)

// Checker 是 component.HealthChecker 的别名
type Checker = component.HealthChecker

// CheckResult 单个检查项的结果
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Optional  bool          `json:"optional,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Response 聚合检查结果
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
}

// IsHealthy 整体是否健康
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// IsDegraded 是否降级
func (r *Response) IsDegraded() bool {
	return r.Status == StatusDegraded
}
