// Package limiter 提供基于令牌桶的接口限流器
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// LimiterIface 限流器接口
type LimiterIface interface {
	// Key 获取请求对应的限流键
	Key(c *gin.Context) string
	// GetBucket 获取限流键对应的令牌桶
	GetBucket(key string) (*ratelimit.Bucket, bool)
	// AddBuckets 注册限流规则
	AddBuckets(rules ...BucketRule) LimiterIface
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// Key 自定义键值对名称
	Key string
	// FillInterval 放令牌的间隔
	FillInterval time.Duration
	// Capacity 令牌桶容量
	Capacity int64
	// Quantum 每次放的令牌数量
	Quantum int64
}

// Limiter 限流器基础结构
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// MethodLimiter 按路由路径限流
type MethodLimiter struct {
	*Limiter
}

func NewMethodLimiter() LimiterIface {
	return MethodLimiter{
		Limiter: &Limiter{limiterBuckets: make(map[string]*ratelimit.Bucket)},
	}
}

func (l MethodLimiter) Key(c *gin.Context) string {
	return c.Request.URL.Path
}

func (l MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	for pattern, bucket := range l.limiterBuckets {
		if len(key) >= len(pattern) && key[len(key)-len(pattern):] == pattern {
			return bucket, true
		}
	}
	return nil, false
}

func (l MethodLimiter) AddBuckets(rules ...BucketRule) LimiterIface {
	for _, rule := range rules {
		if _, ok := l.limiterBuckets[rule.Key]; !ok {
			l.limiterBuckets[rule.Key] = ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
		}
	}
	return l
}
