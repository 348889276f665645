// Package service 实现业务逻辑层
package service

// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // 用户相关配置
	Note NoteServiceConfig // 笔记相关配置
}

// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // 注册是否启用
}

// NoteServiceConfig 笔记服务配置
type NoteServiceConfig struct {
	DefaultPageSize int // 默认分页大小
	MaxPageSize     int // 最大分页大小
}

// DefaultServiceConfig 返回带默认值的服务配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		User: UserServiceConfig{RegisterIsEnable: true},
		Note: NoteServiceConfig{DefaultPageSize: 10, MaxPageSize: 100},
	}
}
