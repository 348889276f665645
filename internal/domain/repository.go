// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// GetByID 根据ID获取笔记（含协作者）
	GetByID(ctx context.Context, id int64) (*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 更新笔记内容字段
	Update(ctx context.Context, note *Note) (*Note, error)

	// UpdateArchived 更新笔记归档状态
	UpdateArchived(ctx context.Context, id int64, archived bool) error

	// Delete 删除笔记及其协作者记录
	Delete(ctx context.Context, id int64) error

	// ListByMember 分页获取用户可见的笔记列表
	// 包含用户拥有的和作为协作者参与的笔记，按更新时间倒序
	// archived 控制返回已归档还是未归档的笔记
	ListByMember(ctx context.Context, uid int64, archived bool, page, pageSize int) ([]*Note, error)

	// CountByMember 获取用户可见的笔记数量
	CountByMember(ctx context.Context, uid int64, archived bool) (int64, error)

	// HasAnyByMember 判断用户是否存在任何可见笔记，供列表查询短路
	HasAnyByMember(ctx context.Context, uid int64, archived bool) (bool, error)

	// UpsertCollaborator 添加或更新协作者权限
	// 同一 (noteID, uid) 幂等，重复调用仅覆盖权限
	UpsertCollaborator(ctx context.Context, noteID int64, c Collaborator) error

	// PruneOrphanCollaborators 清理指向已删除用户的协作者记录
	PruneOrphanCollaborators(ctx context.Context) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUIDs 批量获取用户
	GetByUIDs(ctx context.Context, uids []int64) ([]*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// UpdatePassword 更新用户密码
	UpdatePassword(ctx context.Context, password string, uid int64) error
}
