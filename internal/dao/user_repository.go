package dao

import (
	"context"
	"time"

	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/model"
	"github.com/notehive/collab-note-service/pkg/timex"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:       m.UID,
		Email:     m.Email,
		Nickname:  m.Nickname,
		Password:  m.Password,
		Avatar:    m.Avatar,
		IsDeleted: m.IsDeleted,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
		DeletedAt: time.Time(m.DeletedAt),
	}
}

// GetByUID 根据UID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).
		Where("uid = ? AND is_deleted = ?", uid, false).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", email, false).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByUIDs 批量获取用户
func (r *userRepository) GetByUIDs(ctx context.Context, uids []int64) ([]*domain.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	var rows []*model.User
	err := r.dao.db.WithContext(ctx).
		Where("uid IN ? AND is_deleted = ?", uids, false).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, r.toDomain(m))
	}
	return users, nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := timex.Now()
	m := &model.User{
		Email:     user.Email,
		Nickname:  user.Nickname,
		Password:  user.Password,
		Avatar:    user.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdatePassword 更新用户密码
func (r *userRepository) UpdatePassword(ctx context.Context, password string, uid int64) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.User{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"password":   password,
			"updated_at": timex.Now(),
		}).Error
}
