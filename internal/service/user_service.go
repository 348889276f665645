// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"

	"github.com/notehive/collab-note-service/global"
	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/dto"
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"
	"github.com/notehive/collab-note-service/pkg/convert"
	"github.com/notehive/collab-note-service/pkg/logger"
	"github.com/notehive/collab-note-service/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error)

	// ChangePassword 修改密码
	ChangePassword(ctx context.Context, uid int64, params *dto.UserChangePasswordRequest) error

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// Exists 判断用户是否存在且未删除
	Exists(ctx context.Context, uid int64) error
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, config *ServiceConfig) UserService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO，按同名字段复制
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	d := &dto.UserDTO{}
	convert.StructAssign(user, d)
	return d
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error) {
	if !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterDisabled
	}

	// 检查邮箱是否已存在
	existing, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorUserEmailExists
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorUserCreateFail.WithDetails(err.Error())
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:    params.Email,
		Nickname: params.Nickname,
		Password: password,
	})
	if err != nil {
		return nil, code.ErrorUserCreateFail.WithDetails(err.Error())
	}

	global.Logger.Info("user registered",
		zap.Int64(logger.FieldUID, user.UID),
		zap.String(logger.FieldEmail, user.Email),
	)
	return s.domainToDTO(user), nil
}

// Login 用户登录，成功时返回带 Token 的用户信息
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分"用户不存在"和"密码错误"
			return nil, code.ErrorUserPasswordWrong
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	if !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorUserPasswordWrong
	}

	token, err := s.tokenManager.Generate(user.UID, user.Nickname, clientIP)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	d := s.domainToDTO(user)
	d.Token = token
	return d, nil
}

// ChangePassword 修改密码
func (s *userService) ChangePassword(ctx context.Context, uid int64, params *dto.UserChangePasswordRequest) error {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorUserNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}

	if !util.CheckPasswordHash(user.Password, params.OldPassword) {
		return code.ErrorUserPasswordWrong
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if err := s.userRepo.UpdatePassword(ctx, password, uid); err != nil {
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	return nil
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(user), nil
}

// Exists 判断用户是否存在且未删除
func (s *userService) Exists(ctx context.Context, uid int64) error {
	_, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorUserNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	return nil
}
