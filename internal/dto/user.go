// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "github.com/notehive/collab-note-service/pkg/timex"

// UserCreateRequest 用户注册请求参数
type UserCreateRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`
	Nickname        string `json:"nickname" form:"nickname" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required,eqfield=Password"`
}

// UserLoginRequest 用户登录请求参数
type UserLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UserChangePasswordRequest 修改密码请求参数
type UserChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" form:"oldPassword" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required,eqfield=Password"`
}

// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64      `json:"uid"`
	Email     string     `json:"email"`
	Nickname  string     `json:"nickname"`
	Token     string     `json:"token,omitempty"`
	Avatar    string     `json:"avatar"`
	UpdatedAt timex.Time `json:"updatedAt"`
	CreatedAt timex.Time `json:"createdAt"`
}
