// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// NoteCreateRequest 创建笔记请求参数
type NoteCreateRequest struct {
	Title   string `json:"title" form:"title" binding:"required"`
	Content string `json:"content" form:"content" binding:""`
}

// NoteUpdateRequest 更新笔记请求参数
// 指针字段区分"未提交"和"提交空值"，未提交的字段保持原值
type NoteUpdateRequest struct {
	Title   *string `json:"title" form:"title"`
	Content *string `json:"content" form:"content"`
}

// NoteShareRequest 分享笔记请求参数，目标用户通过邮箱定位
type NoteShareRequest struct {
	Email      string `json:"email" form:"email" binding:"required,email"`
	Permission string `json:"permission" form:"permission" binding:"required,oneof=read write"`
}

// NoteArchiveRequest 归档/取消归档请求参数
type NoteArchiveRequest struct {
	IsArchived bool `json:"isArchived" form:"isArchived"`
}

// NoteListRequest 笔记列表查询参数
// ShowArchived 为 true 时仅返回已归档的笔记
type NoteListRequest struct {
	Page         int  `json:"page" form:"page"`
	PageSize     int  `json:"pageSize" form:"pageSize"`
	ShowArchived bool `json:"showArchived" form:"showArchived"`
}

// NoteWatchRequest WebSocket 订阅/退订笔记通知的参数
type NoteWatchRequest struct {
	NoteIDs []int64 `json:"noteIds" form:"noteIds" binding:"required"`
}
