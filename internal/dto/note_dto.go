package dto

import "github.com/notehive/collab-note-service/pkg/timex"

// PermissionInfoDTO 当前请求用户对笔记的权限视图
// 只暴露请求者自己的权限状态，不泄露其他协作者
type PermissionInfoDTO struct {
	IsOwnedByCurrentUser bool   `json:"isOwnedByCurrentUser"`
	UserPermission       string `json:"userPermission"`
}

// CollaboratorDTO 协作者信息，仅笔记所有者可见
type CollaboratorDTO struct {
	UID        int64      `json:"uid"`
	Nickname   string     `json:"nickname"`
	Email      string     `json:"email"`
	Permission string     `json:"permission"`
	SharedAt   timex.Time `json:"sharedAt"`
}

// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	IsArchived     bool              `json:"isArchived"`
	PermissionInfo PermissionInfoDTO `json:"permissionInfo"`
	Collaborators  []CollaboratorDTO `json:"collaborators,omitempty"`
	CreatedAt      timex.Time        `json:"createdAt"`
	UpdatedAt      timex.Time        `json:"updatedAt"`
}

// NoteListItemDTO 列表项，不含正文内容
type NoteListItemDTO struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	IsArchived     bool              `json:"isArchived"`
	PermissionInfo PermissionInfoDTO `json:"permissionInfo"`
	CreatedAt      timex.Time        `json:"createdAt"`
	UpdatedAt      timex.Time        `json:"updatedAt"`
}

// NoteNotificationDTO 推送给笔记订阅者的变更通知
type NoteNotificationDTO struct {
	NoteID  int64  `json:"noteId"`
	Message string `json:"message"`
}
