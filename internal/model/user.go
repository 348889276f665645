package model

import "github.com/notehive/collab-note-service/pkg/timex"

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid" form:"uid"`
	Email     string     `gorm:"column:email;not null;uniqueIndex:uk_email" json:"email" form:"email"`
	Nickname  string     `gorm:"column:nickname;not null" json:"nickname" form:"nickname"`
	Password  string     `gorm:"column:password;not null" json:"password" form:"password"`
	Avatar    string     `gorm:"column:avatar" json:"avatar" form:"avatar"`
	IsDeleted bool       `gorm:"column:is_deleted;default:false" json:"isDeleted" form:"isDeleted"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoCreateTime:false" json:"updatedAt" form:"updatedAt"`
	DeletedAt timex.Time `gorm:"column:deleted_at;type:datetime;default:NULL;autoCreateTime:false" json:"deletedAt" form:"deletedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
