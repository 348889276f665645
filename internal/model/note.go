package model

import "github.com/notehive/collab-note-service/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	OwnerUID   int64      `gorm:"column:owner_uid;not null;index:idx_owner_uid" json:"ownerUid" form:"ownerUid"`
	Title      string     `gorm:"column:title;not null" json:"title" form:"title"`
	Content    string     `gorm:"column:content" json:"content" form:"content"`
	IsArchived bool       `gorm:"column:is_archived;default:false" json:"isArchived" form:"isArchived"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoCreateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

const TableNameNoteCollaborator = "note_collaborator"

// NoteCollaborator mapped from table <note_collaborator>
// 自增 ID 保留协作者加入顺序，(note_id, uid) 唯一保证分享幂等
type NoteCollaborator struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	NoteID     int64      `gorm:"column:note_id;not null;uniqueIndex:uk_note_uid,priority:1" json:"noteId" form:"noteId"`
	UID        int64      `gorm:"column:uid;not null;uniqueIndex:uk_note_uid,priority:2;index:idx_collab_uid" json:"uid" form:"uid"`
	Permission string     `gorm:"column:permission;not null;default:read" json:"permission" form:"permission"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName NoteCollaborator's table name
func (*NoteCollaborator) TableName() string {
	return TableNameNoteCollaborator
}
